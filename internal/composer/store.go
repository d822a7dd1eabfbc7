package composer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/models"
)

type DayDraft struct {
	Name     string
	Location string
	Date     time.Time
}

type ItineraryHeader struct {
	Title            string
	LeadName         string
	Notes            string
	RetailTotalCents int64
	NetTotalCents    int64
}

// Store описывает операции удаленного хранилища, через которые движок
// сохраняет изменения. Каждый вызов может завершиться ошибкой или зависнуть;
// движок никогда не повторяет вызовы автоматически.
type Store interface {
	CreateDay(ctx context.Context, itineraryID uuid.UUID, draft DayDraft) (models.ScheduledDay, error)
	UpdateDay(ctx context.Context, day models.ScheduledDay) error
	DeleteDay(ctx context.Context, itineraryID, dayID uuid.UUID) error
	CreateActivity(ctx context.Context, dayID, itemID uuid.UUID, priority int) (models.Activity, error)
	UpdateActivity(ctx context.Context, activity models.Activity) error
	DeleteActivity(ctx context.Context, activityID uuid.UUID) error
	UpdateItineraryHeader(ctx context.Context, itineraryID uuid.UUID, header ItineraryHeader) error
	FetchItinerary(ctx context.Context, itineraryID uuid.UUID) (models.Itinerary, error)
	FetchDayActivities(ctx context.Context, dayID uuid.UUID) ([]models.Activity, error)
}
