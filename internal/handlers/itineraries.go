package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-composer/backend/internal/auth"
	"example.com/trip-composer/backend/internal/models"
	"example.com/trip-composer/backend/internal/notifications"
	"example.com/trip-composer/backend/internal/repository"
)

const dateLayout = "2006-01-02"

type ItineraryHandler struct {
	Itineraries *repository.ItineraryRepository
	Activities  *repository.ActivityRepository
	Notifier    *notifications.Hub
}

// NewItineraryHandler создает обработчик маршрутов.
func NewItineraryHandler(itineraries *repository.ItineraryRepository, activities *repository.ActivityRepository, notifier *notifications.Hub) *ItineraryHandler {
	return &ItineraryHandler{Itineraries: itineraries, Activities: activities, Notifier: notifier}
}

type CreateItineraryRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	LeadName string `json:"lead_name" validate:"max=200"`
	Notes    string `json:"notes" validate:"max=4000"`
}

type UpdateItineraryRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	LeadName         string `json:"lead_name" validate:"max=200"`
	Notes            string `json:"notes" validate:"max=4000"`
	RetailTotalCents int64  `json:"retail_total_cents" validate:"gte=0"`
	NetTotalCents    int64  `json:"net_total_cents" validate:"gte=0"`
}

type ItineraryResponse struct {
	ID               uuid.UUID     `json:"id"`
	Title            string        `json:"title"`
	LeadName         string        `json:"lead_name"`
	RetailTotalCents int64         `json:"retail_total_cents"`
	NetTotalCents    int64         `json:"net_total_cents"`
	Notes            string        `json:"notes"`
	Days             []DayResponse `json:"days"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type DayResponse struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// List возвращает список маршрутов агента.
func (h *ItineraryHandler) List(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itineraries, err := h.Itineraries.ListByAgent(c.Request().Context(), agentID)
	if err != nil {
		return serverError(c)
	}

	response := make([]ItineraryResponse, 0, len(itineraries))
	for _, itinerary := range itineraries {
		response = append(response, toItineraryResponse(itinerary))
	}

	return c.JSON(http.StatusOK, map[string][]ItineraryResponse{"itineraries": response})
}

// Create создает новый маршрут с пустым списком дней.
func (h *ItineraryHandler) Create(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateItineraryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return badRequest(c, "title is required")
	}

	itinerary, err := h.Itineraries.Create(c.Request().Context(), agentID, title, strings.TrimSpace(req.LeadName), req.Notes)
	if err != nil {
		return serverError(c)
	}

	publishItineraryUpdate(h.Notifier, agentID, itinerary.ID)
	return c.JSON(http.StatusCreated, toItineraryResponse(itinerary))
}

// Get возвращает маршрут с вложенными днями.
func (h *ItineraryHandler) Get(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	itinerary, err := h.Itineraries.GetByID(c.Request().Context(), agentID, itineraryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "itinerary not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toItineraryResponse(itinerary))
}

// Update сохраняет заголовочные поля маршрута, включая переопределенные итоги.
func (h *ItineraryHandler) Update(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	var req UpdateItineraryRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return badRequest(c, "title is required")
	}

	itinerary, err := h.Itineraries.UpdateHeader(c.Request().Context(), agentID, itineraryID,
		title, strings.TrimSpace(req.LeadName), req.Notes, req.RetailTotalCents, req.NetTotalCents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "itinerary not found")
		}
		return serverError(c)
	}

	publishItineraryUpdate(h.Notifier, agentID, itinerary.ID)
	publishTotalsUpdate(h.Notifier, agentID, itinerary.ID, itinerary.RetailTotalCents, itinerary.NetTotalCents)
	return c.JSON(http.StatusOK, toItineraryResponse(itinerary))
}

// Delete удаляет маршрут вместе с днями и активностями.
func (h *ItineraryHandler) Delete(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	if err := h.Itineraries.Delete(c.Request().Context(), agentID, itineraryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "itinerary not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func toItineraryResponse(itinerary models.Itinerary) ItineraryResponse {
	days := make([]DayResponse, 0, len(itinerary.Days))
	for _, day := range itinerary.Days {
		days = append(days, toDayResponse(day))
	}

	return ItineraryResponse{
		ID:               itinerary.ID,
		Title:            itinerary.Title,
		LeadName:         itinerary.LeadName,
		RetailTotalCents: itinerary.RetailTotalCents,
		NetTotalCents:    itinerary.NetTotalCents,
		Notes:            itinerary.Notes,
		Days:             days,
		CreatedAt:        itinerary.CreatedAt,
		UpdatedAt:        itinerary.UpdatedAt,
	}
}

func toDayResponse(day models.ScheduledDay) DayResponse {
	return DayResponse{
		ID:          day.ID,
		ItineraryID: day.ItineraryID,
		Name:        day.Name,
		Location:    day.Location,
		Date:        day.Date.Format(dateLayout),
		CreatedAt:   day.CreatedAt,
		UpdatedAt:   day.UpdatedAt,
	}
}
