package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-composer/backend/internal/auth"
	"example.com/trip-composer/backend/internal/notifications"
	"example.com/trip-composer/backend/internal/repository"
)

type DayHandler struct {
	Days        *repository.DayRepository
	Itineraries *repository.ItineraryRepository
	Notifier    *notifications.Hub
}

// NewDayHandler создает обработчик дней маршрута.
func NewDayHandler(days *repository.DayRepository, itineraries *repository.ItineraryRepository, notifier *notifications.Hub) *DayHandler {
	return &DayHandler{Days: days, Itineraries: itineraries, Notifier: notifier}
}

type DayRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"max=200"`
	Date     string `json:"date" validate:"required"`
}

// Create добавляет день в маршрут.
func (h *DayHandler) Create(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	var req DayRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return badRequest(c, err.Error())
	}

	day, err := h.Days.Create(c.Request().Context(), agentID, itineraryID, name, strings.TrimSpace(req.Location), date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "itinerary not found")
		}
		return serverError(c)
	}

	publishItineraryUpdate(h.Notifier, agentID, itineraryID)
	return c.JSON(http.StatusCreated, toDayResponse(day))
}

// Update обновляет название, локацию и дату дня.
func (h *DayHandler) Update(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayID, err := uuid.Parse(c.Param("dayId"))
	if err != nil {
		return badRequest(c, "invalid day id")
	}

	var req DayRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return badRequest(c, err.Error())
	}

	day, err := h.Days.Update(c.Request().Context(), agentID, dayID, name, strings.TrimSpace(req.Location), date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "day not found")
		}
		return serverError(c)
	}

	publishItineraryUpdate(h.Notifier, agentID, day.ItineraryID)
	return c.JSON(http.StatusOK, toDayResponse(day))
}

// Delete удаляет день вместе с активностями и пересчитывает итоги маршрута.
func (h *DayHandler) Delete(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	dayID, err := uuid.Parse(c.Param("dayId"))
	if err != nil {
		return badRequest(c, "invalid day id")
	}

	if err := h.Days.Delete(c.Request().Context(), agentID, itineraryID, dayID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "day not found")
		}
		return serverError(c)
	}

	h.notifyTotals(c, agentID, itineraryID)
	return c.NoContent(http.StatusNoContent)
}

func (h *DayHandler) notifyTotals(c echo.Context, agentID, itineraryID uuid.UUID) {
	retail, net, err := h.Itineraries.GetTotals(c.Request().Context(), itineraryID)
	if err != nil {
		return
	}

	publishItineraryUpdate(h.Notifier, agentID, itineraryID)
	publishTotalsUpdate(h.Notifier, agentID, itineraryID, retail, net)
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.New("invalid date format")
	}

	return date, nil
}
