package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-composer/backend/internal/auth"
	"example.com/trip-composer/backend/internal/models"
	"example.com/trip-composer/backend/internal/notifications"
	"example.com/trip-composer/backend/internal/repository"
)

type ActivityHandler struct {
	Activities  *repository.ActivityRepository
	Itineraries *repository.ItineraryRepository
	Notifier    *notifications.Hub
}

// NewActivityHandler создает обработчик активностей дня.
func NewActivityHandler(activities *repository.ActivityRepository, itineraries *repository.ItineraryRepository, notifier *notifications.Hub) *ActivityHandler {
	return &ActivityHandler{Activities: activities, Itineraries: itineraries, Notifier: notifier}
}

type CreateActivityRequest struct {
	CatalogItemID string `json:"catalog_item_id" validate:"required,uuid"`
	Priority      int    `json:"priority" validate:"gte=0"`
}

type UpdateActivityRequest struct {
	Name             string              `json:"name" validate:"required,max=200"`
	Description      string              `json:"description" validate:"max=4000"`
	Category         models.ItemCategory `json:"category" validate:"required,oneof=activity lodging flight transportation cruise info"`
	RetailPriceCents int64               `json:"retail_price_cents" validate:"gte=0"`
	NetPriceCents    int64               `json:"net_price_cents" validate:"gte=0"`
	SupplierName     *string             `json:"supplier_name"`
	SupplierRef      *string             `json:"supplier_ref"`
	Priority         int                 `json:"priority" validate:"gt=0"`
}

type ReorderActivitiesRequest struct {
	ActivityIDs []string `json:"activity_ids" validate:"required,min=1"`
}

type ActivityResponse struct {
	ID               uuid.UUID           `json:"id"`
	DayID            uuid.UUID           `json:"day_id"`
	CatalogItemID    uuid.UUID           `json:"catalog_item_id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Category         models.ItemCategory `json:"category"`
	RetailPriceCents int64               `json:"retail_price_cents"`
	NetPriceCents    int64               `json:"net_price_cents"`
	SupplierName     *string             `json:"supplier_name,omitempty"`
	SupplierRef      *string             `json:"supplier_ref,omitempty"`
	Priority         int                 `json:"priority"`
}

// ListByDay возвращает активности дня по возрастанию приоритета.
func (h *ActivityHandler) ListByDay(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayID, err := uuid.Parse(c.Param("dayId"))
	if err != nil {
		return badRequest(c, "invalid day id")
	}

	activities, err := h.Activities.ListByDay(c.Request().Context(), agentID, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "day not found")
		}
		return serverError(c)
	}

	response := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		response = append(response, toActivityResponse(activity))
	}

	return c.JSON(http.StatusOK, map[string][]ActivityResponse{"activities": response})
}

// Create копирует каталожную позицию в день маршрута.
func (h *ActivityHandler) Create(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayID, err := uuid.Parse(c.Param("dayId"))
	if err != nil {
		return badRequest(c, "invalid day id")
	}

	var req CreateActivityRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	itemID, err := uuid.Parse(req.CatalogItemID)
	if err != nil {
		return badRequest(c, "invalid catalog item id")
	}

	activity, err := h.Activities.Create(c.Request().Context(), agentID, dayID, itemID, req.Priority)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "day or catalog item not found")
		}
		return serverError(c)
	}

	h.notifyTotalsByDay(c, agentID, dayID)
	return c.JSON(http.StatusCreated, toActivityResponse(activity))
}

// Update заменяет поля активности и корректирует итоги маршрута.
func (h *ActivityHandler) Update(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		return badRequest(c, "invalid activity id")
	}

	var req UpdateActivityRequest
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

	updated := models.Activity{
		Name:             name,
		Description:      req.Description,
		Category:         req.Category,
		RetailPriceCents: req.RetailPriceCents,
		NetPriceCents:    req.NetPriceCents,
		SupplierName:     req.SupplierName,
		SupplierRef:      req.SupplierRef,
		Priority:         req.Priority,
	}

	activity, err := h.Activities.Update(c.Request().Context(), agentID, activityID, updated)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "activity not found")
		}
		return serverError(c)
	}

	h.notifyTotalsByDay(c, agentID, activity.DayID)
	return c.JSON(http.StatusOK, toActivityResponse(activity))
}

// Delete удаляет активность и уменьшает итоги маршрута на ее цены.
func (h *ActivityHandler) Delete(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		return badRequest(c, "invalid activity id")
	}

	itineraryID, err := h.Activities.GetItineraryIDByActivity(c.Request().Context(), agentID, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "activity not found")
		}
		return serverError(c)
	}

	if err := h.Activities.Delete(c.Request().Context(), agentID, activityID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "activity not found")
		}
		return serverError(c)
	}

	h.notifyTotals(c, agentID, itineraryID)
	return c.NoContent(http.StatusNoContent)
}

// Reorder назначает активностям дня плотные приоритеты по переданному порядку.
func (h *ActivityHandler) Reorder(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayID, err := uuid.Parse(c.Param("dayId"))
	if err != nil {
		return badRequest(c, "invalid day id")
	}

	var req ReorderActivitiesRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	activityIDs, err := parseUUIDs(req.ActivityIDs)
	if err != nil {
		return badRequest(c, "invalid activity ids")
	}

	if err := h.Activities.Reorder(c.Request().Context(), agentID, dayID, activityIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "day or activities not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid activity order")
		}
		return serverError(c)
	}

	if itineraryID, err := h.Activities.GetItineraryIDByDay(c.Request().Context(), agentID, dayID); err == nil {
		publishItineraryUpdate(h.Notifier, agentID, itineraryID)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ActivityHandler) notifyTotalsByDay(c echo.Context, agentID, dayID uuid.UUID) {
	itineraryID, err := h.Activities.GetItineraryIDByDay(c.Request().Context(), agentID, dayID)
	if err != nil {
		return
	}

	h.notifyTotals(c, agentID, itineraryID)
}

func (h *ActivityHandler) notifyTotals(c echo.Context, agentID, itineraryID uuid.UUID) {
	retail, net, err := h.Itineraries.GetTotals(c.Request().Context(), itineraryID)
	if err != nil {
		return
	}

	publishTotalsUpdate(h.Notifier, agentID, itineraryID, retail, net)
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	seen := make(map[uuid.UUID]struct{}, len(values))

	for _, value := range values {
		parsed, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}

		if _, exists := seen[parsed]; exists {
			return nil, errors.New("duplicate id")
		}

		seen[parsed] = struct{}{}
		ids = append(ids, parsed)
	}

	return ids, nil
}

func toActivityResponse(activity models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:               activity.ID,
		DayID:            activity.DayID,
		CatalogItemID:    activity.CatalogItemID,
		Name:             activity.Name,
		Description:      activity.Description,
		Category:         activity.Category,
		RetailPriceCents: activity.RetailPriceCents,
		NetPriceCents:    activity.NetPriceCents,
		SupplierName:     activity.SupplierName,
		SupplierRef:      activity.SupplierRef,
		Priority:         activity.Priority,
	}
}
