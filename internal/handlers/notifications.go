package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-composer/backend/internal/auth"
	"example.com/trip-composer/backend/internal/notifications"
)

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream открывает SSE-поток событий для агента.
func (h *NotificationHandler) Stream(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe(agentID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected", Data: map[string]string{"agent_id": agentID.String()}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishTotalsUpdate(hub *notifications.Hub, agentID uuid.UUID, itineraryID uuid.UUID, retailTotalCents, netTotalCents int64) {
	if hub == nil {
		return
	}

	hub.Publish(agentID, notifications.Event{
		Type: "totals_updated",
		Data: map[string]interface{}{
			"itinerary_id":       itineraryID.String(),
			"retail_total_cents": retailTotalCents,
			"net_total_cents":    netTotalCents,
		},
	})
}

func publishItineraryUpdate(hub *notifications.Hub, agentID uuid.UUID, itineraryID uuid.UUID) {
	if hub == nil {
		return
	}

	hub.Publish(agentID, notifications.Event{
		Type: "itinerary_updated",
		Data: map[string]interface{}{
			"itinerary_id": itineraryID.String(),
		},
	})
}
