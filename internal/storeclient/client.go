package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/composer"
	"example.com/trip-composer/backend/internal/models"
)

const dateLayout = "2006-01-02"

// TokenSource выдает bearer-токен для вызова хранилища.
type TokenSource func(ctx context.Context) (string, error)

// Client — HTTP-реализация composer.Store поверх REST API хранилища.
// Все вызовы несут bearer-токен; на любой не-2xx статус возвращается ошибка
// без дополнительной структуры, как и обещает контракт хранилища.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
}

var _ composer.Store = (*Client)(nil)

// New создает клиент хранилища с заданным адресом и источником токена.
func New(baseURL string, token TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type dayPayload struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
}

type activityPayload struct {
	ID               uuid.UUID `json:"id"`
	DayID            uuid.UUID `json:"day_id"`
	CatalogItemID    uuid.UUID `json:"catalog_item_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	RetailPriceCents int64     `json:"retail_price_cents"`
	NetPriceCents    int64     `json:"net_price_cents"`
	SupplierName     *string   `json:"supplier_name,omitempty"`
	SupplierRef      *string   `json:"supplier_ref,omitempty"`
	Priority         int       `json:"priority"`
}

type itineraryPayload struct {
	ID               uuid.UUID    `json:"id"`
	Title            string       `json:"title"`
	LeadName         string       `json:"lead_name"`
	RetailTotalCents int64        `json:"retail_total_cents"`
	NetTotalCents    int64        `json:"net_total_cents"`
	Notes            string       `json:"notes"`
	Days             []dayPayload `json:"days"`
}

// CreateDay создает день маршрута и возвращает его с назначенным ID.
func (c *Client) CreateDay(ctx context.Context, itineraryID uuid.UUID, draft composer.DayDraft) (models.ScheduledDay, error) {
	body := map[string]string{
		"name":     draft.Name,
		"location": draft.Location,
		"date":     draft.Date.Format(dateLayout),
	}

	var payload dayPayload
	err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/itineraries/%s/days", itineraryID), body, &payload)
	if err != nil {
		return models.ScheduledDay{}, err
	}

	return toDay(payload)
}

// UpdateDay сохраняет поля дня.
func (c *Client) UpdateDay(ctx context.Context, day models.ScheduledDay) error {
	body := map[string]string{
		"name":     day.Name,
		"location": day.Location,
		"date":     day.Date.Format(dateLayout),
	}

	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/v1/days/%s", day.ID), body, nil)
}

// DeleteDay удаляет день; на сервере удаление каскадно сносит его активности.
func (c *Client) DeleteDay(ctx context.Context, itineraryID, dayID uuid.UUID) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/itineraries/%s/days/%s", itineraryID, dayID), nil, nil)
}

// CreateActivity планирует каталожную позицию на день; хранилище копирует ее
// описательные и ценовые поля и возвращает активность с назначенным ID.
func (c *Client) CreateActivity(ctx context.Context, dayID, itemID uuid.UUID, priority int) (models.Activity, error) {
	body := map[string]interface{}{
		"catalog_item_id": itemID,
		"priority":        priority,
	}

	var payload activityPayload
	err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/days/%s/activities", dayID), body, &payload)
	if err != nil {
		return models.Activity{}, err
	}

	return toActivity(payload), nil
}

// UpdateActivity сохраняет активность целиком.
func (c *Client) UpdateActivity(ctx context.Context, activity models.Activity) error {
	body := map[string]interface{}{
		"name":               activity.Name,
		"description":        activity.Description,
		"category":           activity.Category,
		"retail_price_cents": activity.RetailPriceCents,
		"net_price_cents":    activity.NetPriceCents,
		"supplier_name":      activity.SupplierName,
		"supplier_ref":       activity.SupplierRef,
		"priority":           activity.Priority,
	}

	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/v1/activities/%s", activity.ID), body, nil)
}

// DeleteActivity удаляет активность.
func (c *Client) DeleteActivity(ctx context.Context, activityID uuid.UUID) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/activities/%s", activityID), nil, nil)
}

// UpdateItineraryHeader сохраняет заголовочные поля маршрута.
func (c *Client) UpdateItineraryHeader(ctx context.Context, itineraryID uuid.UUID, header composer.ItineraryHeader) error {
	body := map[string]interface{}{
		"title":              header.Title,
		"lead_name":          header.LeadName,
		"notes":              header.Notes,
		"retail_total_cents": header.RetailTotalCents,
		"net_total_cents":    header.NetTotalCents,
	}

	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/v1/itineraries/%s", itineraryID), body, nil)
}

// FetchItinerary загружает маршрут с вложенными днями.
func (c *Client) FetchItinerary(ctx context.Context, itineraryID uuid.UUID) (models.Itinerary, error) {
	var payload itineraryPayload
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/itineraries/%s", itineraryID), nil, &payload)
	if err != nil {
		return models.Itinerary{}, err
	}

	itinerary := models.Itinerary{
		ID:               payload.ID,
		Title:            payload.Title,
		LeadName:         payload.LeadName,
		RetailTotalCents: payload.RetailTotalCents,
		NetTotalCents:    payload.NetTotalCents,
		Notes:            payload.Notes,
	}

	for _, raw := range payload.Days {
		day, err := toDay(raw)
		if err != nil {
			return models.Itinerary{}, err
		}
		itinerary.Days = append(itinerary.Days, day)
	}

	return itinerary, nil
}

// FetchDayActivities загружает список активностей дня.
func (c *Client) FetchDayActivities(ctx context.Context, dayID uuid.UUID) ([]models.Activity, error) {
	var payload struct {
		Activities []activityPayload `json:"activities"`
	}

	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/days/%s/activities", dayID), nil, &payload)
	if err != nil {
		return nil, err
	}

	out := make([]models.Activity, 0, len(payload.Activities))
	for _, raw := range payload.Activities {
		out = append(out, toActivity(raw))
	}

	return out, nil
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return fmt.Errorf("resolve bearer token: %w", err)
	}

	request.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("store error (%d): %s", response.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("store error (%d): %s", response.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(raw, out)
}

func toDay(payload dayPayload) (models.ScheduledDay, error) {
	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		return models.ScheduledDay{}, fmt.Errorf("parse day date: %w", err)
	}

	return models.ScheduledDay{
		ID:          payload.ID,
		ItineraryID: payload.ItineraryID,
		Name:        payload.Name,
		Location:    payload.Location,
		Date:        date,
	}, nil
}

func toActivity(payload activityPayload) models.Activity {
	return models.Activity{
		ID:               payload.ID,
		DayID:            payload.DayID,
		CatalogItemID:    payload.CatalogItemID,
		Name:             payload.Name,
		Description:      payload.Description,
		Category:         models.ItemCategory(payload.Category),
		RetailPriceCents: payload.RetailPriceCents,
		NetPriceCents:    payload.NetPriceCents,
		SupplierName:     payload.SupplierName,
		SupplierRef:      payload.SupplierRef,
		Priority:         payload.Priority,
	}
}
