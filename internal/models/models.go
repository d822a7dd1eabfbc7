package models

import (
	"time"

	"github.com/google/uuid"
)

type ItemCategory string

type DayState string

const (
	ItemCategoryActivity       ItemCategory = "activity"
	ItemCategoryLodging        ItemCategory = "lodging"
	ItemCategoryFlight         ItemCategory = "flight"
	ItemCategoryTransportation ItemCategory = "transportation"
	ItemCategoryCruise         ItemCategory = "cruise"
	ItemCategoryInfo           ItemCategory = "info"

	DayStateDraft     DayState = "draft"
	DayStateCreating  DayState = "creating"
	DayStatePersisted DayState = "persisted"
	DayStateFailed    DayState = "failed"
)

type Agent struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Itinerary struct {
	ID               uuid.UUID      `json:"id"`
	AgentID          uuid.UUID      `json:"agent_id"`
	Title            string         `json:"title"`
	LeadName         string         `json:"lead_name"`
	RetailTotalCents int64          `json:"retail_total_cents"`
	NetTotalCents    int64          `json:"net_total_cents"`
	Notes            string         `json:"notes"`
	Days             []ScheduledDay `json:"days,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ScheduledDay держит ID равным uuid.Nil, пока день не сохранен в хранилище;
// состояние жизненного цикла при этом отслеживает DayState у владельца списка.
type ScheduledDay struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CatalogItem struct {
	ID               uuid.UUID    `json:"id"`
	Country          string       `json:"country"`
	Location         string       `json:"location"`
	Category         ItemCategory `json:"category"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	RetailPriceCents int64        `json:"retail_price_cents"`
	NetPriceCents    int64        `json:"net_price_cents"`
	SupplierName     *string      `json:"supplier_name,omitempty"`
	SupplierRef      *string      `json:"supplier_ref,omitempty"`
	ImageURL         *string      `json:"image_url,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Activity копирует описательные и ценовые поля каталожной позиции в момент
// планирования, чтобы правка активности не трогала общий CatalogItem.
type Activity struct {
	ID               uuid.UUID    `json:"id"`
	DayID            uuid.UUID    `json:"day_id"`
	CatalogItemID    uuid.UUID    `json:"catalog_item_id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Category         ItemCategory `json:"category"`
	RetailPriceCents int64        `json:"retail_price_cents"`
	NetPriceCents    int64        `json:"net_price_cents"`
	SupplierName     *string      `json:"supplier_name,omitempty"`
	SupplierRef      *string      `json:"supplier_ref,omitempty"`
	Priority         int          `json:"priority"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	AgentID    uuid.UUID  `json:"agent_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
