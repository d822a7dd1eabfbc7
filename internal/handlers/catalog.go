package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-composer/backend/internal/models"
	"example.com/trip-composer/backend/internal/repository"
)

type CatalogHandler struct {
	Catalog *repository.CatalogRepository
}

// NewCatalogHandler создает обработчик каталога позиций.
func NewCatalogHandler(catalog *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

type CreateCatalogItemRequest struct {
	Country          string              `json:"country" validate:"required,max=100"`
	Location         string              `json:"location" validate:"required,max=200"`
	Category         models.ItemCategory `json:"category" validate:"required,oneof=activity lodging flight transportation cruise info"`
	Name             string              `json:"name" validate:"required,max=200"`
	Description      string              `json:"description" validate:"max=4000"`
	RetailPriceCents int64               `json:"retail_price_cents" validate:"gte=0"`
	NetPriceCents    int64               `json:"net_price_cents" validate:"gte=0"`
	SupplierName     *string             `json:"supplier_name"`
	SupplierRef      *string             `json:"supplier_ref"`
	ImageURL         *string             `json:"image_url"`
}

// List возвращает каталожные позиции по фильтрам запроса.
func (h *CatalogHandler) List(c echo.Context) error {
	filter := repository.CatalogFilter{
		Country:  strings.TrimSpace(c.QueryParam("country")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		Category: models.ItemCategory(strings.TrimSpace(c.QueryParam("category"))),
		Query:    strings.TrimSpace(c.QueryParam("q")),
	}

	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return badRequest(c, "invalid limit")
		}
		filter.Limit = limit
	}

	items, err := h.Catalog.List(c.Request().Context(), filter)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.CatalogItem{"items": items})
}

// Create добавляет позицию в каталог.
func (h *CatalogHandler) Create(c echo.Context) error {
	var req CreateCatalogItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	item, err := h.Catalog.Create(c.Request().Context(), models.CatalogItem{
		Country:          strings.TrimSpace(req.Country),
		Location:         strings.TrimSpace(req.Location),
		Category:         req.Category,
		Name:             name,
		Description:      req.Description,
		RetailPriceCents: req.RetailPriceCents,
		NetPriceCents:    req.NetPriceCents,
		SupplierName:     req.SupplierName,
		SupplierRef:      req.SupplierRef,
		ImageURL:         req.ImageURL,
	})
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, item)
}

// Get возвращает каталожную позицию по идентификатору.
func (h *CatalogHandler) Get(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid catalog item id")
	}

	item, err := h.Catalog.GetByID(c.Request().Context(), itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "catalog item not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, item)
}
