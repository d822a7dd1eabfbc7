package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/trip-composer/backend/internal/models"
)

type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository создает репозиторий каталожных позиций.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CatalogFilter — необязательные фильтры выборки каталога.
type CatalogFilter struct {
	Country  string
	Location string
	Category models.ItemCategory
	Query    string
	Limit    int
}

const catalogColumns = `id, country, location, category, name, description,
	 retail_price_cents, net_price_cents, supplier_name, supplier_ref, image_url, created_at, updated_at`

// List возвращает каталожные позиции, подходящие под фильтры.
func (r *CatalogRepository) List(ctx context.Context, filter CatalogFilter) ([]models.CatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items`
	var conditions []string
	var args []interface{}

	if filter.Country != "" {
		args = append(args, filter.Country)
		conditions = append(conditions, fmt.Sprintf("country ILIKE $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY name ASC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CatalogItem
	for rows.Next() {
		var item models.CatalogItem
		if err := rows.Scan(&item.ID, &item.Country, &item.Location, &item.Category, &item.Name,
			&item.Description, &item.RetailPriceCents, &item.NetPriceCents,
			&item.SupplierName, &item.SupplierRef, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, rows.Err()
}

// Create добавляет позицию в каталог.
func (r *CatalogRepository) Create(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error) {
	var out models.CatalogItem

	err := r.db.QueryRow(ctx,
		`INSERT INTO catalog_items (id, country, location, category, name, description,
		                            retail_price_cents, net_price_cents, supplier_name, supplier_ref, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+catalogColumns,
		uuid.New(), item.Country, item.Location, item.Category, item.Name, item.Description,
		item.RetailPriceCents, item.NetPriceCents, item.SupplierName, item.SupplierRef, item.ImageURL,
	).Scan(&out.ID, &out.Country, &out.Location, &out.Category, &out.Name, &out.Description,
		&out.RetailPriceCents, &out.NetPriceCents, &out.SupplierName, &out.SupplierRef,
		&out.ImageURL, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return out, err
	}

	return out, nil
}

// GetByID возвращает каталожную позицию по идентификатору.
func (r *CatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (models.CatalogItem, error) {
	var item models.CatalogItem

	err := r.db.QueryRow(ctx,
		`SELECT `+catalogColumns+`
		 FROM catalog_items
		 WHERE id = $1`,
		id,
	).Scan(&item.ID, &item.Country, &item.Location, &item.Category, &item.Name, &item.Description,
		&item.RetailPriceCents, &item.NetPriceCents, &item.SupplierName, &item.SupplierRef,
		&item.ImageURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return item, ErrNotFound
		}
		return item, err
	}

	return item, nil
}
