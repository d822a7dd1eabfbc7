package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/trip-composer/backend/internal/models"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository создает репозиторий активностей.
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, day_id, catalog_item_id, name, description, category,
	 retail_price_cents, net_price_cents, supplier_name, supplier_ref, priority, created_at, updated_at`

// ListByDay возвращает активности дня в порядке приоритета.
func (r *ActivityRepository) ListByDay(ctx context.Context, agentID, dayID uuid.UUID) ([]models.Activity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.day_id, a.catalog_item_id, a.name, a.description, a.category,
		        a.retail_price_cents, a.net_price_cents, a.supplier_name, a.supplier_ref,
		        a.priority, a.created_at, a.updated_at
		 FROM activities a
		 JOIN scheduled_days d ON d.id = a.day_id
		 JOIN itineraries i ON i.id = d.itinerary_id
		 WHERE a.day_id = $1 AND i.agent_id = $2
		 ORDER BY a.priority ASC`,
		dayID, agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, activity)
	}

	return out, rows.Err()
}

// Create планирует каталожную позицию на день: копирует ее описательные и
// ценовые поля в новую активность и в той же транзакции прибавляет цены к
// итогам маршрута. При priority <= 0 активность получает следующий по счету
// приоритет в дне.
func (r *ActivityRepository) Create(ctx context.Context, agentID, dayID, itemID uuid.UUID, priority int) (models.Activity, error) {
	var activity models.Activity

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return activity, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	itineraryID, err := lockDayItinerary(ctx, tx, agentID, dayID)
	if err != nil {
		return activity, err
	}

	var item models.CatalogItem
	err = tx.QueryRow(ctx,
		`SELECT id, name, description, category, retail_price_cents, net_price_cents, supplier_name, supplier_ref
		 FROM catalog_items
		 WHERE id = $1`,
		itemID,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Category,
		&item.RetailPriceCents, &item.NetPriceCents, &item.SupplierName, &item.SupplierRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return activity, ErrNotFound
		}
		return activity, err
	}

	if priority <= 0 {
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(priority), 0) + 1
			 FROM activities
			 WHERE day_id = $1`,
			dayID,
		).Scan(&priority)
		if err != nil {
			return activity, err
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO activities (id, day_id, catalog_item_id, name, description, category,
		                         retail_price_cents, net_price_cents, supplier_name, supplier_ref, priority)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+activityColumns,
		uuid.New(), dayID, item.ID, item.Name, item.Description, item.Category,
		item.RetailPriceCents, item.NetPriceCents, item.SupplierName, item.SupplierRef, priority,
	).Scan(&activity.ID, &activity.DayID, &activity.CatalogItemID, &activity.Name, &activity.Description,
		&activity.Category, &activity.RetailPriceCents, &activity.NetPriceCents,
		&activity.SupplierName, &activity.SupplierRef, &activity.Priority, &activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		return activity, err
	}

	if err = applyTotalsDelta(ctx, tx, itineraryID, activity.RetailPriceCents, activity.NetPriceCents); err != nil {
		return activity, err
	}

	if err := tx.Commit(ctx); err != nil {
		return activity, err
	}

	return activity, nil
}

// Update заменяет поля активности целиком и корректирует итоги маршрута на
// разницу цен в той же транзакции.
func (r *ActivityRepository) Update(ctx context.Context, agentID, activityID uuid.UUID, updated models.Activity) (models.Activity, error) {
	var activity models.Activity

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return activity, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var itineraryID uuid.UUID
	var currentRetail, currentNet int64
	err = tx.QueryRow(ctx,
		`SELECT i.id, a.retail_price_cents, a.net_price_cents
		 FROM activities a
		 JOIN scheduled_days d ON d.id = a.day_id
		 JOIN itineraries i ON i.id = d.itinerary_id
		 WHERE a.id = $1 AND i.agent_id = $2
		 FOR UPDATE OF i`,
		activityID, agentID,
	).Scan(&itineraryID, &currentRetail, &currentNet)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return activity, ErrNotFound
		}
		return activity, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE activities
		 SET name = $2,
		     description = $3,
		     category = $4,
		     retail_price_cents = $5,
		     net_price_cents = $6,
		     supplier_name = $7,
		     supplier_ref = $8,
		     priority = $9,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+activityColumns,
		activityID, updated.Name, updated.Description, updated.Category,
		updated.RetailPriceCents, updated.NetPriceCents, updated.SupplierName, updated.SupplierRef, updated.Priority,
	).Scan(&activity.ID, &activity.DayID, &activity.CatalogItemID, &activity.Name, &activity.Description,
		&activity.Category, &activity.RetailPriceCents, &activity.NetPriceCents,
		&activity.SupplierName, &activity.SupplierRef, &activity.Priority, &activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		return activity, err
	}

	err = applyTotalsDelta(ctx, tx, itineraryID,
		activity.RetailPriceCents-currentRetail, activity.NetPriceCents-currentNet)
	if err != nil {
		return activity, err
	}

	if err := tx.Commit(ctx); err != nil {
		return activity, err
	}

	return activity, nil
}

// Delete удаляет активность и возвращает ее вклад в итоги маршрута.
func (r *ActivityRepository) Delete(ctx context.Context, agentID, activityID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var itineraryID uuid.UUID
	var retail, net int64
	err = tx.QueryRow(ctx,
		`SELECT i.id, a.retail_price_cents, a.net_price_cents
		 FROM activities a
		 JOIN scheduled_days d ON d.id = a.day_id
		 JOIN itineraries i ON i.id = d.itinerary_id
		 WHERE a.id = $1 AND i.agent_id = $2
		 FOR UPDATE OF i`,
		activityID, agentID,
	).Scan(&itineraryID, &retail, &net)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM activities WHERE id = $1`, activityID); err != nil {
		return err
	}

	if err = applyTotalsDelta(ctx, tx, itineraryID, -retail, -net); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Reorder переназначает приоритеты активностей дня плотной
// последовательностью 1..N в заданном порядке. Список должен быть
// перестановкой всех активностей дня.
func (r *ActivityRepository) Reorder(ctx context.Context, agentID, dayID uuid.UUID, activityIDs []uuid.UUID) error {
	if len(activityIDs) == 0 {
		return ErrInvalid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = lockDayItinerary(ctx, tx, agentID, dayID); err != nil {
		return err
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM activities
		 WHERE day_id = $1 AND id = ANY($2)`,
		dayID, activityIDs,
	).Scan(&count)
	if err != nil {
		return err
	}

	if count != len(activityIDs) {
		return ErrInvalid
	}

	var total int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM activities
		 WHERE day_id = $1`,
		dayID,
	).Scan(&total)
	if err != nil {
		return err
	}

	if total != len(activityIDs) {
		return ErrInvalid
	}

	cmd, err := tx.Exec(ctx,
		`UPDATE activities AS a
		 SET priority = v.ord,
		     updated_at = NOW()
		 FROM unnest($1::uuid[]) WITH ORDINALITY AS v(id, ord)
		 WHERE a.id = v.id AND a.day_id = $2`,
		activityIDs, dayID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() != int64(len(activityIDs)) {
		return ErrInvalid
	}

	return tx.Commit(ctx)
}

// GetItineraryIDByDay возвращает маршрут, которому принадлежит день.
func (r *ActivityRepository) GetItineraryIDByDay(ctx context.Context, agentID, dayID uuid.UUID) (uuid.UUID, error) {
	var itineraryID uuid.UUID

	err := r.db.QueryRow(ctx,
		`SELECT i.id
		 FROM scheduled_days d
		 JOIN itineraries i ON i.id = d.itinerary_id
		 WHERE d.id = $1 AND i.agent_id = $2`,
		dayID, agentID,
	).Scan(&itineraryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}

	return itineraryID, nil
}

// GetItineraryIDByActivity возвращает маршрут, которому принадлежит активность.
func (r *ActivityRepository) GetItineraryIDByActivity(ctx context.Context, agentID, activityID uuid.UUID) (uuid.UUID, error) {
	var itineraryID uuid.UUID

	err := r.db.QueryRow(ctx,
		`SELECT i.id
		 FROM activities a
		 JOIN scheduled_days d ON d.id = a.day_id
		 JOIN itineraries i ON i.id = d.itinerary_id
		 WHERE a.id = $1 AND i.agent_id = $2`,
		activityID, agentID,
	).Scan(&itineraryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}

	return itineraryID, nil
}

func lockDayItinerary(ctx context.Context, tx pgx.Tx, agentID, dayID uuid.UUID) (uuid.UUID, error) {
	var itineraryID uuid.UUID

	err := tx.QueryRow(ctx,
		`SELECT i.id
		 FROM scheduled_days d
		 JOIN itineraries i ON i.id = d.itinerary_id
		 WHERE d.id = $1 AND i.agent_id = $2
		 FOR UPDATE OF i`,
		dayID, agentID,
	).Scan(&itineraryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}

	return itineraryID, nil
}

func applyTotalsDelta(ctx context.Context, tx pgx.Tx, itineraryID uuid.UUID, retailDelta, netDelta int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE itineraries
		 SET retail_total_cents = retail_total_cents + $2,
		     net_total_cents = net_total_cents + $3,
		     updated_at = NOW()
		 WHERE id = $1`,
		itineraryID, retailDelta, netDelta,
	)
	return err
}

func scanActivity(rows pgx.Rows) (models.Activity, error) {
	var activity models.Activity
	err := rows.Scan(&activity.ID, &activity.DayID, &activity.CatalogItemID, &activity.Name,
		&activity.Description, &activity.Category, &activity.RetailPriceCents, &activity.NetPriceCents,
		&activity.SupplierName, &activity.SupplierRef, &activity.Priority, &activity.CreatedAt, &activity.UpdatedAt)
	return activity, err
}
