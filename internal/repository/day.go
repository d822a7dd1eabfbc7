package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/trip-composer/backend/internal/models"
)

type DayRepository struct {
	db *pgxpool.Pool
}

// NewDayRepository создает репозиторий дней маршрута.
func NewDayRepository(db *pgxpool.Pool) *DayRepository {
	return &DayRepository{db: db}
}

// Create добавляет день в маршрут агента и возвращает его с назначенным
// идентификатором.
func (r *DayRepository) Create(ctx context.Context, agentID, itineraryID uuid.UUID, name, location string, date time.Time) (models.ScheduledDay, error) {
	var day models.ScheduledDay

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return day, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = ensureItineraryOwned(ctx, tx, agentID, itineraryID); err != nil {
		return day, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO scheduled_days (id, itinerary_id, name, location, date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, itinerary_id, name, location, date, created_at, updated_at`,
		uuid.New(), itineraryID, name, location, date,
	).Scan(&day.ID, &day.ItineraryID, &day.Name, &day.Location, &day.Date, &day.CreatedAt, &day.UpdatedAt)
	if err != nil {
		return day, err
	}

	if err := tx.Commit(ctx); err != nil {
		return day, err
	}

	return day, nil
}

// Update сохраняет поля дня.
func (r *DayRepository) Update(ctx context.Context, agentID, dayID uuid.UUID, name, location string, date time.Time) (models.ScheduledDay, error) {
	var day models.ScheduledDay

	err := r.db.QueryRow(ctx,
		`UPDATE scheduled_days d
		 SET name = $3,
		     location = $4,
		     date = $5,
		     updated_at = NOW()
		 FROM itineraries i
		 WHERE d.id = $1
		   AND d.itinerary_id = i.id
		   AND i.agent_id = $2
		 RETURNING d.id, d.itinerary_id, d.name, d.location, d.date, d.created_at, d.updated_at`,
		dayID, agentID, name, location, date,
	).Scan(&day.ID, &day.ItineraryID, &day.Name, &day.Location, &day.Date, &day.CreatedAt, &day.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return day, ErrNotFound
		}
		return day, err
	}

	return day, nil
}

// Delete удаляет день: каскадом сносит его активности и в той же транзакции
// возвращает их вклад в итоги маршрута.
func (r *DayRepository) Delete(ctx context.Context, agentID, itineraryID, dayID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = lockItineraryOwned(ctx, tx, agentID, itineraryID); err != nil {
		return err
	}

	var retail, net int64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(retail_price_cents), 0), COALESCE(SUM(net_price_cents), 0)
		 FROM activities
		 WHERE day_id = $1`,
		dayID,
	).Scan(&retail, &net)
	if err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx,
		`DELETE FROM scheduled_days
		 WHERE id = $1 AND itinerary_id = $2`,
		dayID, itineraryID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`UPDATE itineraries
		 SET retail_total_cents = retail_total_cents - $2,
		     net_total_cents = net_total_cents - $3,
		     updated_at = NOW()
		 WHERE id = $1`,
		itineraryID, retail, net,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func ensureItineraryOwned(ctx context.Context, tx pgx.Tx, agentID, itineraryID uuid.UUID) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM itineraries WHERE id = $1 AND agent_id = $2
		 )`,
		itineraryID, agentID,
	).Scan(&exists)
	if err != nil {
		return err
	}

	if !exists {
		return ErrNotFound
	}

	return nil
}

func lockItineraryOwned(ctx context.Context, tx pgx.Tx, agentID, itineraryID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`SELECT id
		 FROM itineraries
		 WHERE id = $1 AND agent_id = $2
		 FOR UPDATE`,
		itineraryID, agentID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	return nil
}
