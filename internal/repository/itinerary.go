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

type ItineraryRepository struct {
	db *pgxpool.Pool
}

// NewItineraryRepository создает репозиторий маршрутов.
func NewItineraryRepository(db *pgxpool.Pool) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

// ListByAgent возвращает заголовки маршрутов агента.
func (r *ItineraryRepository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]models.Itinerary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, agent_id, title, lead_name, retail_total_cents, net_total_cents, notes, created_at, updated_at
		 FROM itineraries
		 WHERE agent_id = $1
		 ORDER BY updated_at DESC`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Itinerary
	for rows.Next() {
		var itinerary models.Itinerary
		if err := rows.Scan(
			&itinerary.ID, &itinerary.AgentID, &itinerary.Title, &itinerary.LeadName,
			&itinerary.RetailTotalCents, &itinerary.NetTotalCents, &itinerary.Notes,
			&itinerary.CreatedAt, &itinerary.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, itinerary)
	}

	return out, rows.Err()
}

// Create создает пустой маршрут с нулевыми итогами.
func (r *ItineraryRepository) Create(ctx context.Context, agentID uuid.UUID, title, leadName, notes string) (models.Itinerary, error) {
	var itinerary models.Itinerary

	err := r.db.QueryRow(ctx,
		`INSERT INTO itineraries (id, agent_id, title, lead_name, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, agent_id, title, lead_name, retail_total_cents, net_total_cents, notes, created_at, updated_at`,
		uuid.New(), agentID, title, leadName, notes,
	).Scan(
		&itinerary.ID, &itinerary.AgentID, &itinerary.Title, &itinerary.LeadName,
		&itinerary.RetailTotalCents, &itinerary.NetTotalCents, &itinerary.Notes,
		&itinerary.CreatedAt, &itinerary.UpdatedAt,
	)
	if err != nil {
		return itinerary, err
	}

	return itinerary, nil
}

// GetByID возвращает маршрут агента с вложенными днями, отсортированными по
// календарной дате по возрастанию.
func (r *ItineraryRepository) GetByID(ctx context.Context, agentID, itineraryID uuid.UUID) (models.Itinerary, error) {
	var itinerary models.Itinerary

	err := r.db.QueryRow(ctx,
		`SELECT id, agent_id, title, lead_name, retail_total_cents, net_total_cents, notes, created_at, updated_at
		 FROM itineraries
		 WHERE id = $1 AND agent_id = $2`,
		itineraryID, agentID,
	).Scan(
		&itinerary.ID, &itinerary.AgentID, &itinerary.Title, &itinerary.LeadName,
		&itinerary.RetailTotalCents, &itinerary.NetTotalCents, &itinerary.Notes,
		&itinerary.CreatedAt, &itinerary.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return itinerary, ErrNotFound
		}
		return itinerary, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, itinerary_id, name, location, date, created_at, updated_at
		 FROM scheduled_days
		 WHERE itinerary_id = $1
		 ORDER BY date ASC, created_at ASC`,
		itineraryID,
	)
	if err != nil {
		return itinerary, err
	}
	defer rows.Close()

	for rows.Next() {
		var day models.ScheduledDay
		var date time.Time
		if err := rows.Scan(&day.ID, &day.ItineraryID, &day.Name, &day.Location, &date, &day.CreatedAt, &day.UpdatedAt); err != nil {
			return itinerary, err
		}
		day.Date = date
		itinerary.Days = append(itinerary.Days, day)
	}

	return itinerary, rows.Err()
}

// UpdateHeader сохраняет заголовочные поля маршрута, включая переопределенные
// итоги цен.
func (r *ItineraryRepository) UpdateHeader(ctx context.Context, agentID, itineraryID uuid.UUID, title, leadName, notes string, retailTotalCents, netTotalCents int64) (models.Itinerary, error) {
	var itinerary models.Itinerary

	err := r.db.QueryRow(ctx,
		`UPDATE itineraries
		 SET title = $3,
		     lead_name = $4,
		     notes = $5,
		     retail_total_cents = $6,
		     net_total_cents = $7,
		     updated_at = NOW()
		 WHERE id = $1 AND agent_id = $2
		 RETURNING id, agent_id, title, lead_name, retail_total_cents, net_total_cents, notes, created_at, updated_at`,
		itineraryID, agentID, title, leadName, notes, retailTotalCents, netTotalCents,
	).Scan(
		&itinerary.ID, &itinerary.AgentID, &itinerary.Title, &itinerary.LeadName,
		&itinerary.RetailTotalCents, &itinerary.NetTotalCents, &itinerary.Notes,
		&itinerary.CreatedAt, &itinerary.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return itinerary, ErrNotFound
		}
		return itinerary, err
	}

	return itinerary, nil
}

// Delete удаляет маршрут вместе с днями и активностями.
func (r *ItineraryRepository) Delete(ctx context.Context, agentID, itineraryID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM itineraries
		 WHERE id = $1 AND agent_id = $2`,
		itineraryID, agentID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetTotals возвращает текущие итоги цен маршрута.
func (r *ItineraryRepository) GetTotals(ctx context.Context, itineraryID uuid.UUID) (retailCents, netCents int64, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT retail_total_cents, net_total_cents
		 FROM itineraries
		 WHERE id = $1`,
		itineraryID,
	).Scan(&retailCents, &netCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, err
	}

	return retailCents, netCents, nil
}
