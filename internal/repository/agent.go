package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/trip-composer/backend/internal/models"
)

type AgentRepository struct {
	db *pgxpool.Pool
}

// NewAgentRepository создает репозиторий агентов.
func NewAgentRepository(db *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create регистрирует агента в базе.
func (r *AgentRepository) Create(ctx context.Context, email, passwordHash string, name *string) (models.Agent, error) {
	var agent models.Agent
	var nameValue *string

	err := r.db.QueryRow(ctx,
		`INSERT INTO agents (email, password_hash, name)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, name, created_at, updated_at`,
		email, passwordHash, name,
	).Scan(&agent.ID, &agent.Email, &agent.PasswordHash, &nameValue, &agent.CreatedAt, &agent.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return agent, ErrConflict
		}
		return agent, err
	}

	agent.Name = nameValue
	return agent, nil
}

// GetByEmail возвращает агента по email.
func (r *AgentRepository) GetByEmail(ctx context.Context, email string) (models.Agent, error) {
	var agent models.Agent
	var nameValue *string

	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at
		 FROM agents
		 WHERE email = $1`,
		email,
	).Scan(&agent.ID, &agent.Email, &agent.PasswordHash, &nameValue, &agent.CreatedAt, &agent.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agent, ErrNotFound
		}
		return agent, err
	}

	agent.Name = nameValue
	return agent, nil
}

// GetByID возвращает агента по идентификатору.
func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Agent, error) {
	var agent models.Agent
	var nameValue *string

	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at
		 FROM agents
		 WHERE id = $1`,
		id,
	).Scan(&agent.ID, &agent.Email, &agent.PasswordHash, &nameValue, &agent.CreatedAt, &agent.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agent, ErrNotFound
		}
		return agent, err
	}

	agent.Name = nameValue
	return agent, nil
}
