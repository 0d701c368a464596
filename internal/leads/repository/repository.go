// Package repository provides persistence for leads.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventcraft_backend/platform/apperr"
)

const leadNotFoundMessage = "Lead not found"

const uniqueViolation = "23505"

// Lead is a lead row joined with its provider, event, optional step, and
// requesting user.
type Lead struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ProviderID     uuid.UUID
	EventID        uuid.UUID
	StepID         *uuid.UUID
	Status         string
	Message        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	BusinessName   string
	ProviderType   string
	ProviderCity   string
	ProviderRegion string
	ProviderUserID uuid.UUID
	OwnerName      string
	OwnerEmail     string
	EventType      string
	EventPrompt    string
	StepTitle      *string
	StepDesc       *string
	RequesterName  string
	RequesterEmail string
}

// CreateParams contains parameters for lead creation.
type CreateParams struct {
	UserID     uuid.UUID
	ProviderID uuid.UUID
	EventID    uuid.UUID
	StepID     *uuid.UUID
	Message    *string
}

// UpdateParams contains partial-update parameters keyed by lead ID.
type UpdateParams struct {
	ID      uuid.UUID
	Status  *string
	Message *string
}

// ListFilters narrows a lead listing. Exactly one of UserID or ProviderID is
// set, matching the caller's role.
type ListFilters struct {
	UserID     *uuid.UUID
	ProviderID *uuid.UUID
	Status     string
	EventID    *uuid.UUID
	Limit      int
	Offset     int
}

// Stats holds per-status lead counts.
type Stats struct {
	Total     int
	New       int
	Contacted int
	Booked    int
}

// Repository defines persistence operations for leads.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	List(ctx context.Context, filters ListFilters) ([]Lead, error)
	Update(ctx context.Context, params UpdateParams) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	StatsFor(ctx context.Context, filters ListFilters) (Stats, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lead repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const leadColumns = `
	l.id, l.user_id, l.provider_id, l.event_id, l.step_id, l.status, l.message,
	l.created_at, l.updated_at,
	p.business_name, p.provider_type, p.location_city, p.location_province, p.user_id,
	pu.name, pu.email,
	e.event_type, e.prompt,
	t.step_title, t.description,
	u.name, u.email`

const leadJoins = `
	FROM leads l
	JOIN providers p ON p.id = l.provider_id
	JOIN users pu ON pu.id = p.user_id
	JOIN events e ON e.id = l.event_id
	LEFT JOIN tasks t ON t.id = l.step_id
	JOIN users u ON u.id = l.user_id`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.UserID, &l.ProviderID, &l.EventID, &l.StepID, &l.Status, &l.Message,
		&l.CreatedAt, &l.UpdatedAt,
		&l.BusinessName, &l.ProviderType, &l.ProviderCity, &l.ProviderRegion, &l.ProviderUserID,
		&l.OwnerName, &l.OwnerEmail,
		&l.EventType, &l.EventPrompt,
		&l.StepTitle, &l.StepDesc,
		&l.RequesterName, &l.RequesterEmail,
	)
	return l, err
}

// Create inserts a lead in the 'new' state. The unique constraint on
// (user, provider, event) resolves races between duplicate requests; the
// second insert maps to a conflict.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Lead, error) {
	query := `
		WITH inserted AS (
			INSERT INTO leads (user_id, provider_id, event_id, step_id, message, status)
			VALUES ($1, $2, $3, $4, $5, 'new')
			RETURNING *
		)
		SELECT ` + leadColumns + `
		FROM inserted l
		JOIN providers p ON p.id = l.provider_id
		JOIN users pu ON pu.id = p.user_id
		JOIN events e ON e.id = l.event_id
		LEFT JOIN tasks t ON t.id = l.step_id
		JOIN users u ON u.id = l.user_id`

	row := r.pool.QueryRow(ctx, query, params.UserID, params.ProviderID, params.EventID, params.StepID, params.Message)
	l, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Lead{}, apperr.Conflict("Lead already exists for this provider and event")
		}
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return l, nil
}

// GetByID retrieves a lead with its joined context.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + leadJoins + ` WHERE l.id = $1`

	l, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

// List returns leads for one role scope, newest first.
func (r *Repo) List(ctx context.Context, filters ListFilters) ([]Lead, error) {
	var statusParam interface{}
	if filters.Status != "" {
		statusParam = filters.Status
	}

	query := `
		SELECT ` + leadColumns + leadJoins + `
		WHERE ($1::uuid IS NULL OR l.user_id = $1)
			AND ($2::uuid IS NULL OR l.provider_id = $2)
			AND ($3::text IS NULL OR l.status = $3)
			AND ($4::uuid IS NULL OR l.event_id = $4)
		ORDER BY l.created_at DESC
		LIMIT $5 OFFSET $6`

	rows, err := r.pool.Query(ctx, query,
		filters.UserID, filters.ProviderID, statusParam, filters.EventID,
		filters.Limit, filters.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// Update applies a partial update to a lead.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Lead, error) {
	query := `
		WITH updated AS (
			UPDATE leads
			SET status = COALESCE($2, status),
				message = COALESCE($3, message),
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + leadColumns + `
		FROM updated l
		JOIN providers p ON p.id = l.provider_id
		JOIN users pu ON pu.id = p.user_id
		JOIN events e ON e.id = l.event_id
		LEFT JOIN tasks t ON t.id = l.step_id
		JOIN users u ON u.id = l.user_id`

	l, err := scanLead(r.pool.QueryRow(ctx, query, params.ID, params.Status, params.Message))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return l, nil
}

// Delete removes a lead.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

// StatsFor aggregates lead counts by status for one role scope.
func (r *Repo) StatsFor(ctx context.Context, filters ListFilters) (Stats, error) {
	query := `
		SELECT status, COUNT(*)
		FROM leads
		WHERE ($1::uuid IS NULL OR user_id = $1)
			AND ($2::uuid IS NULL OR provider_id = $2)
		GROUP BY status`

	rows, err := r.pool.Query(ctx, query, filters.UserID, filters.ProviderID)
	if err != nil {
		return Stats{}, fmt.Errorf("lead stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scan lead stats: %w", err)
		}
		stats.Total += count
		switch status {
		case "new":
			stats.New = count
		case "contacted":
			stats.Contacted = count
		case "booked":
			stats.Booked = count
		}
	}
	return stats, rows.Err()
}
