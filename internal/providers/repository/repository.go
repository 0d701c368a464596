// Package repository provides persistence for provider profiles.
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

const providerNotFoundMessage = "Provider not found"

const uniqueViolation = "23505"

// Provider represents a provider profile row joined with its owner account.
type Provider struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	BusinessName       string
	ProviderType       string
	Phone              string
	LocationCity       string
	LocationProvince   string
	LocationLat        *float64
	LocationLng        *float64
	Description        string
	Tags               []string
	LogoURL            *string
	SampleImages       []string
	IsActive           bool
	SubscriptionStatus string
	OwnerName          string
	OwnerEmail         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreateParams contains parameters for provider onboarding.
type CreateParams struct {
	UserID           uuid.UUID
	BusinessName     string
	ProviderType     string
	Phone            string
	LocationCity     string
	LocationProvince string
	LocationLat      *float64
	LocationLng      *float64
	Description      string
	Tags             []string
	LogoURL          *string
	SampleImages     []string
}

// UpdateParams contains partial-update parameters keyed by provider ID.
type UpdateParams struct {
	ID               uuid.UUID
	BusinessName     *string
	ProviderType     *string
	Phone            *string
	LocationCity     *string
	LocationProvince *string
	LocationLat      *float64
	LocationLng      *float64
	Description      *string
	Tags             []string
	LogoURL          *string
	SampleImages     []string
}

// ListFilters narrows the public provider directory.
type ListFilters struct {
	Type     string
	City     string
	Province string
	Tags     []string
	Search   string
	Limit    int
	Offset   int
}

// CandidateFilters narrows candidate providers for relevance matching.
type CandidateFilters struct {
	Types []string
	City  string
	Limit int
}

// Repository defines persistence operations for provider profiles.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Provider, error)
	GetByID(ctx context.Context, id uuid.UUID) (Provider, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (Provider, error)
	List(ctx context.Context, filters ListFilters) ([]Provider, error)
	ListCandidates(ctx context.Context, filters CandidateFilters) ([]Provider, error)
	Update(ctx context.Context, params UpdateParams) (Provider, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	UpdateSubscriptionStatus(ctx context.Context, userID uuid.UUID, status string) (Provider, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new provider repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const providerColumns = `
	p.id, p.user_id, p.business_name, p.provider_type, p.phone,
	p.location_city, p.location_province, p.location_lat, p.location_lng,
	p.description, p.tags, p.logo_url, p.sample_images,
	p.is_active, p.subscription_status, u.name, u.email,
	p.created_at, p.updated_at`

func scanProvider(row pgx.Row) (Provider, error) {
	var p Provider
	err := row.Scan(
		&p.ID, &p.UserID, &p.BusinessName, &p.ProviderType, &p.Phone,
		&p.LocationCity, &p.LocationProvince, &p.LocationLat, &p.LocationLng,
		&p.Description, &p.Tags, &p.LogoURL, &p.SampleImages,
		&p.IsActive, &p.SubscriptionStatus, &p.OwnerName, &p.OwnerEmail,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanProviders(rows pgx.Rows) ([]Provider, error) {
	defer rows.Close()

	providers := make([]Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// Create inserts a provider profile. One profile per account; a duplicate
// maps to a conflict error.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Provider, error) {
	query := `
		WITH inserted AS (
			INSERT INTO providers (
				user_id, business_name, provider_type, phone,
				location_city, location_province, location_lat, location_lng,
				description, tags, logo_url, sample_images
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING *
		)
		SELECT ` + providerColumns + `
		FROM inserted p
		JOIN users u ON u.id = p.user_id`

	row := r.pool.QueryRow(ctx, query,
		params.UserID, params.BusinessName, params.ProviderType, params.Phone,
		params.LocationCity, params.LocationProvince, params.LocationLat, params.LocationLng,
		params.Description, params.Tags, params.LogoURL, params.SampleImages,
	)
	p, err := scanProvider(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Provider{}, apperr.Conflict("Provider profile already exists")
		}
		return Provider{}, fmt.Errorf("create provider: %w", err)
	}
	return p, nil
}

// GetByID retrieves a provider by its ID regardless of active state.
// Callers decide whether inactive profiles are visible.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers p JOIN users u ON u.id = p.user_id WHERE p.id = $1`

	p, err := scanProvider(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, apperr.NotFound(providerNotFoundMessage)
		}
		return Provider{}, fmt.Errorf("get provider by id: %w", err)
	}
	return p, nil
}

// GetByUserID retrieves the provider profile owned by an account.
func (r *Repo) GetByUserID(ctx context.Context, userID uuid.UUID) (Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers p JOIN users u ON u.id = p.user_id WHERE p.user_id = $1`

	p, err := scanProvider(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, apperr.NotFound(providerNotFoundMessage)
		}
		return Provider{}, fmt.Errorf("get provider by user id: %w", err)
	}
	return p, nil
}

// List returns the public directory page: active providers with an active
// subscription, narrowed by the optional filters.
func (r *Repo) List(ctx context.Context, filters ListFilters) ([]Provider, error) {
	var typeParam, cityParam, provinceParam, searchParam interface{}
	if filters.Type != "" {
		typeParam = filters.Type
	}
	if filters.City != "" {
		cityParam = "%" + filters.City + "%"
	}
	if filters.Province != "" {
		provinceParam = "%" + filters.Province + "%"
	}
	if filters.Search != "" {
		searchParam = "%" + filters.Search + "%"
	}
	var tagsParam interface{}
	if len(filters.Tags) > 0 {
		tagsParam = filters.Tags
	}

	query := `
		SELECT ` + providerColumns + `
		FROM providers p
		JOIN users u ON u.id = p.user_id
		WHERE p.is_active = true
			AND p.subscription_status = 'active'
			AND ($1::text IS NULL OR p.provider_type = $1)
			AND ($2::text IS NULL OR p.location_city ILIKE $2)
			AND ($3::text IS NULL OR p.location_province ILIKE $3)
			AND ($4::text[] IS NULL OR p.tags && $4)
			AND ($5::text IS NULL OR p.business_name ILIKE $5 OR p.description ILIKE $5)
		ORDER BY p.created_at DESC
		LIMIT $6 OFFSET $7`

	rows, err := r.pool.Query(ctx, query,
		typeParam, cityParam, provinceParam, tagsParam, searchParam,
		filters.Limit, filters.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return scanProviders(rows)
}

// ListCandidates returns providers eligible for relevance matching.
// Subscription status gates matcher visibility the same way it gates the
// public directory.
func (r *Repo) ListCandidates(ctx context.Context, filters CandidateFilters) ([]Provider, error) {
	var typesParam interface{}
	if len(filters.Types) > 0 {
		typesParam = filters.Types
	}
	var cityParam interface{}
	if filters.City != "" {
		cityParam = "%" + filters.City + "%"
	}
	limit := filters.Limit
	if limit < 1 {
		limit = 10
	}

	query := `
		SELECT ` + providerColumns + `
		FROM providers p
		JOIN users u ON u.id = p.user_id
		WHERE p.is_active = true
			AND p.subscription_status = 'active'
			AND ($1::text[] IS NULL OR p.provider_type = ANY ($1))
			AND ($2::text IS NULL OR p.location_city ILIKE $2)
		ORDER BY p.created_at ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, typesParam, cityParam, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidate providers: %w", err)
	}
	return scanProviders(rows)
}

// Update applies a partial update to a provider profile.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Provider, error) {
	query := `
		WITH updated AS (
			UPDATE providers SET
				business_name = COALESCE($2, business_name),
				provider_type = COALESCE($3, provider_type),
				phone = COALESCE($4, phone),
				location_city = COALESCE($5, location_city),
				location_province = COALESCE($6, location_province),
				location_lat = COALESCE($7, location_lat),
				location_lng = COALESCE($8, location_lng),
				description = COALESCE($9, description),
				tags = COALESCE($10, tags),
				logo_url = COALESCE($11, logo_url),
				sample_images = COALESCE($12, sample_images),
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + providerColumns + `
		FROM updated p
		JOIN users u ON u.id = p.user_id`

	row := r.pool.QueryRow(ctx, query,
		params.ID, params.BusinessName, params.ProviderType, params.Phone,
		params.LocationCity, params.LocationProvince, params.LocationLat, params.LocationLng,
		params.Description, params.Tags, params.LogoURL, params.SampleImages,
	)
	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, apperr.NotFound(providerNotFoundMessage)
		}
		return Provider{}, fmt.Errorf("update provider: %w", err)
	}
	return p, nil
}

// Deactivate soft-deletes a provider profile.
func (r *Repo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE providers SET is_active = false, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(providerNotFoundMessage)
	}
	return nil
}

// UpdateSubscriptionStatus sets the provider's subscription standing by
// owning user. Last write wins, so webhook replays are harmless.
func (r *Repo) UpdateSubscriptionStatus(ctx context.Context, userID uuid.UUID, status string) (Provider, error) {
	query := `
		WITH updated AS (
			UPDATE providers SET subscription_status = $2, updated_at = now()
			WHERE user_id = $1
			RETURNING *
		)
		SELECT ` + providerColumns + `
		FROM updated p
		JOIN users u ON u.id = p.user_id`

	p, err := scanProvider(r.pool.QueryRow(ctx, query, userID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, apperr.NotFound(providerNotFoundMessage)
		}
		return Provider{}, fmt.Errorf("update subscription status: %w", err)
	}
	return p, nil
}
