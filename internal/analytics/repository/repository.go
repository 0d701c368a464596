// Package repository provides postgres persistence for analytics.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ViewParams describes one profile view to record.
type ViewParams struct {
	ProviderID   uuid.UUID
	ViewerUserID *uuid.UUID
	IP           string
	UserAgent    string
}

// ViewStats aggregates profile view counts for one provider.
type ViewStats struct {
	TotalInRange int
	ThisMonth    int
	LastMonth    int
}

// LeadStats aggregates lead counts for one provider.
type LeadStats struct {
	TotalInRange    int
	ThisMonth       int
	BookedTotal     int
	BookedThisMonth int
	BookedInRange   int
	Total           int
	ByStatus        map[string]int
}

// ViewActivity is one recent profile view.
type ViewActivity struct {
	ViewerUserID *uuid.UUID
	ViewerName   *string
	CreatedAt    time.Time
}

// LeadActivity is one recent lead.
type LeadActivity struct {
	ID            uuid.UUID
	Status        string
	EventType     string
	RequesterName string
	CreatedAt     time.Time
}

// Repository defines analytics persistence operations.
type Repository interface {
	RecordView(ctx context.Context, params ViewParams) error
	ViewStats(ctx context.Context, providerID uuid.UUID, since time.Time) (ViewStats, error)
	LeadStats(ctx context.Context, providerID uuid.UUID, since time.Time) (LeadStats, error)
	RecentViews(ctx context.Context, providerID uuid.UUID, limit int) ([]ViewActivity, error)
	RecentLeads(ctx context.Context, providerID uuid.UUID, limit int) ([]LeadActivity, error)
}

// Repo implements Repository backed by pgx.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new analytics repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// RecordView inserts one profile view row.
func (r *Repo) RecordView(ctx context.Context, params ViewParams) error {
	query := `
		INSERT INTO provider_views (provider_id, viewer_user_id, ip, user_agent)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, params.ProviderID, params.ViewerUserID, params.IP, params.UserAgent); err != nil {
		return fmt.Errorf("record provider view: %w", err)
	}
	return nil
}

// ViewStats counts views within the reporting window plus calendar-month
// buckets for trend display.
func (r *Repo) ViewStats(ctx context.Context, providerID uuid.UUID, since time.Time) (ViewStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now())),
			COUNT(*) FILTER (
				WHERE created_at >= date_trunc('month', now() - interval '1 month')
				AND created_at < date_trunc('month', now())
			)
		FROM provider_views
		WHERE provider_id = $1`

	var stats ViewStats
	err := r.pool.QueryRow(ctx, query, providerID, since).
		Scan(&stats.TotalInRange, &stats.ThisMonth, &stats.LastMonth)
	if err != nil {
		return ViewStats{}, fmt.Errorf("aggregate provider views: %w", err)
	}
	return stats, nil
}

// LeadStats aggregates lead counts per status for one provider.
func (r *Repo) LeadStats(ctx context.Context, providerID uuid.UUID, since time.Time) (LeadStats, error) {
	query := `
		SELECT
			status,
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now()))
		FROM leads
		WHERE provider_id = $1
		GROUP BY status`

	rows, err := r.pool.Query(ctx, query, providerID, since)
	if err != nil {
		return LeadStats{}, fmt.Errorf("aggregate leads: %w", err)
	}
	defer rows.Close()

	stats := LeadStats{ByStatus: make(map[string]int)}
	for rows.Next() {
		var status string
		var total, inRange, thisMonth int
		if err := rows.Scan(&status, &total, &inRange, &thisMonth); err != nil {
			return LeadStats{}, fmt.Errorf("scan lead stats: %w", err)
		}
		stats.ByStatus[status] = total
		stats.Total += total
		stats.TotalInRange += inRange
		stats.ThisMonth += thisMonth
		if status == "booked" {
			stats.BookedTotal = total
			stats.BookedInRange = inRange
			stats.BookedThisMonth = thisMonth
		}
	}
	if err := rows.Err(); err != nil {
		return LeadStats{}, fmt.Errorf("iterate lead stats: %w", err)
	}
	return stats, nil
}

// RecentViews returns the latest profile views, newest first.
func (r *Repo) RecentViews(ctx context.Context, providerID uuid.UUID, limit int) ([]ViewActivity, error) {
	query := `
		SELECT v.viewer_user_id, u.name, v.created_at
		FROM provider_views v
		LEFT JOIN users u ON u.id = v.viewer_user_id
		WHERE v.provider_id = $1
		ORDER BY v.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, providerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent views: %w", err)
	}
	defer rows.Close()

	var views []ViewActivity
	for rows.Next() {
		var v ViewActivity
		if err := rows.Scan(&v.ViewerUserID, &v.ViewerName, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent view: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent views: %w", err)
	}
	return views, nil
}

// RecentLeads returns the latest leads, newest first.
func (r *Repo) RecentLeads(ctx context.Context, providerID uuid.UUID, limit int) ([]LeadActivity, error) {
	query := `
		SELECT l.id, l.status, e.event_type, u.name, l.created_at
		FROM leads l
		JOIN events e ON e.id = l.event_id
		JOIN users u ON u.id = l.user_id
		WHERE l.provider_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, providerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent leads: %w", err)
	}
	defer rows.Close()

	var leads []LeadActivity
	for rows.Next() {
		var l LeadActivity
		if err := rows.Scan(&l.ID, &l.Status, &l.EventType, &l.RequesterName, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent leads: %w", err)
	}
	return leads, nil
}

var _ Repository = (*Repo)(nil)
