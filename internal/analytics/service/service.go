// Package service implements provider view tracking and the analytics
// dashboard.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"eventcraft_backend/internal/analytics/repository"
	"eventcraft_backend/internal/analytics/transport"
	"eventcraft_backend/internal/events"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

// Estimated revenue per booked lead, in the platform currency.
const revenuePerBooking = 3000

// Placeholder performance indicators until reviews and messaging ship.
const (
	placeholderResponseTime = 2.5
	placeholderRating       = 4.8
)

const recentActivityLimit = 10

// ProviderDirectory resolves providers for analytics operations.
type ProviderDirectory interface {
	// ProviderExists returns a not-found error when the provider is missing.
	ProviderExists(ctx context.Context, providerID uuid.UUID) error
	// ProviderIDForUser resolves the provider profile owned by a user.
	ProviderIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// Service implements analytics use cases.
type Service struct {
	repo      repository.Repository
	providers ProviderDirectory
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new analytics service.
func New(repo repository.Repository, providers ProviderDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, providers: providers, bus: bus, log: log}
}

// RecordView logs one profile view. The insert is fire-and-forget: a storage
// failure is logged but never surfaces to the viewer.
func (s *Service) RecordView(ctx context.Context, identity httpkit.Identity, providerID uuid.UUID, ip, userAgent string) error {
	if err := s.providers.ProviderExists(ctx, providerID); err != nil {
		return err
	}

	var viewerID *uuid.UUID
	if identity != nil && identity.IsAuthenticated() {
		id := identity.UserID()
		viewerID = &id
	}

	err := s.repo.RecordView(ctx, repository.ViewParams{
		ProviderID:   providerID,
		ViewerUserID: viewerID,
		IP:           ip,
		UserAgent:    userAgent,
	})
	if err != nil {
		s.log.Warn("failed to record provider view", "provider_id", providerID, "error", err)
		return nil
	}

	s.bus.Publish(ctx, events.ProviderViewed{
		BaseEvent:    events.NewBaseEvent(),
		ProviderID:   providerID,
		ViewerUserID: viewerID,
	})
	return nil
}

// Dashboard assembles the analytics dashboard for the caller's provider
// profile.
func (s *Service) Dashboard(ctx context.Context, identity httpkit.Identity, query transport.DashboardQuery) (transport.DashboardResponse, error) {
	if !identity.IsProvider() {
		return transport.DashboardResponse{}, apperr.Forbidden("Only providers can view analytics")
	}

	providerID, err := s.providers.ProviderIDForUser(ctx, identity.UserID())
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return transport.DashboardResponse{}, apperr.NotFound("Provider profile not found")
		}
		return transport.DashboardResponse{}, err
	}

	timeRange := query.TimeRange
	if timeRange == "" {
		timeRange = "30d"
	}
	since := time.Now().Add(-rangeDuration(timeRange))

	views, err := s.repo.ViewStats(ctx, providerID, since)
	if err != nil {
		return transport.DashboardResponse{}, err
	}
	leads, err := s.repo.LeadStats(ctx, providerID, since)
	if err != nil {
		return transport.DashboardResponse{}, err
	}
	activity, err := s.recentActivity(ctx, providerID)
	if err != nil {
		return transport.DashboardResponse{}, err
	}

	byStatus := leads.ByStatus
	if byStatus == nil {
		byStatus = map[string]int{}
	}

	return transport.DashboardResponse{
		TimeRange: timeRange,
		ProfileViews: transport.ProfileViewStats{
			Total:     views.TotalInRange,
			ThisMonth: views.ThisMonth,
			LastMonth: views.LastMonth,
		},
		Leads: transport.LeadStats{
			Total:          leads.TotalInRange,
			ThisMonth:      leads.ThisMonth,
			ConversionRate: percentage(leads.BookedInRange, leads.TotalInRange),
			ByStatus:       byStatus,
		},
		Revenue: transport.RevenueStats{
			EstimatedTotal: leads.BookedTotal * revenuePerBooking,
			ThisMonth:      leads.BookedThisMonth * revenuePerBooking,
		},
		Performance: transport.PerformanceStats{
			ResponseTime:   placeholderResponseTime,
			Rating:         placeholderRating,
			CompletionRate: percentage(leads.BookedTotal, leads.Total),
		},
		RecentActivity: activity,
	}, nil
}

// recentActivity merges the latest views and leads into one feed, newest
// first, capped at recentActivityLimit.
func (s *Service) recentActivity(ctx context.Context, providerID uuid.UUID) ([]transport.ActivityItem, error) {
	views, err := s.repo.RecentViews(ctx, providerID, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	leads, err := s.repo.RecentLeads(ctx, providerID, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	type entry struct {
		item transport.ActivityItem
		at   time.Time
	}

	merged := make([]entry, 0, len(views)+len(leads))
	for _, v := range views {
		viewer := "a visitor"
		if v.ViewerName != nil && *v.ViewerName != "" {
			viewer = *v.ViewerName
		}
		merged = append(merged, entry{
			item: transport.ActivityItem{
				Type:        "view",
				Description: fmt.Sprintf("Profile viewed by %s", viewer),
				CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
			},
			at: v.CreatedAt,
		})
	}
	for _, l := range leads {
		merged = append(merged, entry{
			item: transport.ActivityItem{
				Type:        "lead",
				Description: fmt.Sprintf("Lead from %s for %s", l.RequesterName, l.EventType),
				Status:      l.Status,
				CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
			},
			at: l.CreatedAt,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].at.After(merged[j].at)
	})
	if len(merged) > recentActivityLimit {
		merged = merged[:recentActivityLimit]
	}

	items := make([]transport.ActivityItem, len(merged))
	for i, e := range merged {
		items[i] = e.item
	}
	return items, nil
}

func rangeDuration(timeRange string) time.Duration {
	switch timeRange {
	case "7d":
		return 7 * 24 * time.Hour
	case "90d":
		return 90 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// percentage returns part/whole as a percentage rounded to one decimal.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
