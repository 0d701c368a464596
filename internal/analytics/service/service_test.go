package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"eventcraft_backend/internal/analytics/repository"
	"eventcraft_backend/internal/analytics/transport"
	"eventcraft_backend/internal/events"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

type fakeIdentity struct {
	id            uuid.UUID
	accountType   string
	authenticated bool
}

func (f fakeIdentity) UserID() uuid.UUID     { return f.id }
func (f fakeIdentity) Email() string         { return "test@example.com" }
func (f fakeIdentity) AccountType() string   { return f.accountType }
func (f fakeIdentity) IsProvider() bool      { return f.accountType == httpkit.AccountTypeProvider }
func (f fakeIdentity) IsAuthenticated() bool { return f.authenticated }

type fakeDirectory struct {
	providerID uuid.UUID
	ownerID    uuid.UUID
}

func (f fakeDirectory) ProviderExists(_ context.Context, id uuid.UUID) error {
	if id == f.providerID {
		return nil
	}
	return apperr.NotFound("Provider not found")
}

func (f fakeDirectory) ProviderIDForUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	if userID == f.ownerID {
		return f.providerID, nil
	}
	return uuid.Nil, apperr.NotFound("Provider profile not found")
}

type fakeRepo struct {
	views       []repository.ViewParams
	viewStats   repository.ViewStats
	leadStats   repository.LeadStats
	recentViews []repository.ViewActivity
	recentLeads []repository.LeadActivity
	recordErr   error
}

func (f *fakeRepo) RecordView(_ context.Context, params repository.ViewParams) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.views = append(f.views, params)
	return nil
}

func (f *fakeRepo) ViewStats(context.Context, uuid.UUID, time.Time) (repository.ViewStats, error) {
	return f.viewStats, nil
}

func (f *fakeRepo) LeadStats(context.Context, uuid.UUID, time.Time) (repository.LeadStats, error) {
	return f.leadStats, nil
}

func (f *fakeRepo) RecentViews(context.Context, uuid.UUID, int) ([]repository.ViewActivity, error) {
	return f.recentViews, nil
}

func (f *fakeRepo) RecentLeads(context.Context, uuid.UUID, int) ([]repository.LeadActivity, error) {
	return f.recentLeads, nil
}

type fixture struct {
	svc        *Service
	repo       *fakeRepo
	providerID uuid.UUID
	ownerID    uuid.UUID
}

func newFixture() fixture {
	log := logger.New("development")
	repo := &fakeRepo{}
	providerID := uuid.New()
	ownerID := uuid.New()
	dir := fakeDirectory{providerID: providerID, ownerID: ownerID}
	svc := New(repo, dir, events.NewInMemoryBus(log), log)
	return fixture{svc: svc, repo: repo, providerID: providerID, ownerID: ownerID}
}

func (fx fixture) owner() fakeIdentity {
	return fakeIdentity{id: fx.ownerID, accountType: httpkit.AccountTypeProvider, authenticated: true}
}

func TestRecordView_StoresViewerWhenAuthenticated(t *testing.T) {
	fx := newFixture()
	viewerID := uuid.New()
	viewer := fakeIdentity{id: viewerID, accountType: httpkit.AccountTypeUser, authenticated: true}

	if err := fx.svc.RecordView(context.Background(), viewer, fx.providerID, "203.0.113.9", "test-agent"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fx.repo.views) != 1 {
		t.Fatalf("expected 1 recorded view, got %d", len(fx.repo.views))
	}
	view := fx.repo.views[0]
	if view.ViewerUserID == nil || *view.ViewerUserID != viewerID {
		t.Error("expected viewer user id on authenticated view")
	}
	if view.IP != "203.0.113.9" || view.UserAgent != "test-agent" {
		t.Error("expected client ip and user agent to be recorded")
	}
}

func TestRecordView_AnonymousViewerHasNoUserID(t *testing.T) {
	fx := newFixture()
	anon := fakeIdentity{authenticated: false}

	if err := fx.svc.RecordView(context.Background(), anon, fx.providerID, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fx.repo.views[0].ViewerUserID != nil {
		t.Error("anonymous view must not carry a viewer user id")
	}
}

func TestRecordView_UnknownProviderIsNotFound(t *testing.T) {
	fx := newFixture()

	err := fx.svc.RecordView(context.Background(), fakeIdentity{}, uuid.New(), "", "")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordView_InsertFailureIsSwallowed(t *testing.T) {
	fx := newFixture()
	fx.repo.recordErr = context.DeadlineExceeded

	if err := fx.svc.RecordView(context.Background(), fakeIdentity{}, fx.providerID, "", ""); err != nil {
		t.Fatalf("insert failures must not surface to the viewer, got %v", err)
	}
}

func TestDashboard_RejectsPlannerAccounts(t *testing.T) {
	fx := newFixture()
	planner := fakeIdentity{id: uuid.New(), accountType: httpkit.AccountTypeUser, authenticated: true}

	_, err := fx.svc.Dashboard(context.Background(), planner, transport.DashboardQuery{})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDashboard_ProviderWithoutProfileIsNotFound(t *testing.T) {
	fx := newFixture()
	stranger := fakeIdentity{id: uuid.New(), accountType: httpkit.AccountTypeProvider, authenticated: true}

	_, err := fx.svc.Dashboard(context.Background(), stranger, transport.DashboardQuery{})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDashboard_ComputesRatesAndRevenue(t *testing.T) {
	fx := newFixture()
	fx.repo.viewStats = repository.ViewStats{TotalInRange: 120, ThisMonth: 40, LastMonth: 55}
	fx.repo.leadStats = repository.LeadStats{
		TotalInRange:    8,
		ThisMonth:       5,
		BookedTotal:     3,
		BookedThisMonth: 1,
		BookedInRange:   2,
		Total:           12,
		ByStatus:        map[string]int{"new": 6, "contacted": 3, "booked": 3},
	}

	resp, err := fx.svc.Dashboard(context.Background(), fx.owner(), transport.DashboardQuery{TimeRange: "7d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.TimeRange != "7d" {
		t.Errorf("time range = %q, want 7d", resp.TimeRange)
	}
	if resp.ProfileViews.Total != 120 || resp.ProfileViews.LastMonth != 55 {
		t.Errorf("unexpected view stats: %+v", resp.ProfileViews)
	}
	if resp.Leads.ConversionRate != 25.0 {
		t.Errorf("conversion rate = %v, want 25.0", resp.Leads.ConversionRate)
	}
	if resp.Revenue.EstimatedTotal != 9000 || resp.Revenue.ThisMonth != 3000 {
		t.Errorf("unexpected revenue: %+v", resp.Revenue)
	}
	if resp.Performance.CompletionRate != 25.0 {
		t.Errorf("completion rate = %v, want 25.0", resp.Performance.CompletionRate)
	}
	if resp.Performance.ResponseTime != 2.5 || resp.Performance.Rating != 4.8 {
		t.Errorf("unexpected performance placeholders: %+v", resp.Performance)
	}
}

func TestDashboard_DefaultsTo30Days(t *testing.T) {
	fx := newFixture()

	resp, err := fx.svc.Dashboard(context.Background(), fx.owner(), transport.DashboardQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TimeRange != "30d" {
		t.Errorf("time range = %q, want 30d", resp.TimeRange)
	}
	if resp.Leads.ByStatus == nil {
		t.Error("byStatus must not be nil")
	}
}

func TestDashboard_MergesRecentActivityNewestFirst(t *testing.T) {
	fx := newFixture()
	now := time.Now()
	name := "Dana"
	fx.repo.recentViews = []repository.ViewActivity{
		{ViewerName: &name, CreatedAt: now.Add(-2 * time.Minute)},
		{CreatedAt: now.Add(-10 * time.Minute)},
	}
	fx.repo.recentLeads = []repository.LeadActivity{
		{ID: uuid.New(), Status: "new", EventType: "wedding", RequesterName: "Ray", CreatedAt: now.Add(-5 * time.Minute)},
	}

	resp, err := fx.svc.Dashboard(context.Background(), fx.owner(), transport.DashboardQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.RecentActivity) != 3 {
		t.Fatalf("expected 3 activity items, got %d", len(resp.RecentActivity))
	}
	wantTypes := []string{"view", "lead", "view"}
	for i, want := range wantTypes {
		if resp.RecentActivity[i].Type != want {
			t.Errorf("activity[%d].Type = %q, want %q", i, resp.RecentActivity[i].Type, want)
		}
	}
	if resp.RecentActivity[0].Description != "Profile viewed by Dana" {
		t.Errorf("unexpected description %q", resp.RecentActivity[0].Description)
	}
	if resp.RecentActivity[2].Description != "Profile viewed by a visitor" {
		t.Errorf("unexpected description %q", resp.RecentActivity[2].Description)
	}
}
