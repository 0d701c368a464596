package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"

	"eventcraft_backend/internal/events"
	"eventcraft_backend/internal/providers/repository"
	"eventcraft_backend/internal/providers/transport"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

type fakeIdentity struct {
	id          uuid.UUID
	accountType string
}

func (f fakeIdentity) UserID() uuid.UUID    { return f.id }
func (f fakeIdentity) Email() string        { return "test@example.com" }
func (f fakeIdentity) AccountType() string  { return f.accountType }
func (f fakeIdentity) IsProvider() bool     { return f.accountType == httpkit.AccountTypeProvider }
func (f fakeIdentity) IsAuthenticated() bool { return true }

type fakeRepo struct {
	providers []repository.Provider
	created   []repository.CreateParams
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Provider, error) {
	for _, p := range f.providers {
		if p.UserID == params.UserID {
			return repository.Provider{}, apperr.Conflict("Provider profile already exists")
		}
	}
	f.created = append(f.created, params)
	p := repository.Provider{
		ID:                 uuid.New(),
		UserID:             params.UserID,
		BusinessName:       params.BusinessName,
		ProviderType:       params.ProviderType,
		Phone:              params.Phone,
		Tags:               params.Tags,
		IsActive:           true,
		SubscriptionStatus: "inactive",
	}
	f.providers = append(f.providers, p)
	return p, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Provider, error) {
	for _, p := range f.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return repository.Provider{}, apperr.NotFound("Provider not found")
}

func (f *fakeRepo) GetByUserID(_ context.Context, userID uuid.UUID) (repository.Provider, error) {
	for _, p := range f.providers {
		if p.UserID == userID {
			return p, nil
		}
	}
	return repository.Provider{}, apperr.NotFound("Provider not found")
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListFilters) ([]repository.Provider, error) {
	return f.providers, nil
}

func (f *fakeRepo) ListCandidates(_ context.Context, _ repository.CandidateFilters) ([]repository.Provider, error) {
	return f.providers, nil
}

func (f *fakeRepo) Update(_ context.Context, params repository.UpdateParams) (repository.Provider, error) {
	for i, p := range f.providers {
		if p.ID == params.ID {
			if params.BusinessName != nil {
				f.providers[i].BusinessName = *params.BusinessName
			}
			return f.providers[i], nil
		}
	}
	return repository.Provider{}, apperr.NotFound("Provider not found")
}

func (f *fakeRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	for i, p := range f.providers {
		if p.ID == id {
			f.providers[i].IsActive = false
			return nil
		}
	}
	return apperr.NotFound("Provider not found")
}

func (f *fakeRepo) UpdateSubscriptionStatus(_ context.Context, userID uuid.UUID, status string) (repository.Provider, error) {
	for i, p := range f.providers {
		if p.UserID == userID {
			f.providers[i].SubscriptionStatus = status
			return f.providers[i], nil
		}
	}
	return repository.Provider{}, apperr.NotFound("Provider not found")
}

func newTestService(repo repository.Repository) *Service {
	log := logger.New("development")
	return New(repo, events.NewInMemoryBus(log), log, "https://app.example.com")
}

func coords(lat, lng float64) (*float64, *float64) {
	return &lat, &lng
}

func TestCreate_RejectsPlannerAccounts(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.Create(context.Background(), fakeIdentity{id: uuid.New(), accountType: "user"}, transport.CreateProviderRequest{
		BusinessName: "Studio",
		ProviderType: "photographer",
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreate_NormalizesTags(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), fakeIdentity{id: uuid.New(), accountType: "provider"}, transport.CreateProviderRequest{
		BusinessName: "Studio",
		ProviderType: "photographer",
		Tags:         []string{" Wedding ", "wedding", "PORTRAIT"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := repo.created[0].Tags
	if len(got) != 2 || got[0] != "wedding" || got[1] != "portrait" {
		t.Fatalf("expected deduplicated lowercase tags, got %v", got)
	}
}

func TestCreate_NormalizesPhone(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), fakeIdentity{id: uuid.New(), accountType: "provider"}, transport.CreateProviderRequest{
		BusinessName: "Studio",
		ProviderType: "photographer",
		Phone:        "+1 415 555 2671",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.created[0].Phone; got != "+14155552671" {
		t.Fatalf("expected E.164 phone, got %q", got)
	}
}

func TestList_RadiusExcludesDistantProviders(t *testing.T) {
	// Amsterdam-based search; Rotterdam is ~57 km out, Paris ~430 km.
	rotterdamLat, rotterdamLng := coords(51.9244, 4.4777)
	parisLat, parisLng := coords(48.8566, 2.3522)
	repo := &fakeRepo{providers: []repository.Provider{
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Rotterdam Venue", LocationLat: rotterdamLat, LocationLng: rotterdamLng, IsActive: true},
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Paris Venue", LocationLat: parisLat, LocationLng: parisLng, IsActive: true},
	}}
	svc := newTestService(repo)

	lat, lng := 52.3676, 4.9041
	resp, err := svc.List(context.Background(), transport.ListProvidersQuery{Lat: &lat, Lng: &lng, Radius: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Providers) != 1 {
		t.Fatalf("expected 1 provider within 100km, got %d", len(resp.Providers))
	}
	if resp.Providers[0].BusinessName != "Rotterdam Venue" {
		t.Fatalf("expected Rotterdam Venue, got %s", resp.Providers[0].BusinessName)
	}
	if resp.Providers[0].Distance == nil || *resp.Providers[0].Distance < 50 || *resp.Providers[0].Distance > 65 {
		t.Fatalf("expected distance around 57km, got %v", resp.Providers[0].Distance)
	}
	if resp.Total != 1 {
		t.Fatalf("expected total 1, got %d", resp.Total)
	}
}

func TestList_ProvidersWithoutCoordinatesSortLast(t *testing.T) {
	rotterdamLat, rotterdamLng := coords(51.9244, 4.4777)
	utrechtLat, utrechtLng := coords(52.0907, 5.1214)
	repo := &fakeRepo{providers: []repository.Provider{
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "No Location", IsActive: true},
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Rotterdam", LocationLat: rotterdamLat, LocationLng: rotterdamLng, IsActive: true},
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Utrecht", LocationLat: utrechtLat, LocationLng: utrechtLng, IsActive: true},
	}}
	svc := newTestService(repo)

	lat, lng := 52.3676, 4.9041
	resp, err := svc.List(context.Background(), transport.ListProvidersQuery{Lat: &lat, Lng: &lng, Radius: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Providers) != 3 {
		t.Fatalf("expected all 3 providers within 100km, got %d", len(resp.Providers))
	}
	if resp.Providers[0].BusinessName != "Utrecht" {
		t.Fatalf("expected nearest first, got %s", resp.Providers[0].BusinessName)
	}
	if resp.Providers[2].BusinessName != "No Location" {
		t.Fatalf("expected provider without coordinates last, got %s", resp.Providers[2].BusinessName)
	}
	if resp.Providers[2].Distance != nil {
		t.Fatalf("expected nil distance for provider without coordinates, got %v", *resp.Providers[2].Distance)
	}
}

func TestList_DefaultRadiusAppliedWhenUnspecified(t *testing.T) {
	// Amsterdam-based search without a radius; Utrecht is ~38 km out,
	// Paris ~430 km and outside the 50 km default.
	utrechtLat, utrechtLng := coords(52.0907, 5.1214)
	parisLat, parisLng := coords(48.8566, 2.3522)
	repo := &fakeRepo{providers: []repository.Provider{
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Paris Venue", LocationLat: parisLat, LocationLng: parisLng, IsActive: true},
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Utrecht Venue", LocationLat: utrechtLat, LocationLng: utrechtLng, IsActive: true},
	}}
	svc := newTestService(repo)

	lat, lng := 52.3676, 4.9041
	resp, err := svc.List(context.Background(), transport.ListProvidersQuery{Lat: &lat, Lng: &lng})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Providers) != 1 {
		t.Fatalf("expected 1 provider within the default radius, got %d", len(resp.Providers))
	}
	if resp.Providers[0].BusinessName != "Utrecht Venue" {
		t.Fatalf("expected Utrecht Venue, got %s", resp.Providers[0].BusinessName)
	}
	if resp.Providers[0].Distance == nil || *resp.Providers[0].Distance > 50 {
		t.Fatalf("expected distance within 50km, got %v", resp.Providers[0].Distance)
	}
}

func TestList_UnusableCoordinatesSortLast(t *testing.T) {
	nanLat, nanLng := coords(math.NaN(), math.NaN())
	utrechtLat, utrechtLng := coords(52.0907, 5.1214)
	repo := &fakeRepo{providers: []repository.Provider{
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Bad Coords", LocationLat: nanLat, LocationLng: nanLng, IsActive: true},
		{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Utrecht", LocationLat: utrechtLat, LocationLng: utrechtLng, IsActive: true},
	}}
	svc := newTestService(repo)

	lat, lng := 52.3676, 4.9041
	resp, err := svc.List(context.Background(), transport.ListProvidersQuery{Lat: &lat, Lng: &lng})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Providers) != 2 {
		t.Fatalf("expected both providers, got %d", len(resp.Providers))
	}
	if resp.Providers[0].BusinessName != "Utrecht" {
		t.Fatalf("expected provider with a known distance first, got %s", resp.Providers[0].BusinessName)
	}
	if resp.Providers[1].BusinessName != "Bad Coords" {
		t.Fatalf("expected provider with unusable coordinates last, got %s", resp.Providers[1].BusinessName)
	}
	if resp.Providers[1].Distance != nil {
		t.Fatalf("expected nil distance for unusable coordinates, got %v", *resp.Providers[1].Distance)
	}
}

func TestUpdate_RejectsNonOwner(t *testing.T) {
	owner := uuid.New()
	providerID := uuid.New()
	repo := &fakeRepo{providers: []repository.Provider{
		{ID: providerID, UserID: owner, BusinessName: "Studio", IsActive: true},
	}}
	svc := newTestService(repo)

	name := "Hijacked"
	_, err := svc.Update(context.Background(), fakeIdentity{id: uuid.New(), accountType: "provider"}, providerID, transport.UpdateProviderRequest{BusinessName: &name})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGet_HidesInactiveFromOthers(t *testing.T) {
	owner := uuid.New()
	providerID := uuid.New()
	repo := &fakeRepo{providers: []repository.Provider{
		{ID: providerID, UserID: owner, BusinessName: "Studio", IsActive: false},
	}}
	svc := newTestService(repo)

	_, err := svc.Get(context.Background(), fakeIdentity{id: uuid.New(), accountType: "user"}, providerID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for stranger, got %v", err)
	}

	resp, err := svc.Get(context.Background(), fakeIdentity{id: owner, accountType: "provider"}, providerID)
	if err != nil {
		t.Fatalf("owner should see own inactive profile: %v", err)
	}
	if resp.IsActive {
		t.Fatal("expected inactive profile")
	}
}
