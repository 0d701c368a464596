// Package service implements provider profile business logic.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"eventcraft_backend/internal/events"
	"eventcraft_backend/internal/providers/repository"
	"eventcraft_backend/internal/providers/transport"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/geo"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
	"eventcraft_backend/platform/phone"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// Radius applied when a geo search does not name one.
	defaultRadiusKm = 50
)

// Service implements provider profile use cases.
type Service struct {
	repo       repository.Repository
	bus        events.Bus
	log        *logger.Logger
	appBaseURL string
}

// New creates a new provider service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger, appBaseURL string) *Service {
	return &Service{
		repo:       repo,
		bus:        bus,
		log:        log,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

// Create onboards a provider profile for a provider account.
// One profile per account.
func (s *Service) Create(ctx context.Context, identity httpkit.Identity, req transport.CreateProviderRequest) (transport.ProviderResponse, error) {
	if !identity.IsProvider() {
		return transport.ProviderResponse{}, apperr.Forbidden("Only provider accounts can create a provider profile")
	}

	normalizedPhone := phone.NormalizeE164(req.Phone)

	provider, err := s.repo.Create(ctx, repository.CreateParams{
		UserID:           identity.UserID(),
		BusinessName:     strings.TrimSpace(req.BusinessName),
		ProviderType:     req.ProviderType,
		Phone:            normalizedPhone,
		LocationCity:     strings.TrimSpace(req.LocationCity),
		LocationProvince: strings.TrimSpace(req.LocationProvince),
		LocationLat:      req.LocationLat,
		LocationLng:      req.LocationLng,
		Description:      req.Description,
		Tags:             normalizeTags(req.Tags),
		LogoURL:          req.LogoURL,
		SampleImages:     req.SampleImages,
	})
	if err != nil {
		return transport.ProviderResponse{}, err
	}

	s.log.Info("provider profile created",
		"provider_id", provider.ID,
		"user_id", identity.UserID(),
		"provider_type", provider.ProviderType,
	)
	s.bus.Publish(ctx, events.ProviderCreated{
		BaseEvent:    events.NewBaseEvent(),
		ProviderID:   provider.ID,
		UserID:       provider.UserID,
		BusinessName: provider.BusinessName,
		ProviderType: provider.ProviderType,
	})

	return toProviderResponse(provider, nil), nil
}

// Get returns a provider profile by ID. Inactive profiles are hidden from
// everyone except their owner.
func (s *Service) Get(ctx context.Context, identity httpkit.Identity, id uuid.UUID) (transport.ProviderResponse, error) {
	provider, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ProviderResponse{}, err
	}

	if !provider.IsActive {
		isOwner := identity != nil && identity.IsAuthenticated() && identity.UserID() == provider.UserID
		if !isOwner {
			return transport.ProviderResponse{}, apperr.NotFound("Provider not found")
		}
	}

	return toProviderResponse(provider, nil), nil
}

// GetOwn returns the caller's own provider profile.
func (s *Service) GetOwn(ctx context.Context, identity httpkit.Identity) (transport.ProviderResponse, error) {
	provider, err := s.repo.GetByUserID(ctx, identity.UserID())
	if err != nil {
		return transport.ProviderResponse{}, err
	}
	return toProviderResponse(provider, nil), nil
}

// List returns the public provider directory. When a search point is given
// the results are narrowed to a radius (50 km unless the query names one).
// Providers without coordinates are never excluded by the radius filter;
// they sort after providers with a known distance.
func (s *Service) List(ctx context.Context, query transport.ListProvidersQuery) (transport.ProviderListResponse, error) {
	limit := query.Limit
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	providers, err := s.repo.List(ctx, repository.ListFilters{
		Type:     query.Type,
		City:     strings.TrimSpace(query.City),
		Province: strings.TrimSpace(query.Province),
		Tags:     normalizeTags(query.Tags),
		Search:   strings.TrimSpace(query.Search),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return transport.ProviderListResponse{}, err
	}

	results := make([]transport.ProviderResponse, 0, len(providers))
	if query.Lat != nil && query.Lng != nil {
		radius := query.Radius
		if radius <= 0 {
			radius = defaultRadiusKm
		}
		results = filterByDistance(providers, *query.Lat, *query.Lng, radius)
	} else {
		for _, p := range providers {
			results = append(results, toProviderResponse(p, nil))
		}
	}

	return transport.ProviderListResponse{
		Providers: results,
		Total:     len(results),
		Offset:    offset,
		Limit:     limit,
	}, nil
}

// filterByDistance annotates providers with their distance from the search
// point and drops those beyond the radius. Providers without coordinates, or
// whose coordinates do not yield a usable distance, get no distance and keep
// their place at the end of the list.
func filterByDistance(providers []repository.Provider, lat, lng, radiusKm float64) []transport.ProviderResponse {
	results := make([]transport.ProviderResponse, 0, len(providers))
	for _, p := range providers {
		if p.LocationLat == nil || p.LocationLng == nil {
			results = append(results, toProviderResponse(p, nil))
			continue
		}
		d := geo.DistanceKm(lat, lng, *p.LocationLat, *p.LocationLng)
		if math.IsNaN(d) {
			results = append(results, toProviderResponse(p, nil))
			continue
		}
		if radiusKm > 0 && d > radiusKm {
			continue
		}
		results = append(results, toProviderResponse(p, &d))
	}

	sort.SliceStable(results, func(i, j int) bool {
		di, dj := results[i].Distance, results[j].Distance
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})
	return results
}

// Update applies a partial update to the caller's provider profile.
func (s *Service) Update(ctx context.Context, identity httpkit.Identity, id uuid.UUID, req transport.UpdateProviderRequest) (transport.ProviderResponse, error) {
	provider, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ProviderResponse{}, err
	}
	if provider.UserID != identity.UserID() {
		return transport.ProviderResponse{}, apperr.Forbidden("You can only update your own provider profile")
	}

	var normalizedPhone *string
	if req.Phone != nil {
		value := phone.NormalizeE164(*req.Phone)
		normalizedPhone = &value
	}

	updated, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:               id,
		BusinessName:     req.BusinessName,
		ProviderType:     req.ProviderType,
		Phone:            normalizedPhone,
		LocationCity:     req.LocationCity,
		LocationProvince: req.LocationProvince,
		LocationLat:      req.LocationLat,
		LocationLng:      req.LocationLng,
		Description:      req.Description,
		Tags:             normalizeTags(req.Tags),
		LogoURL:          req.LogoURL,
		SampleImages:     req.SampleImages,
	})
	if err != nil {
		return transport.ProviderResponse{}, err
	}

	s.log.Info("provider profile updated", "provider_id", id, "user_id", identity.UserID())
	return toProviderResponse(updated, nil), nil
}

// Delete deactivates the caller's provider profile.
func (s *Service) Delete(ctx context.Context, identity httpkit.Identity, id uuid.UUID) error {
	provider, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if provider.UserID != identity.UserID() {
		return apperr.Forbidden("You can only delete your own provider profile")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.log.Info("provider profile deactivated", "provider_id", id, "user_id", identity.UserID())
	s.bus.Publish(ctx, events.ProviderDeactivated{
		BaseEvent:  events.NewBaseEvent(),
		ProviderID: id,
		UserID:     provider.UserID,
	})
	return nil
}

// QRCode renders a PNG QR code linking to the provider's public profile page.
func (s *Service) QRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	provider, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !provider.IsActive {
		return nil, apperr.NotFound("Provider not found")
	}

	url := fmt.Sprintf("%s/providers/%s", s.appBaseURL, provider.ID)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to generate QR code", err)
	}
	return png, nil
}

// GetProfileByUserID returns the caller's provider profile for embedding in
// the account profile response. Implements the auth module's profile reader
// port.
func (s *Service) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (interface{}, error) {
	provider, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toProviderResponse(provider, nil)
	return resp, nil
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toProviderResponse(p repository.Provider, distance *float64) transport.ProviderResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	samples := p.SampleImages
	if samples == nil {
		samples = []string{}
	}
	return transport.ProviderResponse{
		ID:                 p.ID,
		BusinessName:       p.BusinessName,
		ProviderType:       p.ProviderType,
		Phone:              p.Phone,
		LocationCity:       p.LocationCity,
		LocationProvince:   p.LocationProvince,
		LocationLat:        p.LocationLat,
		LocationLng:        p.LocationLng,
		Description:        p.Description,
		Tags:               tags,
		LogoURL:            p.LogoURL,
		SampleImages:       samples,
		IsActive:           p.IsActive,
		SubscriptionStatus: p.SubscriptionStatus,
		Distance:           distance,
		Owner: transport.OwnerResponse{
			ID:    p.UserID,
			Name:  p.OwnerName,
			Email: p.OwnerEmail,
		},
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
