// Package adapters wires bounded contexts together without letting their
// service layers import each other.
package adapters

import (
	"context"

	"eventcraft_backend/internal/planner/matching"
	plannersvc "eventcraft_backend/internal/planner/service"
	providerrepo "eventcraft_backend/internal/providers/repository"
)

// ProviderCatalogAdapter exposes the provider directory to the planner's
// relevance matcher.
type ProviderCatalogAdapter struct {
	providers providerrepo.Repository
}

// NewProviderCatalogAdapter creates the catalog adapter.
func NewProviderCatalogAdapter(providers providerrepo.Repository) *ProviderCatalogAdapter {
	return &ProviderCatalogAdapter{providers: providers}
}

// Candidates returns matchable providers filtered by type and city.
func (a *ProviderCatalogAdapter) Candidates(ctx context.Context, types []string, city string, limit int) ([]matching.Provider, error) {
	list, err := a.providers.ListCandidates(ctx, providerrepo.CandidateFilters{
		Types: types,
		City:  city,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]matching.Provider, len(list))
	for i, p := range list {
		candidates[i] = matching.Provider{
			ID:               p.ID,
			BusinessName:     p.BusinessName,
			ProviderType:     p.ProviderType,
			LocationCity:     p.LocationCity,
			LocationProvince: p.LocationProvince,
			Description:      p.Description,
			Tags:             p.Tags,
			LogoURL:          p.LogoURL,
			OwnerName:        p.OwnerName,
			OwnerEmail:       p.OwnerEmail,
		}
	}
	return candidates, nil
}

var _ plannersvc.ProviderCatalog = (*ProviderCatalogAdapter)(nil)
