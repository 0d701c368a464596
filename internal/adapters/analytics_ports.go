package adapters

import (
	"context"

	"github.com/google/uuid"

	analyticssvc "eventcraft_backend/internal/analytics/service"
	providerrepo "eventcraft_backend/internal/providers/repository"
)

// ProviderDirectoryAdapter exposes provider existence checks to analytics.
type ProviderDirectoryAdapter struct {
	providers providerrepo.Repository
}

// NewProviderDirectoryAdapter creates the directory adapter.
func NewProviderDirectoryAdapter(providers providerrepo.Repository) *ProviderDirectoryAdapter {
	return &ProviderDirectoryAdapter{providers: providers}
}

// ProviderExists returns a not-found error when the provider is missing.
func (a *ProviderDirectoryAdapter) ProviderExists(ctx context.Context, providerID uuid.UUID) error {
	_, err := a.providers.GetByID(ctx, providerID)
	return err
}

// ProviderIDForUser resolves the provider profile owned by a user.
func (a *ProviderDirectoryAdapter) ProviderIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := a.providers.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

var _ analyticssvc.ProviderDirectory = (*ProviderDirectoryAdapter)(nil)
