package adapters

import (
	"context"

	"github.com/google/uuid"

	leadsvc "eventcraft_backend/internal/leads/service"
	plannerrepo "eventcraft_backend/internal/planner/repository"
	providerrepo "eventcraft_backend/internal/providers/repository"
)

// PlannerEventCheckerAdapter lets the leads module verify plan ownership.
type PlannerEventCheckerAdapter struct {
	planner plannerrepo.Repository
}

// NewPlannerEventCheckerAdapter creates the event checker adapter.
func NewPlannerEventCheckerAdapter(planner plannerrepo.Repository) *PlannerEventCheckerAdapter {
	return &PlannerEventCheckerAdapter{planner: planner}
}

// EventOwnedBy reports whether the event exists and belongs to the user.
func (a *PlannerEventCheckerAdapter) EventOwnedBy(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := a.planner.GetEventForUser(ctx, eventID, userID)
	return err
}

// StepInEvent reports whether the step belongs to the event.
func (a *PlannerEventCheckerAdapter) StepInEvent(ctx context.Context, stepID, eventID uuid.UUID) error {
	_, err := a.planner.GetTaskInEvent(ctx, stepID, eventID)
	return err
}

var _ leadsvc.EventChecker = (*PlannerEventCheckerAdapter)(nil)

// ProviderReaderAdapter exposes provider state to the leads module.
type ProviderReaderAdapter struct {
	providers providerrepo.Repository
}

// NewProviderReaderAdapter creates the provider reader adapter.
func NewProviderReaderAdapter(providers providerrepo.Repository) *ProviderReaderAdapter {
	return &ProviderReaderAdapter{providers: providers}
}

// GetProvider returns the provider state lead preconditions depend on.
func (a *ProviderReaderAdapter) GetProvider(ctx context.Context, id uuid.UUID) (leadsvc.ProviderInfo, error) {
	p, err := a.providers.GetByID(ctx, id)
	if err != nil {
		return leadsvc.ProviderInfo{}, err
	}
	return leadsvc.ProviderInfo{
		ID:                 p.ID,
		UserID:             p.UserID,
		IsActive:           p.IsActive,
		SubscriptionStatus: p.SubscriptionStatus,
	}, nil
}

// ProviderIDForUser resolves the provider profile owned by a user.
func (a *ProviderReaderAdapter) ProviderIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := a.providers.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

var _ leadsvc.ProviderReader = (*ProviderReaderAdapter)(nil)
