// Package service implements the lead lifecycle.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"eventcraft_backend/internal/events"
	"eventcraft_backend/internal/leads/repository"
	"eventcraft_backend/internal/leads/transport"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

const defaultListLimit = 20

// EventChecker verifies plan ownership for lead preconditions.
type EventChecker interface {
	// EventOwnedBy returns a not-found error when the event does not exist
	// or belongs to another user.
	EventOwnedBy(ctx context.Context, eventID, userID uuid.UUID) error
	// StepInEvent returns a not-found error when the step does not belong
	// to the event.
	StepInEvent(ctx context.Context, stepID, eventID uuid.UUID) error
}

// ProviderInfo is the provider state lead preconditions depend on.
type ProviderInfo struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	IsActive           bool
	SubscriptionStatus string
}

// ProviderReader resolves providers for lead scoping.
type ProviderReader interface {
	GetProvider(ctx context.Context, id uuid.UUID) (ProviderInfo, error)
	// ProviderIDForUser returns the provider profile owned by a user, or a
	// not-found error.
	ProviderIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// FollowupScheduler enqueues delayed follow-up reminders for fresh leads.
// A nil scheduler disables reminders.
type FollowupScheduler interface {
	ScheduleLeadFollowup(ctx context.Context, leadID uuid.UUID) error
}

// Service implements lead use cases.
type Service struct {
	repo      repository.Repository
	planner   EventChecker
	providers ProviderReader
	scheduler FollowupScheduler
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new lead service.
func New(repo repository.Repository, planner EventChecker, providers ProviderReader, scheduler FollowupScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		planner:   planner,
		providers: providers,
		scheduler: scheduler,
		bus:       bus,
		log:       log,
	}
}

// Create records a contact request. Preconditions are checked in order:
// caller role, event ownership, step membership, provider existence,
// provider availability. The unique constraint resolves duplicate races.
func (s *Service) Create(ctx context.Context, identity httpkit.Identity, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if identity.AccountType() != httpkit.AccountTypeUser {
		return transport.LeadResponse{}, apperr.Forbidden("Only users can create leads")
	}

	if err := s.planner.EventOwnedBy(ctx, req.EventID, identity.UserID()); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("Event not found or not authorized")
		}
		return transport.LeadResponse{}, err
	}

	if req.StepID != nil {
		if err := s.planner.StepInEvent(ctx, *req.StepID, req.EventID); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return transport.LeadResponse{}, apperr.NotFound("Step not found or not part of this event")
			}
			return transport.LeadResponse{}, err
		}
	}

	provider, err := s.providers.GetProvider(ctx, req.ProviderID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !provider.IsActive || provider.SubscriptionStatus != "active" {
		return transport.LeadResponse{}, apperr.BadRequest("Provider is not available")
	}

	var message *string
	if req.Message != "" {
		message = &req.Message
	}

	lead, err := s.repo.Create(ctx, repository.CreateParams{
		UserID:     identity.UserID(),
		ProviderID: req.ProviderID,
		EventID:    req.EventID,
		StepID:     req.StepID,
		Message:    message,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.Info("lead created",
		"lead_id", lead.ID,
		"user_id", identity.UserID(),
		"provider_id", req.ProviderID,
		"event_id", req.EventID,
	)
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		UserID:     identity.UserID(),
		ProviderID: req.ProviderID,
		EventID:    req.EventID,
		Message:    req.Message,
	})

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleLeadFollowup(ctx, lead.ID); err != nil {
			s.log.Warn("failed to schedule lead follow-up", "lead_id", lead.ID, "error", err)
		}
	}

	return toLeadResponse(lead), nil
}

// List returns leads scoped to the caller's role: planners see their own
// leads, providers see leads against their profile.
func (s *Service) List(ctx context.Context, identity httpkit.Identity, query transport.ListLeadsQuery) (transport.LeadListResponse, error) {
	filters, err := s.scopeFilters(ctx, identity)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	filters.Status = query.Status
	if identity.AccountType() == httpkit.AccountTypeUser {
		filters.EventID = query.EventID
	}
	filters.Limit = query.Limit
	if filters.Limit < 1 {
		filters.Limit = defaultListLimit
	}
	filters.Offset = query.Offset
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	leads, err := s.repo.List(ctx, filters)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	out := make([]transport.LeadResponse, len(leads))
	for i, l := range leads {
		out[i] = toLeadResponse(l)
	}
	return transport.LeadListResponse{
		Leads:  out,
		Total:  len(out),
		Offset: filters.Offset,
		Limit:  filters.Limit,
	}, nil
}

// Stats aggregates lead counts for the caller's role scope.
func (s *Service) Stats(ctx context.Context, identity httpkit.Identity) (transport.LeadStatsResponse, error) {
	filters, err := s.scopeFilters(ctx, identity)
	if err != nil {
		return transport.LeadStatsResponse{}, err
	}

	stats, err := s.repo.StatsFor(ctx, filters)
	if err != nil {
		return transport.LeadStatsResponse{}, err
	}
	return transport.LeadStatsResponse{
		Total:     stats.Total,
		New:       stats.New,
		Contacted: stats.Contacted,
		Booked:    stats.Booked,
	}, nil
}

func (s *Service) scopeFilters(ctx context.Context, identity httpkit.Identity) (repository.ListFilters, error) {
	if identity.AccountType() == httpkit.AccountTypeProvider {
		providerID, err := s.providers.ProviderIDForUser(ctx, identity.UserID())
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return repository.ListFilters{}, apperr.NotFound("Provider profile not found")
			}
			return repository.ListFilters{}, err
		}
		return repository.ListFilters{ProviderID: &providerID}, nil
	}
	userID := identity.UserID()
	return repository.ListFilters{UserID: &userID}, nil
}

// Update mutates a lead's status or message. The creating planner and the
// provider's owner may both update.
func (s *Service) Update(ctx context.Context, identity httpkit.Identity, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	canUpdate := (identity.AccountType() == httpkit.AccountTypeUser && lead.UserID == identity.UserID()) ||
		(identity.AccountType() == httpkit.AccountTypeProvider && lead.ProviderUserID == identity.UserID())
	if !canUpdate {
		return transport.LeadResponse{}, apperr.Forbidden("Not authorized to update this lead")
	}

	if req.Status == nil && req.Message == nil {
		return transport.LeadResponse{}, apperr.BadRequest("No valid fields to update")
	}
	if req.Status != nil && !validStatus(*req.Status) {
		return transport.LeadResponse{}, apperr.BadRequest("Invalid status value")
	}

	updated, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:      id,
		Status:  req.Status,
		Message: req.Message,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if req.Status != nil && *req.Status != lead.Status {
		s.log.Info("lead status changed",
			"lead_id", id,
			"old_status", lead.Status,
			"new_status", *req.Status,
		)
		s.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     id,
			UserID:     lead.UserID,
			ProviderID: lead.ProviderID,
			OldStatus:  lead.Status,
			NewStatus:  *req.Status,
		})
	}

	return toLeadResponse(updated), nil
}

// Delete removes a lead. Only the creating planner may delete, regardless of
// lead status.
func (s *Service) Delete(ctx context.Context, identity httpkit.Identity, id uuid.UUID) error {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if identity.AccountType() != httpkit.AccountTypeUser || lead.UserID != identity.UserID() {
		return apperr.Forbidden("Not authorized to delete this lead")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("lead deleted", "lead_id", id, "user_id", identity.UserID())
	return nil
}

func validStatus(status string) bool {
	switch status {
	case transport.StatusNew, transport.StatusContacted, transport.StatusBooked:
		return true
	}
	return false
}

func toLeadResponse(l repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:      l.ID,
		Status:  l.Status,
		Message: l.Message,
		Provider: transport.LeadProvider{
			ID:               l.ProviderID,
			BusinessName:     l.BusinessName,
			ProviderType:     l.ProviderType,
			LocationCity:     l.ProviderCity,
			LocationProvince: l.ProviderRegion,
		},
		Event: transport.LeadEvent{
			ID:        l.EventID,
			EventType: l.EventType,
			Prompt:    l.EventPrompt,
		},
		Requester: transport.LeadRequester{
			ID:    l.UserID,
			Name:  l.RequesterName,
			Email: l.RequesterEmail,
		},
		CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.StepID != nil && l.StepTitle != nil {
		step := &transport.LeadStep{ID: *l.StepID, StepTitle: *l.StepTitle}
		if l.StepDesc != nil {
			step.Description = *l.StepDesc
		}
		resp.Step = step
	}
	return resp
}
