// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"eventcraft_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AccountType string    `json:"accountType"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Provider Domain Events
// =============================================================================

// ProviderCreated is published when a provider completes onboarding.
type ProviderCreated struct {
	BaseEvent
	ProviderID   uuid.UUID `json:"providerId"`
	UserID       uuid.UUID `json:"userId"`
	BusinessName string    `json:"businessName"`
	ProviderType string    `json:"providerType"`
}

func (e ProviderCreated) EventName() string { return "providers.provider.created" }

// ProviderDeactivated is published when a provider soft-deletes their profile.
type ProviderDeactivated struct {
	BaseEvent
	ProviderID uuid.UUID `json:"providerId"`
	UserID     uuid.UUID `json:"userId"`
}

func (e ProviderDeactivated) EventName() string { return "providers.provider.deactivated" }

// =============================================================================
// Planner Domain Events
// =============================================================================

// PlanGenerated is published when the AI pipeline persists a new event plan.
type PlanGenerated struct {
	BaseEvent
	EventID   uuid.UUID `json:"eventId"`
	UserID    uuid.UUID `json:"userId"`
	EventType string    `json:"eventType"`
	StepCount int       `json:"stepCount"`
}

func (e PlanGenerated) EventName() string { return "planner.plan.generated" }

// StepRefined is published when a checklist step is refined.
type StepRefined struct {
	BaseEvent
	EventID uuid.UUID `json:"eventId"`
	StepID  uuid.UUID `json:"stepId"`
	UserID  uuid.UUID `json:"userId"`
}

func (e StepRefined) EventName() string { return "planner.step.refined" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a planner contacts a provider.
type LeadCreated struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	UserID     uuid.UUID `json:"userId"`
	ProviderID uuid.UUID `json:"providerId"`
	EventID    uuid.UUID `json:"eventId"`
	Message    string    `json:"message,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when a lead moves through its lifecycle.
type LeadStatusChanged struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	UserID     uuid.UUID `json:"userId"`
	ProviderID uuid.UUID `json:"providerId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// =============================================================================
// Billing Domain Events
// =============================================================================

// SubscriptionStatusChanged is published when a webhook updates a provider's
// subscription standing.
type SubscriptionStatusChanged struct {
	BaseEvent
	ProviderID uuid.UUID `json:"providerId"`
	UserID     uuid.UUID `json:"userId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
	StripeType string    `json:"stripeType"`
}

func (e SubscriptionStatusChanged) EventName() string { return "billing.subscription.status_changed" }

// =============================================================================
// Analytics Domain Events
// =============================================================================

// ProviderViewed is published when a provider profile view is recorded.
type ProviderViewed struct {
	BaseEvent
	ProviderID   uuid.UUID  `json:"providerId"`
	ViewerUserID *uuid.UUID `json:"viewerUserId,omitempty"`
}

func (e ProviderViewed) EventName() string { return "analytics.provider.viewed" }
