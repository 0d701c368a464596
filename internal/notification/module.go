// Package notification turns domain events into outbound email. It inverts
// the dependency: domain modules publish events and never touch email
// providers or templates.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"eventcraft_backend/internal/email"
	"eventcraft_backend/internal/events"
	leadrepo "eventcraft_backend/internal/leads/repository"
	"eventcraft_backend/platform/config"
	"eventcraft_backend/platform/logger"
)

// LeadReader loads a lead with its joined provider and requester context.
// Satisfied by the leads repository.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadrepo.Lead, error)
}

// Module subscribes to domain events and sends the matching emails.
type Module struct {
	leads  LeadReader
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates the notification module.
func New(leads LeadReader, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		leads:  leads,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Subscribe registers the module on the event bus.
func (m *Module) Subscribe(bus events.Bus) {
	bus.Subscribe(events.UserSignedUp{}.EventName(), m)
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), m)
}

// Handle dispatches one event to its email handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserSignedUp:
		return m.handleUserSignedUp(ctx, e)
	case events.LeadCreated:
		return m.handleLeadCreated(ctx, e)
	case events.LeadStatusChanged:
		return m.handleLeadStatusChanged(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleUserSignedUp(ctx context.Context, e events.UserSignedUp) error {
	if err := m.sender.SendWelcomeEmail(ctx, e.Email, e.Name); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	m.log.Info("welcome email sent", "user_id", e.UserID)
	return nil
}

// handleLeadCreated emails the provider's owner about the new lead.
func (m *Module) handleLeadCreated(ctx context.Context, e events.LeadCreated) error {
	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load lead %s: %w", e.LeadID, err)
	}

	message := ""
	if lead.Message != nil {
		message = *lead.Message
	}

	err = m.sender.SendNewLeadEmail(ctx,
		lead.OwnerEmail,
		lead.OwnerName,
		lead.BusinessName,
		lead.RequesterName,
		lead.EventType,
		message,
		m.cfg.GetAppBaseURL()+"/provider-dashboard?tab=leads",
	)
	if err != nil {
		return fmt.Errorf("send new lead email: %w", err)
	}
	m.log.Info("new lead email sent", "lead_id", lead.ID, "provider_id", lead.ProviderID)
	return nil
}

// handleLeadStatusChanged emails the planner when their lead is booked.
// Other transitions stay silent.
func (m *Module) handleLeadStatusChanged(ctx context.Context, e events.LeadStatusChanged) error {
	if e.NewStatus != "booked" {
		return nil
	}

	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load lead %s: %w", e.LeadID, err)
	}

	err = m.sender.SendLeadBookedEmail(ctx,
		lead.RequesterEmail,
		lead.RequesterName,
		lead.BusinessName,
		lead.EventType,
	)
	if err != nil {
		return fmt.Errorf("send booking email: %w", err)
	}
	m.log.Info("booking email sent", "lead_id", lead.ID, "user_id", lead.UserID)
	return nil
}

var _ events.Handler = (*Module)(nil)
