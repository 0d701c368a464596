// Package service implements subscription billing and webhook sync.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventcraft_backend/internal/billing/stripe"
	"eventcraft_backend/internal/billing/transport"
	"eventcraft_backend/internal/events"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/config"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

// CustomerStore links application accounts to Stripe customers.
type CustomerStore interface {
	StripeCustomerID(ctx context.Context, userID uuid.UUID) (*string, error)
	SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error
	UserIDForCustomer(ctx context.Context, customerID string) (uuid.UUID, error)
}

// ProviderSubscription is the provider state touched by billing.
type ProviderSubscription struct {
	ProviderID uuid.UUID
	UserID     uuid.UUID
	Status     string
}

// SubscriptionStore mutates provider subscription standing.
type SubscriptionStore interface {
	SubscriptionForUser(ctx context.Context, userID uuid.UUID) (ProviderSubscription, error)
	UpdateSubscriptionStatus(ctx context.Context, userID uuid.UUID, status string) (ProviderSubscription, error)
}

// Config is the configuration surface billing needs: Stripe credentials and
// the frontend base URL for redirect targets.
type Config interface {
	config.StripeConfig
	config.NotificationConfig
}

// Service implements billing use cases.
type Service struct {
	stripe    *stripe.Client
	cfg       Config
	customers CustomerStore
	providers SubscriptionStore
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new billing service. The Stripe client may be nil when
// billing is not configured; customer-facing operations then report the
// feature as unavailable.
func New(client *stripe.Client, cfg Config, customers CustomerStore, providers SubscriptionStore, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		stripe:    client,
		cfg:       cfg,
		customers: customers,
		providers: providers,
		bus:       bus,
		log:       log,
	}
}

func (s *Service) requireStripe() error {
	if s.stripe == nil || !s.cfg.IsStripeEnabled() {
		return apperr.Unavailable("Payment processing unavailable")
	}
	return nil
}

func (s *Service) requireProvider(identity httpkit.Identity) error {
	if !identity.IsProvider() {
		return apperr.Forbidden("Only providers can manage subscriptions")
	}
	return nil
}

// ensureCustomer returns the caller's Stripe customer ID, creating the
// customer on first use.
func (s *Service) ensureCustomer(ctx context.Context, identity httpkit.Identity) (string, error) {
	existing, err := s.customers.StripeCustomerID(ctx, identity.UserID())
	if err != nil {
		return "", err
	}
	if existing != nil && *existing != "" {
		return *existing, nil
	}

	customer, err := s.stripe.CreateCustomer(ctx, identity.Email(), identity.UserID().String())
	if err != nil {
		return "", mapStripeError(err)
	}
	if err := s.customers.SetStripeCustomerID(ctx, identity.UserID(), customer.ID); err != nil {
		return "", err
	}
	s.log.Info("stripe customer created", "user_id", identity.UserID(), "customer_id", customer.ID)
	return customer.ID, nil
}

// CreateCheckoutSession starts a hosted subscription checkout for a provider.
func (s *Service) CreateCheckoutSession(ctx context.Context, identity httpkit.Identity, req transport.CheckoutSessionRequest) (transport.CheckoutSessionResponse, error) {
	if err := s.requireStripe(); err != nil {
		return transport.CheckoutSessionResponse{}, err
	}
	if err := s.requireProvider(identity); err != nil {
		return transport.CheckoutSessionResponse{}, err
	}

	customerID, err := s.ensureCustomer(ctx, identity)
	if err != nil {
		return transport.CheckoutSessionResponse{}, err
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.cfg.GetAppBaseURL() + "/provider-dashboard?tab=subscription&success=true"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.cfg.GetAppBaseURL() + "/provider-dashboard?tab=subscription&cancelled=true"
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, stripe.CheckoutSessionParams{
		Customer:   customerID,
		PriceID:    s.cfg.GetStripePriceID(),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		UserID:     identity.UserID().String(),
	})
	if err != nil {
		return transport.CheckoutSessionResponse{}, mapStripeError(err)
	}

	return transport.CheckoutSessionResponse{SessionID: session.ID, URL: session.URL}, nil
}

// CreateCustomerPortal opens the billing portal for a provider with an
// existing customer record.
func (s *Service) CreateCustomerPortal(ctx context.Context, identity httpkit.Identity) (transport.CustomerPortalResponse, error) {
	if err := s.requireStripe(); err != nil {
		return transport.CustomerPortalResponse{}, err
	}
	if err := s.requireProvider(identity); err != nil {
		return transport.CustomerPortalResponse{}, err
	}

	customerID, err := s.customers.StripeCustomerID(ctx, identity.UserID())
	if err != nil {
		return transport.CustomerPortalResponse{}, err
	}
	if customerID == nil || *customerID == "" {
		return transport.CustomerPortalResponse{}, apperr.NotFound("Customer not found")
	}

	session, err := s.stripe.CreatePortalSession(ctx, *customerID, s.cfg.GetAppBaseURL()+"/provider-dashboard?tab=subscription")
	if err != nil {
		return transport.CustomerPortalResponse{}, mapStripeError(err)
	}
	return transport.CustomerPortalResponse{URL: session.URL}, nil
}

// CreateSubscription subscribes a provider directly with a payment method.
func (s *Service) CreateSubscription(ctx context.Context, identity httpkit.Identity, req transport.CreateSubscriptionRequest) (transport.CreateSubscriptionResponse, error) {
	if err := s.requireStripe(); err != nil {
		return transport.CreateSubscriptionResponse{}, err
	}
	if err := s.requireProvider(identity); err != nil {
		return transport.CreateSubscriptionResponse{}, err
	}

	customerID, err := s.ensureCustomer(ctx, identity)
	if err != nil {
		return transport.CreateSubscriptionResponse{}, err
	}

	if req.PaymentMethodID != "" {
		if err := s.stripe.AttachPaymentMethod(ctx, req.PaymentMethodID, customerID); err != nil {
			return transport.CreateSubscriptionResponse{}, mapStripeError(err)
		}
	}

	priceID := req.PriceID
	if priceID == "" {
		priceID = s.cfg.GetStripePriceID()
	}

	sub, err := s.stripe.CreateSubscription(ctx, customerID, priceID, req.PaymentMethodID)
	if err != nil {
		return transport.CreateSubscriptionResponse{}, mapStripeError(err)
	}

	status := MapSubscriptionStatus(sub.Status)
	if _, err := s.providers.UpdateSubscriptionStatus(ctx, identity.UserID(), status); err != nil {
		s.log.Warn("failed to sync subscription status", "user_id", identity.UserID(), "error", err)
	}

	s.log.Info("subscription created", "user_id", identity.UserID(), "subscription_id", sub.ID, "status", sub.Status)
	return transport.CreateSubscriptionResponse{SubscriptionID: sub.ID, Status: sub.Status}, nil
}

// CancelSubscription schedules a provider's subscription to end with the
// current period. Ownership is checked against the stored customer ID.
func (s *Service) CancelSubscription(ctx context.Context, identity httpkit.Identity, req transport.CancelSubscriptionRequest) (transport.CancelSubscriptionResponse, error) {
	if err := s.requireStripe(); err != nil {
		return transport.CancelSubscriptionResponse{}, err
	}
	if err := s.requireProvider(identity); err != nil {
		return transport.CancelSubscriptionResponse{}, err
	}

	customerID, err := s.customers.StripeCustomerID(ctx, identity.UserID())
	if err != nil {
		return transport.CancelSubscriptionResponse{}, err
	}
	if customerID == nil || *customerID == "" {
		return transport.CancelSubscriptionResponse{}, apperr.NotFound("Customer not found")
	}

	sub, err := s.stripe.RetrieveSubscription(ctx, req.SubscriptionID)
	if err != nil {
		return transport.CancelSubscriptionResponse{}, mapStripeError(err)
	}
	if sub.Customer != *customerID {
		return transport.CancelSubscriptionResponse{}, apperr.Forbidden("Not authorized to cancel this subscription")
	}

	cancelled, err := s.stripe.CancelAtPeriodEnd(ctx, req.SubscriptionID)
	if err != nil {
		return transport.CancelSubscriptionResponse{}, mapStripeError(err)
	}

	s.log.Info("subscription cancellation scheduled", "user_id", identity.UserID(), "subscription_id", cancelled.ID)
	return transport.CancelSubscriptionResponse{
		SubscriptionID:    cancelled.ID,
		Status:            cancelled.Status,
		CancelAtPeriodEnd: cancelled.CancelAtPeriodEnd,
		CurrentPeriodEnd:  cancelled.CurrentPeriodEnd,
	}, nil
}

// SubscriptionStatus reports the provider's stored standing, cross-checked
// against Stripe when a customer record exists.
func (s *Service) SubscriptionStatus(ctx context.Context, identity httpkit.Identity) (transport.SubscriptionStatusResponse, error) {
	if err := s.requireProvider(identity); err != nil {
		return transport.SubscriptionStatusResponse{}, err
	}

	provider, err := s.providers.SubscriptionForUser(ctx, identity.UserID())
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return transport.SubscriptionStatusResponse{}, apperr.NotFound("Provider profile not found")
		}
		return transport.SubscriptionStatusResponse{}, err
	}

	resp := transport.SubscriptionStatusResponse{SubscriptionStatus: provider.Status}

	if s.stripe == nil || !s.cfg.IsStripeEnabled() {
		return resp, nil
	}
	customerID, err := s.customers.StripeCustomerID(ctx, identity.UserID())
	if err != nil || customerID == nil || *customerID == "" {
		return resp, nil
	}

	subs, err := s.stripe.ListActiveSubscriptions(ctx, *customerID)
	if err != nil {
		s.log.Warn("failed to list subscriptions", "user_id", identity.UserID(), "error", err)
		return resp, nil
	}
	resp.HasActiveSubscription = len(subs) > 0
	return resp, nil
}

// webhookEvent is the subset of a Stripe event the sync cares about.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Customer string `json:"customer"`
			Status   string `json:"status"`
		} `json:"object"`
	} `json:"data"`
}

// HandleWebhook verifies and applies one webhook delivery. Unknown event
// types and unknown customers are acknowledged without effect so Stripe does
// not retry them. Status writes are last-write-wins, which makes replays
// harmless.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (transport.WebhookAck, error) {
	if signatureHeader == "" {
		return transport.WebhookAck{}, apperr.BadRequest("Missing stripe-signature header")
	}
	if s.cfg.GetStripeWebhookSecret() == "" {
		return transport.WebhookAck{}, apperr.Internal("Webhook secret not configured")
	}

	if err := stripe.VerifySignature(payload, signatureHeader, s.cfg.GetStripeWebhookSecret(), stripe.DefaultTolerance); err != nil {
		s.log.Warn("webhook signature verification failed", "error", err)
		return transport.WebhookAck{}, apperr.BadRequest("Webhook signature verification failed")
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return transport.WebhookAck{}, apperr.BadRequest("Malformed webhook payload")
	}

	status, handled := statusForEventType(event.Type, event.Data.Object.Status)
	s.log.WebhookEvent(event.Type, event.Data.Object.Customer, handled)
	if !handled {
		return transport.WebhookAck{Received: true}, nil
	}

	if err := s.applyStatus(ctx, event.Data.Object.Customer, status, event.Type); err != nil {
		return transport.WebhookAck{}, err
	}
	return transport.WebhookAck{Received: true}, nil
}

// applyStatus resolves the customer to a provider and assigns the status.
// An unknown customer is logged and acknowledged.
func (s *Service) applyStatus(ctx context.Context, customerID, status, eventType string) error {
	if customerID == "" {
		s.log.Warn("webhook event without customer", "event_type", eventType)
		return nil
	}

	userID, err := s.customers.UserIDForCustomer(ctx, customerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.Warn("user not found for stripe customer", "customer_id", customerID)
			return nil
		}
		return err
	}

	provider, err := s.providers.SubscriptionForUser(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.Warn("provider not found for stripe customer", "customer_id", customerID, "user_id", userID)
			return nil
		}
		return err
	}

	updated, err := s.providers.UpdateSubscriptionStatus(ctx, userID, status)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}

	if provider.Status != status {
		s.bus.Publish(ctx, events.SubscriptionStatusChanged{
			BaseEvent:  events.NewBaseEvent(),
			ProviderID: updated.ProviderID,
			UserID:     userID,
			OldStatus:  provider.Status,
			NewStatus:  status,
			StripeType: eventType,
		})
	}
	s.log.Info("subscription status synced", "user_id", userID, "status", status, "event_type", eventType)
	return nil
}

// statusForEventType maps a Stripe event type onto a provider subscription
// status. The second return is false for event types the sync ignores.
func statusForEventType(eventType, subscriptionStatus string) (string, bool) {
	switch eventType {
	case "customer.subscription.created":
		return "active", true
	case "customer.subscription.updated":
		return MapSubscriptionStatus(subscriptionStatus), true
	case "customer.subscription.deleted":
		return "cancelled", true
	case "invoice.payment_succeeded":
		return "active", true
	case "invoice.payment_failed":
		return "past_due", true
	default:
		return "", false
	}
}

// MapSubscriptionStatus folds Stripe's subscription states onto the
// provider status enum.
func MapSubscriptionStatus(stripeStatus string) string {
	switch stripeStatus {
	case "active":
		return "active"
	case "past_due":
		return "past_due"
	case "canceled", "unpaid":
		return "cancelled"
	default:
		return "inactive"
	}
}

func mapStripeError(err error) error {
	var apiErr *stripe.APIError
	if errors.As(err, &apiErr) {
		return apperr.Wrap(apperr.KindBadRequest, apiErr.Message, err)
	}
	return apperr.Wrap(apperr.KindInternal, "Billing request failed", err)
}
