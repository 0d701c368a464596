// Package billing provides the subscription billing bounded context module.
package billing

import (
	"eventcraft_backend/internal/billing/handler"
	"eventcraft_backend/internal/billing/service"
	"eventcraft_backend/internal/billing/stripe"
	"eventcraft_backend/internal/events"
	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/platform/logger"
	"eventcraft_backend/platform/validator"
)

// Module is the billing bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the billing module. The Stripe client may
// be nil when billing is not configured.
func NewModule(client *stripe.Client, cfg service.Config, customers service.CustomerStore, providers service.SubscriptionStore, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	svc := service.New(client, cfg, customers, providers, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "billing"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts billing routes on the provided router context.
// The webhook endpoint is unauthenticated; its signature check is the
// authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/stripe/webhook", m.handler.Webhook)

	protected := ctx.Protected.Group("/stripe")
	protected.POST("/create-checkout-session", m.handler.CreateCheckoutSession)
	protected.POST("/create-portal-session", m.handler.CreateCustomerPortal)
	protected.POST("/subscription", m.handler.CreateSubscription)
	protected.DELETE("/subscription", m.handler.CancelSubscription)
	protected.GET("/subscription", m.handler.SubscriptionStatus)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
