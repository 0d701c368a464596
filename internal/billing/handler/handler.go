// Package handler provides HTTP handlers for billing.
package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventcraft_backend/internal/billing/service"
	"eventcraft_backend/internal/billing/transport"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for billing.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new billing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Webhook ingests a signed Stripe event. Mounted without auth; the
// signature is the authentication.
// POST /api/stripe/webhook
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unreadable payload", nil)
		return
	}

	ack, err := h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ack)
}

// CreateCheckoutSession starts a hosted subscription checkout.
// POST /api/stripe/create-checkout-session
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateCheckoutSession(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateCustomerPortal opens the billing portal.
// POST /api/stripe/create-portal-session
func (h *Handler) CreateCustomerPortal(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.CreateCustomerPortal(c.Request.Context(), identity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateSubscription subscribes the caller directly.
// POST /api/stripe/subscription
func (h *Handler) CreateSubscription(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateSubscription(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CancelSubscription schedules a cancellation at period end.
// DELETE /api/stripe/subscription
func (h *Handler) CancelSubscription(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CancelSubscription(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SubscriptionStatus reports the caller's subscription standing.
// GET /api/stripe/subscription
func (h *Handler) SubscriptionStatus(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.SubscriptionStatus(c.Request.Context(), identity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
