// Package handler provides HTTP handlers for analytics.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventcraft_backend/internal/analytics/service"
	"eventcraft_backend/internal/analytics/transport"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/validator"
)

// Handler handles HTTP requests for analytics.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new analytics handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RecordView records one profile view. Anonymous viewers count too.
// POST /api/analytics/providers/:id/view
func (h *Handler) RecordView(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid provider id", nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	err = h.svc.RecordView(c.Request.Context(), identity, providerID, c.ClientIP(), c.Request.UserAgent())
	if httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard returns the caller's provider analytics.
// GET /api/analytics/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var query transport.DashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Dashboard(c.Request.Context(), identity, query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
