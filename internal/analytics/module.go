// Package analytics provides the provider analytics bounded context module.
package analytics

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"eventcraft_backend/internal/analytics/handler"
	"eventcraft_backend/internal/analytics/repository"
	"eventcraft_backend/internal/analytics/service"
	"eventcraft_backend/internal/events"
	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/platform/logger"
	"eventcraft_backend/platform/validator"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the analytics module.
func NewModule(pool *pgxpool.Pool, providers service.ProviderDirectory, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, providers, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts analytics routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.API.Group("/analytics")
	public.POST("/providers/:id/view", ctx.OptionalAuthMiddleware, m.handler.RecordView)

	protected := ctx.Protected.Group("/analytics")
	protected.GET("/dashboard", m.handler.Dashboard)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
