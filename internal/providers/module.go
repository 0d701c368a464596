// Package providers provides the provider directory bounded context module.
package providers

import (
	"eventcraft_backend/internal/events"
	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/internal/providers/handler"
	"eventcraft_backend/internal/providers/repository"
	"eventcraft_backend/internal/providers/service"
	"eventcraft_backend/platform/config"
	"eventcraft_backend/platform/logger"
	"eventcraft_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the providers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the providers module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.NotificationConfig, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log, cfg.GetAppBaseURL())
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "providers"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the provider repository for cross-module reads.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts provider routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.API.Group("/providers")
	public.GET("", m.handler.List)
	public.GET("/:id", ctx.OptionalAuthMiddleware, m.handler.Get)
	public.GET("/:id/qr", m.handler.QRCode)

	protected := ctx.Protected.Group("/providers")
	protected.POST("", m.handler.Create)
	protected.GET("/me", m.handler.Me)
	protected.PUT("/:id", m.handler.Update)
	protected.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
