// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"eventcraft_backend/internal/events"
	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/internal/leads/handler"
	"eventcraft_backend/internal/leads/repository"
	"eventcraft_backend/internal/leads/service"
	"eventcraft_backend/platform/logger"
	"eventcraft_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
// The scheduler may be nil when no task queue is configured.
func NewModule(pool *pgxpool.Pool, planner service.EventChecker, providers service.ProviderReader, scheduler service.FollowupScheduler, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, planner, providers, scheduler, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the lead repository for cross-module reads.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/stats", m.handler.Stats)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
