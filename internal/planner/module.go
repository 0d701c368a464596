// Package planner provides the AI checklist bounded context module.
package planner

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"eventcraft_backend/internal/events"
	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/internal/planner/handler"
	"eventcraft_backend/internal/planner/repository"
	"eventcraft_backend/internal/planner/service"
	"eventcraft_backend/internal/planner/vocabulary"
	"eventcraft_backend/platform/logger"
	"eventcraft_backend/platform/validator"
)

// Module is the planner bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the planner module with all its dependencies.
func NewModule(pool *pgxpool.Pool, catalog service.ProviderCatalog, llm service.Completer, bus events.Bus, log *logger.Logger, val *validator.Validator) (*Module, error) {
	vocab, err := vocabulary.Load()
	if err != nil {
		return nil, fmt.Errorf("load planner vocabulary: %w", err)
	}

	repo := repository.New(pool)
	svc := service.New(repo, catalog, llm, vocab, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "planner"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the plan repository for cross-module reads.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts planner routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/ai")
	group.POST("/generate-plan", m.handler.GeneratePlan)
	group.POST("/refine-step", m.handler.RefineStep)
	group.GET("/events", m.handler.ListEvents)
	group.GET("/events/:id", m.handler.GetEvent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
