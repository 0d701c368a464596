// Package auth provides the authentication bounded context module.
package auth

import (
	"eventcraft_backend/internal/auth/handler"
	"eventcraft_backend/internal/auth/repository"
	"eventcraft_backend/internal/auth/service"
	"eventcraft_backend/internal/events"
	apphttp "eventcraft_backend/internal/http"
	"eventcraft_backend/platform/config"
	"eventcraft_backend/platform/logger"
	"eventcraft_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the account repository for cross-module reads.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.API.Group("/auth")
	group.Use(ctx.AuthRateLimiter.RateLimit())
	group.POST("/signup", m.handler.Signup)
	group.POST("/signin", m.handler.Signin)

	ctx.Protected.GET("/auth/me", m.handler.Me)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
