// Package intake provides the public form intake bounded context module.
// This file defines the module that wires the pipeline and registers routes.
package intake

import (
	apphttp "printsite_backend/internal/http"
	"printsite_backend/internal/intake/handler"
	"printsite_backend/internal/intake/repository"
	"printsite_backend/internal/intake/service"
	"printsite_backend/platform/config"
	"printsite_backend/platform/logger"
	"printsite_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule wires the intake repository, service and handler.
func NewModule(pool *pgxpool.Pool, verifier service.Verifier, jobs service.JobEnqueuer, val *validator.Validator, cfg config.NotificationConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, verifier, jobs, val, log)
	svc.SetContactConfirmation(cfg.GetContactConfirmationEnabled())

	return &Module{
		handler: handler.New(svc),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// Service returns the intake service so optional collaborators can be injected.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the persisted submissions for the notification adapter.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the public form routes and the admin views.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	forms := ctx.V1.Group("/forms")
	m.handler.RegisterPublicRoutes(forms, ctx.FormRateLimiter.RateLimit())
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
