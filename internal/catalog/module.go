// Package catalog provides the read-only offerings catalog module.
package catalog

import (
	"printsite_backend/internal/catalog/cache"
	"printsite_backend/internal/catalog/handler"
	"printsite_backend/internal/catalog/repository"
	"printsite_backend/internal/catalog/service"
	apphttp "printsite_backend/internal/http"
	"printsite_backend/platform/config"
	"printsite_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the catalog module. A nil redis client disables caching.
func NewModule(pool *pgxpool.Pool, rdb *redis.Client, cfg config.CatalogConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	if rdb != nil {
		svc.SetCache(cache.NewRedisCache(rdb, cfg.GetCatalogCacheTTL()))
	}

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public catalog routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/catalog"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
