// Package whatsapp provides the click-to-chat module.
package whatsapp

import (
	apphttp "printsite_backend/internal/http"
	"printsite_backend/internal/whatsapp/handler"
	"printsite_backend/internal/whatsapp/service"
	"printsite_backend/platform/config"
)

// Module is the WhatsApp module implementing http.Module.
type Module struct {
	handler *handler.Handler
	links   *service.LinkBuilder
}

// NewModule builds the link builder from configuration. It returns
// service.ErrNotConfigured when no business number is set.
func NewModule(cfg config.WhatsAppConfig, businessName string) (*Module, error) {
	links, err := service.NewLinkBuilder(cfg, businessName)
	if err != nil {
		return nil, err
	}
	return &Module{handler: handler.New(links), links: links}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "whatsapp"
}

// Links returns the link builder for external use.
func (m *Module) Links() *service.LinkBuilder {
	return m.links
}

// RegisterRoutes mounts the public WhatsApp routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/whatsapp"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
