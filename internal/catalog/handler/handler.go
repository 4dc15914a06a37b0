package handler

import (
	"printsite_backend/internal/catalog/service"
	"printsite_backend/internal/catalog/transport"
	"printsite_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler serves the public catalog.
type Handler struct {
	svc *service.Service
}

// New creates a new catalog handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the catalog routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/offerings", h.ListOfferings)
}

// ListOfferings returns active offerings grouped by category.
func (h *Handler) ListOfferings(c *gin.Context) {
	groups, err := h.svc.ListActiveGrouped(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	httpkit.OK(c, transport.OfferingsResponse{Categories: groups})
}
