package handler

import (
	"errors"
	"net/http"
	"strconv"

	"printsite_backend/internal/whatsapp/service"
	"printsite_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// LinkResponse is a click-to-chat link.
type LinkResponse struct {
	Template string `json:"template"`
	URL      string `json:"url"`
}

// Handler serves click-to-chat links.
type Handler struct {
	links *service.LinkBuilder
}

// New creates a new WhatsApp handler.
func New(links *service.LinkBuilder) *Handler {
	return &Handler{links: links}
}

// RegisterRoutes mounts the WhatsApp routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/link", h.Link)
	rg.GET("/qr.png", h.QRCode)
}

// Link returns the wa.me URL for ?template= and the optional ?service=.
func (h *Handler) Link(c *gin.Context) {
	name := c.DefaultQuery("template", service.TemplateGeneral)
	link, err := h.links.Link(name, c.Query("service"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	httpkit.OK(c, LinkResponse{Template: name, URL: link})
}

// QRCode renders the link for ?template= as a PNG.
func (h *Handler) QRCode(c *gin.Context) {
	link, err := h.links.Link(c.DefaultQuery("template", service.TemplateGeneral), c.Query("service"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	size, _ := strconv.Atoi(c.Query("size"))
	png, err := service.QRCode(link, size)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnknownTemplate) {
		httpkit.Error(c, http.StatusNotFound, "template not found", h.links.Templates())
		return
	}
	httpkit.HandleError(c, err)
}
