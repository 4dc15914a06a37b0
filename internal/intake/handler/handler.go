package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"printsite_backend/internal/intake/service"
	"printsite_backend/internal/intake/transport"
	"printsite_backend/internal/intake/validation"
	"printsite_backend/internal/verification"
	"printsite_backend/platform/apperr"
	"printsite_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgQuoteReceived   = "Thanks! Your quote request has been received. We'll be in touch shortly."
	msgContactReceived = "Thanks for getting in touch. We'll reply as soon as we can."
	msgInvalidRequest  = "Invalid request"
	msgInvalidID       = "Invalid id"

	multipartMemory = 8 << 20
	// maxFormOverhead is the allowance for text fields on top of the artwork.
	maxFormOverhead = 1 << 20
)

// captchaTokenFields are the names providers and our own forms use for the
// CAPTCHA response token.
var captchaTokenFields = []string{"g-recaptcha-response", "h-captcha-response", "captcha_token"}

// Handler serves the public forms and the admin intake views.
type Handler struct {
	svc *service.Service
}

// New creates a new intake handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the public form endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.GET("/session", h.Session)
	rg.POST("/quote", limit, h.SubmitQuote)
	rg.POST("/contact", limit, h.SubmitContact)
}

// RegisterAdminRoutes mounts the operator endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes", h.ListQuotes)
	rg.GET("/quotes/:id", h.GetQuote)
	rg.GET("/quotes/:id/artwork", h.DownloadArtwork)
	rg.PATCH("/quotes/:id/status", h.UpdateQuoteStatus)
	rg.GET("/contacts", h.ListContacts)
	rg.GET("/contacts/:id", h.GetContact)
	rg.PATCH("/contacts/:id/status", h.UpdateContactStatus)
}

// Session returns the anti-bot configuration the forms must render.
func (h *Handler) Session(c *gin.Context) {
	resp, err := h.svc.FormSession(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "no-store")
	httpkit.OK(c, resp)
}

// SubmitQuote accepts the multipart quote form with an optional artwork file.
func (h *Handler) SubmitQuote(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, validation.MaxArtworkSizeKB*1024+maxFormOverhead)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		httpkit.HandleError(c, parseError(err))
		return
	}
	if c.Request.MultipartForm != nil {
		defer func() { _ = c.Request.MultipartForm.RemoveAll() }()
	}

	fields := postedFields(c)
	req := transport.QuoteSubmission{
		Name:                fields[transport.FieldName],
		Email:               fields[transport.FieldEmail],
		Phone:               fields[transport.FieldPhone],
		Service:             fields[transport.FieldService],
		ServiceCategory:     fields[transport.FieldServiceCategory],
		Description:         fields[transport.FieldDescription],
		Quantity:            fields[transport.FieldQuantity],
		Size:                fields[transport.FieldSize],
		AddressStreet:       fields[transport.FieldAddressStreet],
		AddressSuburb:       fields[transport.FieldAddressSuburb],
		AddressState:        fields[transport.FieldAddressState],
		AddressPostcode:     fields[transport.FieldAddressPostcode],
		SpecialRequirements: fields[transport.FieldSpecialRequirements],
		AntiBot:             antiBot(c, fields),
	}

	file, header, err := c.Request.FormFile(transport.FieldArtwork)
	switch {
	case err == nil:
		defer file.Close()
		req.Artwork = toUpload(file, header)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		httpkit.HandleError(c, parseError(err))
		return
	}

	resp, err := h.svc.SubmitQuote(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.SubmitResponse{Success: true, Message: msgQuoteReceived, Data: resp})
}

// SubmitContact accepts the contact form as urlencoded, multipart or JSON.
func (h *Handler) SubmitContact(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFormOverhead)

	var fields map[string]string
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		decoded, err := jsonFields(c.Request.Body)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		fields = decoded
	} else {
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		fields = postedFields(c)
	}

	req := transport.ContactSubmission{
		Name:    fields[transport.FieldName],
		Email:   fields[transport.FieldEmail],
		Message: fields[transport.FieldMessage],
		AntiBot: antiBot(c, fields),
	}

	resp, err := h.svc.SubmitContact(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.SubmitResponse{Success: true, Message: msgContactReceived, Data: resp})
}

func (h *Handler) ListQuotes(c *gin.Context) {
	var req transport.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	resp, err := h.svc.ListQuotes(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetQuote(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// DownloadArtwork streams the quote's artwork as an attachment.
func (h *Handler) DownloadArtwork(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rc, key, err := h.svc.OpenArtwork(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	})
}

func (h *Handler) UpdateQuoteStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	resp, err := h.svc.UpdateQuoteStatus(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListContacts(c *gin.Context) {
	var req transport.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	resp, err := h.svc.ListContacts(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetContact(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetContact(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) UpdateContactStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	resp, err := h.svc.UpdateContactStatus(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

// postedFields flattens the parsed form to its first value per key.
func postedFields(c *gin.Context) map[string]string {
	fields := make(map[string]string)
	if c.Request.MultipartForm != nil {
		for key, values := range c.Request.MultipartForm.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
	}
	if err := c.Request.ParseForm(); err == nil {
		for key, values := range c.Request.PostForm {
			if _, seen := fields[key]; !seen && len(values) > 0 {
				fields[key] = values[0]
			}
		}
	}
	return fields
}

// jsonFields decodes a flat JSON object. Numbers keep their literal text so a
// millisecond form-start timestamp survives intact.
func jsonFields(body io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case bool, float64:
			fields[key] = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("field %s must be a scalar", key)
		}
	}
	return fields, nil
}

// antiBot splits the verification metadata from the text fields. The CAPTCHA
// token and the form-start stamp are kept out of the content scan.
func antiBot(c *gin.Context, fields map[string]string) transport.AntiBot {
	ab := transport.AntiBot{
		Fields:        make(map[string]string, len(fields)),
		FormStartedAt: fields[verification.FormStartField],
		ClientIP:      c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	}
	for _, name := range captchaTokenFields {
		if token := strings.TrimSpace(fields[name]); token != "" && ab.CaptchaToken == "" {
			ab.CaptchaToken = token
		}
	}

	for key, value := range fields {
		if key == verification.FormStartField || isCaptchaField(key) {
			continue
		}
		ab.Fields[key] = value
	}
	return ab
}

func isCaptchaField(key string) bool {
	for _, name := range captchaTokenFields {
		if key == name {
			return true
		}
	}
	return false
}

func toUpload(file multipart.File, header *multipart.FileHeader) *transport.ArtworkUpload {
	return &transport.ArtworkUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}
}

func parseError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Validation("Please correct the highlighted fields").WithDetails(map[string]string{
			transport.FieldArtwork: fmt.Sprintf("Artwork must be smaller than %d MB", validation.MaxArtworkSizeKB/1024),
		})
	}
	return apperr.BadRequest(msgInvalidRequest)
}
