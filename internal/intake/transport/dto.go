package transport

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Form field names shared by the handler, validators and verification.
const (
	FieldName                = "name"
	FieldEmail               = "email"
	FieldPhone               = "phone"
	FieldService             = "service"
	FieldServiceCategory     = "service_category"
	FieldDescription         = "description"
	FieldQuantity            = "quantity"
	FieldSize                = "size"
	FieldArtwork             = "artwork"
	FieldAddressStreet       = "address_street"
	FieldAddressSuburb       = "address_suburb"
	FieldAddressState        = "address_state"
	FieldAddressPostcode     = "address_postcode"
	FieldSpecialRequirements = "special_requirements"
	FieldMessage             = "message"
)

// FormFields lists every real field rendered on the public forms.
var FormFields = []string{
	FieldName, FieldEmail, FieldPhone, FieldService, FieldServiceCategory,
	FieldDescription, FieldQuantity, FieldSize, FieldArtwork,
	FieldAddressStreet, FieldAddressSuburb, FieldAddressState, FieldAddressPostcode,
	FieldSpecialRequirements, FieldMessage,
}

// AntiBot carries the verification metadata posted with every public form.
type AntiBot struct {
	// Fields are all posted text values, honeypots included.
	Fields        map[string]string
	FormStartedAt string
	CaptchaToken  string
	ClientIP      string
	UserAgent     string
}

// ArtworkUpload is an optional file attached to a quote request.
type ArtworkUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// QuoteSubmission is the raw quote form.
type QuoteSubmission struct {
	Name                string
	Email               string
	Phone               string
	Service             string
	ServiceCategory     string
	Description         string
	Quantity            string
	Size                string
	AddressStreet       string
	AddressSuburb       string
	AddressState        string
	AddressPostcode     string
	SpecialRequirements string
	Artwork             *ArtworkUpload
	AntiBot             AntiBot
}

// ContactSubmission is the raw contact form.
type ContactSubmission struct {
	Name    string
	Email   string
	Message string
	AntiBot AntiBot
}

// UpdateStatusRequest is the admin status change body.
type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// ListRequest filters admin listings.
type ListRequest struct {
	Status   string `form:"status"`
	Page     int    `form:"page" validate:"omitempty,min=1,max=10000"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// DeliveryAddress is the normalized address in responses.
type DeliveryAddress struct {
	Street    string  `json:"street"`
	Suburb    string  `json:"suburb"`
	State     string  `json:"state"`
	Postcode  *string `json:"postcode,omitempty"`
	Formatted string  `json:"formatted"`
}

// QuoteResponse is a quote request as returned to clients.
type QuoteResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	Service             string          `json:"service"`
	ServiceCategory     *string         `json:"serviceCategory,omitempty"`
	Description         string          `json:"description"`
	Quantity            string          `json:"quantity"`
	Size                *string         `json:"size,omitempty"`
	HasArtwork          bool            `json:"hasArtwork"`
	Address             DeliveryAddress `json:"address"`
	SpecialRequirements *string         `json:"specialRequirements,omitempty"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// AdminQuoteResponse adds operator-only fields.
type AdminQuoteResponse struct {
	QuoteResponse
	ArtworkFileRef *string   `json:"artworkFileRef,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ContactResponse is a contact message as returned to clients.
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminContactResponse adds operator-only fields.
type AdminContactResponse struct {
	ContactResponse
	Notes     *string   `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuoteListResponse wraps a page of quote requests.
type QuoteListResponse struct {
	Items    []AdminQuoteResponse `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// ContactListResponse wraps a page of contact messages.
type ContactListResponse struct {
	Items    []AdminContactResponse `json:"items"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// SubmitResponse is returned on a successful submission.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// FormSessionResponse tells the frontend how to render anti-bot inputs.
type FormSessionResponse struct {
	VerificationMode string          `json:"verificationMode"`
	SiteKey          string          `json:"siteKey,omitempty"`
	FormStartTime    int64           `json:"formStartTime"`
	FormStartField   string          `json:"formStartField"`
	HoneypotFields   []string        `json:"honeypotFields"`
	Offerings        []OfferingGroup `json:"offerings"`
}

// OfferingGroup is one category of the quote form service picker.
type OfferingGroup struct {
	Category string         `json:"category"`
	Items    []OfferingItem `json:"items"`
}

// OfferingItem is a single selectable service.
type OfferingItem struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}
