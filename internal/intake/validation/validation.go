// Package validation provides the named field validators used by the intake
// pipeline. Each rule reports a typed outcome, so the same rule set runs
// without any HTTP context.
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"printsite_backend/internal/intake/domain"
	"printsite_backend/internal/intake/transport"
	"printsite_backend/platform/validator"
)

const (
	// MaxArtworkSizeKB is the upload ceiling for quote artwork.
	MaxArtworkSizeKB = 51200
	// MaxMessageLength caps contact messages, counted in characters.
	MaxMessageLength = 5000
	maxShortText     = 255
	maxLongText      = 5000
)

// AllowedArtworkExtensions maps accepted artwork extensions to their usual
// MIME types.
var AllowedArtworkExtensions = map[string][]string{
	".pdf":  {"application/pdf"},
	".ai":   {"application/postscript", "application/illustrator", "application/pdf"},
	".eps":  {"application/postscript", "application/eps", "image/x-eps"},
	".psd":  {"image/vnd.adobe.photoshop", "application/x-photoshop", "image/x-photoshop"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".svg":  {"image/svg+xml"},
	".tif":  {"image/tiff"},
	".tiff": {"image/tiff"},
}

var postcodePattern = regexp.MustCompile(`^\d{4}$`)

// Outcome is the result of one named rule.
type Outcome struct {
	Field   string
	Rule    string
	OK      bool
	Message string
}

// Rule is a named field check.
type Rule struct {
	Field string
	Name  string
	Check func() (bool, string)
}

// FieldErrors maps a field to its first failing message.
type FieldErrors map[string]string

// Pipeline runs rules in order and keeps the first failure per field.
type Pipeline struct {
	rules []Rule
}

// Add appends rules to the pipeline.
func (p *Pipeline) Add(rules ...Rule) *Pipeline {
	p.rules = append(p.rules, rules...)
	return p
}

// Outcomes evaluates every rule and returns all outcomes in order.
func (p *Pipeline) Outcomes() []Outcome {
	out := make([]Outcome, 0, len(p.rules))
	for _, r := range p.rules {
		ok, msg := r.Check()
		out = append(out, Outcome{Field: r.Field, Rule: r.Name, OK: ok, Message: msg})
	}
	return out
}

// Run evaluates the pipeline. A nil result means every rule passed.
func (p *Pipeline) Run() FieldErrors {
	var errs FieldErrors
	for _, o := range p.Outcomes() {
		if o.OK {
			continue
		}
		if errs == nil {
			errs = FieldErrors{}
		}
		if _, seen := errs[o.Field]; !seen {
			errs[o.Field] = o.Message
		}
	}
	return errs
}

// Required fails on blank values.
func Required(field, label, value string) Rule {
	return Rule{Field: field, Name: "required", Check: func() (bool, string) {
		if strings.TrimSpace(value) == "" {
			return false, fmt.Sprintf("%s is required", label)
		}
		return true, ""
	}}
}

// MaxLength fails when value exceeds limit characters.
func MaxLength(field, label, value string, limit int) Rule {
	return Rule{Field: field, Name: "max_length", Check: func() (bool, string) {
		if utf8.RuneCountInString(value) > limit {
			return false, fmt.Sprintf("%s must not exceed %d characters", label, limit)
		}
		return true, ""
	}}
}

// Email fails on malformed addresses. Blank values are left to Required.
func Email(val *validator.Validator, field, value string) Rule {
	return Rule{Field: field, Name: "email", Check: func() (bool, string) {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || val.Email(trimmed) {
			return true, ""
		}
		return false, "Please enter a valid email address"
	}}
}

// State fails unless value is an Australian state or territory code.
func State(field, value string) Rule {
	return Rule{Field: field, Name: "state", Check: func() (bool, string) {
		if strings.TrimSpace(value) == "" || domain.IsAustralianState(value) {
			return true, ""
		}
		return false, "State must be one of " + strings.Join(domain.AustralianStates, ", ")
	}}
}

// Postcode accepts blank values or exactly four digits.
func Postcode(field, value string) Rule {
	return Rule{Field: field, Name: "postcode", Check: func() (bool, string) {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || postcodePattern.MatchString(trimmed) {
			return true, ""
		}
		return false, "Postcode must be exactly 4 digits"
	}}
}

// Artwork checks the optional upload's extension, MIME type and size.
func Artwork(field string, upload *transport.ArtworkUpload) Rule {
	return Rule{Field: field, Name: "artwork", Check: func() (bool, string) {
		if upload == nil {
			return true, ""
		}
		ext := strings.ToLower(filepath.Ext(upload.FileName))
		mimes, ok := AllowedArtworkExtensions[ext]
		if !ok {
			return false, "Artwork must be a PDF, AI, EPS, PSD, JPG, PNG, SVG or TIFF file"
		}
		if !mimeAllowed(upload.ContentType, mimes) {
			return false, "Artwork file type does not match its extension"
		}
		if upload.Size <= 0 {
			return false, "Artwork file is empty"
		}
		if upload.Size > MaxArtworkSizeKB*1024 {
			return false, fmt.Sprintf("Artwork must be smaller than %d MB", MaxArtworkSizeKB/1024)
		}
		return true, ""
	}}
}

// mimeAllowed tolerates generic types browsers send for design files.
func mimeAllowed(contentType string, allowed []string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct == "" || ct == "application/octet-stream" {
		return true
	}
	for _, m := range allowed {
		if ct == m {
			return true
		}
	}
	return false
}

// QuoteRules builds the quote form pipeline.
func QuoteRules(val *validator.Validator, q transport.QuoteSubmission) *Pipeline {
	p := &Pipeline{}
	return p.Add(
		Required(transport.FieldName, "Name", q.Name),
		MaxLength(transport.FieldName, "Name", q.Name, maxShortText),
		Required(transport.FieldEmail, "Email", q.Email),
		Email(val, transport.FieldEmail, q.Email),
		Required(transport.FieldPhone, "Phone", q.Phone),
		MaxLength(transport.FieldPhone, "Phone", q.Phone, 50),
		Required(transport.FieldService, "Service", q.Service),
		MaxLength(transport.FieldService, "Service", q.Service, maxShortText),
		MaxLength(transport.FieldServiceCategory, "Service category", q.ServiceCategory, maxShortText),
		Required(transport.FieldDescription, "Description", q.Description),
		MaxLength(transport.FieldDescription, "Description", q.Description, maxLongText),
		Required(transport.FieldQuantity, "Quantity", q.Quantity),
		MaxLength(transport.FieldQuantity, "Quantity", q.Quantity, maxShortText),
		MaxLength(transport.FieldSize, "Size", q.Size, maxShortText),
		Required(transport.FieldAddressStreet, "Street address", q.AddressStreet),
		MaxLength(transport.FieldAddressStreet, "Street address", q.AddressStreet, maxShortText),
		Required(transport.FieldAddressSuburb, "Suburb", q.AddressSuburb),
		MaxLength(transport.FieldAddressSuburb, "Suburb", q.AddressSuburb, 100),
		Required(transport.FieldAddressState, "State", q.AddressState),
		State(transport.FieldAddressState, q.AddressState),
		Postcode(transport.FieldAddressPostcode, q.AddressPostcode),
		MaxLength(transport.FieldSpecialRequirements, "Special requirements", q.SpecialRequirements, maxLongText),
		Artwork(transport.FieldArtwork, q.Artwork),
	)
}

// ContactRules builds the contact form pipeline.
func ContactRules(val *validator.Validator, c transport.ContactSubmission) *Pipeline {
	p := &Pipeline{}
	return p.Add(
		Required(transport.FieldName, "Name", c.Name),
		MaxLength(transport.FieldName, "Name", c.Name, maxShortText),
		Required(transport.FieldEmail, "Email", c.Email),
		Email(val, transport.FieldEmail, c.Email),
		Required(transport.FieldMessage, "Message", c.Message),
		MaxLength(transport.FieldMessage, "Message", c.Message, MaxMessageLength),
	)
}
