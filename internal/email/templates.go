package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names, one per notification kind.
const (
	TemplateQuoteInternal       = "quote_internal.html"
	TemplateQuoteConfirmation   = "quote_confirmation.html"
	TemplateContactInternal     = "contact_internal.html"
	TemplateContactConfirmation = "contact_confirmation.html"
)

type baseEmailData struct {
	Title        string
	Heading      string
	Subheading   string
	BusinessName string
}

// QuoteEmailData is the view of a quote request used by both quote templates.
type QuoteEmailData struct {
	ID                  string
	Name                string
	Email               string
	Phone               string
	Service             string
	ServiceCategory     string
	Description         string
	Quantity            string
	Size                string
	DeliveryAddress     string
	SpecialRequirements string
	HasArtwork          bool
	SubmittedAt         string
}

// ContactEmailData is the view of a contact message used by both contact templates.
type ContactEmailData struct {
	ID          string
	Name        string
	Email       string
	Message     string
	SubmittedAt string
}

type quoteTemplateData struct {
	baseEmailData
	Quote QuoteEmailData
}

type contactTemplateData struct {
	baseEmailData
	Contact ContactEmailData
}

// Rendered is a subject and HTML body pair.
type Rendered struct {
	Subject string
	HTML    string
}

var funcs = template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderQuoteInternal renders the operator alert for a new quote request.
func RenderQuoteInternal(businessName string, q QuoteEmailData) (Rendered, error) {
	html, err := renderEmailTemplate(TemplateQuoteInternal, quoteTemplateData{
		baseEmailData: baseEmailData{
			Title:        "New quote request",
			Heading:      "New quote request",
			Subheading:   q.Service,
			BusinessName: businessName,
		},
		Quote: q,
	})
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Subject: fmt.Sprintf(subjectQuoteInternalFmt, q.Service, q.Name), HTML: html}, nil
}

// RenderQuoteConfirmation renders the customer receipt for a quote request.
func RenderQuoteConfirmation(businessName string, q QuoteEmailData) (Rendered, error) {
	html, err := renderEmailTemplate(TemplateQuoteConfirmation, quoteTemplateData{
		baseEmailData: baseEmailData{
			Title:        "Quote request received",
			Heading:      "Thanks, " + q.Name,
			Subheading:   "We've received your quote request",
			BusinessName: businessName,
		},
		Quote: q,
	})
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Subject: fmt.Sprintf(subjectQuoteConfirmationFmt, businessName), HTML: html}, nil
}

// RenderContactInternal renders the operator alert for a contact message.
func RenderContactInternal(businessName string, c ContactEmailData) (Rendered, error) {
	html, err := renderEmailTemplate(TemplateContactInternal, contactTemplateData{
		baseEmailData: baseEmailData{
			Title:        "New contact message",
			Heading:      "New contact message",
			BusinessName: businessName,
		},
		Contact: c,
	})
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Subject: fmt.Sprintf(subjectContactInternalFmt, c.Name), HTML: html}, nil
}

// RenderContactConfirmation renders the customer receipt for a contact message.
func RenderContactConfirmation(businessName string, c ContactEmailData) (Rendered, error) {
	html, err := renderEmailTemplate(TemplateContactConfirmation, contactTemplateData{
		baseEmailData: baseEmailData{
			Title:        "Message received",
			Heading:      "Thanks, " + c.Name,
			Subheading:   "We'll be in touch shortly",
			BusinessName: businessName,
		},
		Contact: c,
	})
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Subject: fmt.Sprintf(subjectContactConfirmationFmt, businessName), HTML: html}, nil
}
