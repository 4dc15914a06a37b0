// Package service builds click-to-chat links and QR codes that open a
// WhatsApp conversation with the business, prefilled from a named template.
package service

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"printsite_backend/platform/config"
	"printsite_backend/platform/phone"

	"gopkg.in/yaml.v3"
)

const (
	TemplateGeneral = "general"
	TemplateQuote   = "quote"
	TemplateContact = "contact"

	baseURL = "https://wa.me/"
	// maxVarLength bounds caller-supplied values substituted into a message.
	maxVarLength = 120
)

var (
	ErrNotConfigured   = errors.New("whatsapp phone number not configured")
	ErrUnknownTemplate = errors.New("unknown whatsapp template")
)

// DefaultTemplates hold the prefilled messages. {business} and {service} are
// substituted when the link is built.
var DefaultTemplates = map[string]string{
	TemplateGeneral: "Hi {business}, I have a question about your printing and signage services.",
	TemplateQuote:   "Hi {business}, I'd like a quote for {service}.",
	TemplateContact: "Hi {business}, I'd like to get in touch with your team.",
}

// LinkBuilder renders wa.me links for one business number.
type LinkBuilder struct {
	digits    string
	business  string
	templates map[string]string
}

// NewLinkBuilder normalizes the configured number and loads the optional
// template override file.
func NewLinkBuilder(cfg config.WhatsAppConfig, businessName string) (*LinkBuilder, error) {
	if strings.TrimSpace(cfg.GetWhatsAppPhone()) == "" {
		return nil, ErrNotConfigured
	}
	digits, err := phone.Digits(cfg.GetWhatsAppPhone(), cfg.GetWhatsAppRegion())
	if err != nil {
		return nil, fmt.Errorf("whatsapp phone %q: %w", cfg.GetWhatsAppPhone(), err)
	}

	templates := make(map[string]string, len(DefaultTemplates))
	for name, text := range DefaultTemplates {
		templates[name] = text
	}
	if path := cfg.GetWhatsAppTemplatesFile(); path != "" {
		overrides, err := LoadTemplatesFile(path)
		if err != nil {
			return nil, err
		}
		for name, text := range overrides {
			templates[name] = text
		}
	}

	return &LinkBuilder{digits: digits, business: businessName, templates: templates}, nil
}

// Templates lists the available template names in order.
func (b *LinkBuilder) Templates() []string {
	names := make([]string, 0, len(b.templates))
	for name := range b.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Message renders the named template. An empty name selects the general one.
func (b *LinkBuilder) Message(name, service string) (string, error) {
	if name == "" {
		name = TemplateGeneral
	}
	text, ok := b.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	service = clip(strings.TrimSpace(service))
	if service == "" {
		service = "your services"
	}
	replacer := strings.NewReplacer("{business}", b.business, "{service}", service)
	return strings.TrimSpace(replacer.Replace(text)), nil
}

// Link returns the wa.me URL for the named template.
func (b *LinkBuilder) Link(name, service string) (string, error) {
	msg, err := b.Message(name, service)
	if err != nil {
		return "", err
	}
	// wa.me expects %20 rather than + for spaces.
	text := strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
	return baseURL + b.digits + "?text=" + text, nil
}

func clip(s string) string {
	runes := []rune(s)
	if len(runes) > maxVarLength {
		return string(runes[:maxVarLength])
	}
	return s
}

type templatesFile struct {
	Templates map[string]string `yaml:"templates"`
}

// LoadTemplatesFile reads template overrides from a YAML file of the form
// templates: {name: text}.
func LoadTemplatesFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whatsapp templates: %w", err)
	}
	var file templatesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse whatsapp templates: %w", err)
	}
	for name, text := range file.Templates {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("whatsapp template %q is empty", name)
		}
	}
	return file.Templates, nil
}
