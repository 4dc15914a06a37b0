// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Verification modes.
const (
	VerificationModeNone      = "none"
	VerificationModeRecaptcha = "recaptcha"
	VerificationModeHcaptcha  = "hcaptcha"
)

// Email transports.
const (
	EmailTransportSMTP  = "smtp"
	EmailTransportBrevo = "brevo"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetFormRatePerMinute() int
}

// VerificationConfig provides settings for the anti-bot verification engine.
type VerificationConfig interface {
	GetVerificationMode() string
	GetCaptchaSiteKey() string
	GetCaptchaSecretKey() string
	GetCaptchaTimeout() time.Duration
	GetRecaptchaMinScore() float64
	GetHoneypotFields() []string
	GetVerificationPatternsFile() string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetEmailTransport() string
	GetBrevoAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetOperatorEmail() string
	GetBusinessName() string
	GetContactConfirmationEnabled() bool
}

// SchedulerConfig provides settings for the background job queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetInProcessQueueSize() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketArtwork() string
	GetArtworkDir() string
	IsMinIOEnabled() bool
}

// CatalogConfig provides settings for the offerings read model.
type CatalogConfig interface {
	GetCatalogCacheTTL() time.Duration
}

// WhatsAppConfig provides settings for click-to-chat links.
type WhatsAppConfig interface {
	GetWhatsAppPhone() string
	GetWhatsAppRegion() string
	GetWhatsAppTemplatesFile() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                        string
	HTTPAddr                   string
	DatabaseURL                string
	JWTAccessSecret            string
	CORSAllowAll               bool
	CORSOrigins                []string
	CORSAllowCreds             bool
	FormRatePerMinute          int
	VerificationMode           string
	RecaptchaSiteKey           string
	RecaptchaSecretKey         string
	HcaptchaSiteKey            string
	HcaptchaSecretKey          string
	CaptchaTimeout             time.Duration
	RecaptchaMinScore          float64
	HoneypotFields             []string
	VerificationPatternsFile   string
	EmailEnabled               bool
	EmailTransport             string
	BrevoAPIKey                string
	SMTPHost                   string
	SMTPPort                   int
	SMTPUsername               string
	SMTPPassword               string
	EmailFromName              string
	EmailFromAddress           string
	OperatorEmail              string
	BusinessName               string
	ContactConfirmationEnabled bool
	RedisURL                   string
	RedisTLSInsecure           bool
	AsynqQueueName             string
	AsynqConcurrency           int
	InProcessQueueSize         int
	WorkerMetricsAddr          string
	MinIOEndpoint              string
	MinIOAccessKey             string
	MinIOSecretKey             string
	MinIOUseSSL                bool
	MinioBucketArtwork         string
	ArtworkDir                 string
	CatalogCacheTTL            time.Duration
	WhatsAppPhone              string
	WhatsAppRegion             string
	WhatsAppTemplatesFile      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }
func (c *Config) GetFormRatePerMinute() int { return c.FormRatePerMinute }

// VerificationConfig implementation
func (c *Config) GetVerificationMode() string         { return c.VerificationMode }
func (c *Config) GetCaptchaTimeout() time.Duration    { return c.CaptchaTimeout }
func (c *Config) GetRecaptchaMinScore() float64       { return c.RecaptchaMinScore }
func (c *Config) GetHoneypotFields() []string         { return c.HoneypotFields }
func (c *Config) GetVerificationPatternsFile() string { return c.VerificationPatternsFile }

// GetCaptchaSiteKey returns the public key of the active provider.
func (c *Config) GetCaptchaSiteKey() string {
	switch c.VerificationMode {
	case VerificationModeRecaptcha:
		return c.RecaptchaSiteKey
	case VerificationModeHcaptcha:
		return c.HcaptchaSiteKey
	default:
		return ""
	}
}

// GetCaptchaSecretKey returns the server secret of the active provider.
func (c *Config) GetCaptchaSecretKey() string {
	switch c.VerificationMode {
	case VerificationModeRecaptcha:
		return c.RecaptchaSecretKey
	case VerificationModeHcaptcha:
		return c.HcaptchaSecretKey
	default:
		return ""
	}
}

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetEmailTransport() string   { return c.EmailTransport }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotificationConfig implementation
func (c *Config) GetOperatorEmail() string             { return c.OperatorEmail }
func (c *Config) GetBusinessName() string              { return c.BusinessName }
func (c *Config) GetContactConfirmationEnabled() bool { return c.ContactConfirmationEnabled }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool    { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string    { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int     { return c.AsynqConcurrency }
func (c *Config) GetInProcessQueueSize() int   { return c.InProcessQueueSize }
func (c *Config) GetWorkerMetricsAddr() string { return c.WorkerMetricsAddr }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketArtwork() string { return c.MinioBucketArtwork }
func (c *Config) GetArtworkDir() string         { return c.ArtworkDir }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// CatalogConfig implementation
func (c *Config) GetCatalogCacheTTL() time.Duration { return c.CatalogCacheTTL }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppPhone() string         { return c.WhatsAppPhone }
func (c *Config) GetWhatsAppRegion() string        { return c.WhatsAppRegion }
func (c *Config) GetWhatsAppTemplatesFile() string { return c.WhatsAppTemplatesFile }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailTransport := strings.ToLower(getEnv("EMAIL_TRANSPORT", EmailTransportSMTP))
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                        getEnv("APP_ENV", "development"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		JWTAccessSecret:            getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:               corsAllowAll,
		CORSOrigins:                corsOrigins,
		CORSAllowCreds:             strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		FormRatePerMinute:          mustInt(getEnv("FORM_RATE_PER_MINUTE", "10")),
		VerificationMode:           strings.ToLower(getEnv("VERIFICATION_MODE", VerificationModeNone)),
		RecaptchaSiteKey:           getEnv("RECAPTCHA_SITE_KEY", ""),
		RecaptchaSecretKey:         getEnv("RECAPTCHA_SECRET_KEY", ""),
		HcaptchaSiteKey:            getEnv("HCAPTCHA_SITE_KEY", ""),
		HcaptchaSecretKey:          getEnv("HCAPTCHA_SECRET_KEY", ""),
		CaptchaTimeout:             mustDuration(getEnv("CAPTCHA_TIMEOUT", "5s")),
		RecaptchaMinScore:          mustFloat(getEnv("RECAPTCHA_MIN_SCORE", "0.5")),
		HoneypotFields:             splitCSV(getEnv("HONEYPOT_FIELDS", "")),
		VerificationPatternsFile:   getEnv("VERIFICATION_PATTERNS_FILE", ""),
		EmailEnabled:               emailEnabled,
		EmailTransport:             emailTransport,
		BrevoAPIKey:                getEnv("BREVO_API_KEY", ""),
		SMTPHost:                   getEnv("SMTP_HOST", ""),
		SMTPPort:                   mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:               getEnv("SMTP_USERNAME", ""),
		SMTPPassword:               getEnv("SMTP_PASSWORD", ""),
		EmailFromName:              getEnv("EMAIL_FROM_NAME", "Print & Signage"),
		EmailFromAddress:           getEnv("EMAIL_FROM_ADDRESS", ""),
		OperatorEmail:              getEnv("NOTIFY_OPERATOR_EMAIL", ""),
		BusinessName:               getEnv("BUSINESS_NAME", "Print & Signage"),
		ContactConfirmationEnabled: strings.EqualFold(getEnv("CONTACT_CONFIRMATION_ENABLED", "false"), "true"),
		RedisURL:                   getEnv("REDIS_URL", ""),
		RedisTLSInsecure:           strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:             getEnv("ASYNQ_QUEUE", "notifications"),
		AsynqConcurrency:           mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		InProcessQueueSize:         mustInt(getEnv("INPROCESS_QUEUE_SIZE", "256")),
		WorkerMetricsAddr:          getEnv("WORKER_METRICS_ADDR", ""),
		MinIOEndpoint:              getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:             getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:             getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketArtwork:         getEnv("MINIO_BUCKET_ARTWORK", "quote-artwork"),
		ArtworkDir:                 getEnv("ARTWORK_DIR", "storage/artwork"),
		CatalogCacheTTL:            mustDuration(getEnv("CATALOG_CACHE_TTL", "5m")),
		WhatsAppPhone:              getEnv("WHATSAPP_PHONE", ""),
		WhatsAppRegion:             getEnv("WHATSAPP_REGION", "AU"),
		WhatsAppTemplatesFile:      getEnv("WHATSAPP_TEMPLATES_FILE", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if err := cfg.validateVerification(); err != nil {
		return nil, err
	}
	if err := cfg.validateEmail(); err != nil {
		return nil, err
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func (c *Config) validateVerification() error {
	switch c.VerificationMode {
	case VerificationModeNone:
		return nil
	case VerificationModeRecaptcha, VerificationModeHcaptcha:
		if c.GetCaptchaSiteKey() == "" || c.GetCaptchaSecretKey() == "" {
			return fmt.Errorf("site and secret keys are required when VERIFICATION_MODE is %s", c.VerificationMode)
		}
		if c.CaptchaTimeout <= 0 {
			return fmt.Errorf("CAPTCHA_TIMEOUT must be a positive duration")
		}
		return nil
	default:
		return fmt.Errorf("VERIFICATION_MODE must be one of none, recaptcha, hcaptcha (got %q)", c.VerificationMode)
	}
}

func (c *Config) validateEmail() error {
	if !c.EmailEnabled {
		return nil
	}
	switch c.EmailTransport {
	case EmailTransportSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_TRANSPORT is smtp")
		}
	case EmailTransportBrevo:
		if c.BrevoAPIKey == "" {
			return fmt.Errorf("BREVO_API_KEY is required when EMAIL_TRANSPORT is brevo")
		}
	default:
		return fmt.Errorf("EMAIL_TRANSPORT must be smtp or brevo (got %q)", c.EmailTransport)
	}
	if c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if c.OperatorEmail == "" {
		return fmt.Errorf("NOTIFY_OPERATOR_EMAIL is required when email is enabled")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
