// Package verification decides whether a public form submission came from a
// human. It combines a honeypot, a render-to-submit timing window, a spam
// vocabulary scan and an optional CAPTCHA provider check.
//
// All applicable checks run on every submission so that operators get a full
// diagnostic trail; the submission passes only when every check passes.
// CAPTCHA provider errors, timeouts and an open circuit breaker all count as a
// failed check (fail-closed).
package verification

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"printsite_backend/platform/config"
)

// Mode selects which CAPTCHA provider, if any, gates submissions.
type Mode string

const (
	ModeNone      Mode = config.VerificationModeNone
	ModeRecaptcha Mode = config.VerificationModeRecaptcha
	ModeHcaptcha  Mode = config.VerificationModeHcaptcha
)

// Check names recorded in FailedCheck.Name and in metrics.
const (
	CheckHoneypot = "honeypot"
	CheckTiming   = "timing"
	CheckContent  = "content"
	CheckCaptcha  = "captcha"
)

const (
	DefaultMinElapsed = 3 * time.Second
	DefaultMaxElapsed = 30 * time.Minute

	// FormStartField carries the client-declared render timestamp.
	FormStartField = "form_start_time"
)

// Public wording. Clients never learn which signal tripped.
const (
	MessageGeneric = "We could not verify your submission. Please try again."
	MessageCaptcha = "Please complete the verification challenge and try again."
)

// DefaultHoneypotFields are the decoy inputs rendered hidden on every form.
var DefaultHoneypotFields = []string{"website", "company", "url", "fax_number"}

// ErrHoneypotCollision is returned when a decoy name is also a real form field.
var ErrHoneypotCollision = errors.New("honeypot field collides with a form field")

// ParseMode validates a configured mode string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeNone, "":
		return ModeNone, nil
	case ModeRecaptcha:
		return ModeRecaptcha, nil
	case ModeHcaptcha:
		return ModeHcaptcha, nil
	default:
		return "", fmt.Errorf("unknown verification mode %q", value)
	}
}

// Submission is the anti-bot view of one incoming form post.
type Submission struct {
	// Fields holds every text field posted, honeypots included.
	Fields        map[string]string
	FormStartedAt string
	CaptchaToken  string
	ClientIP      string
	UserAgent     string
	// SubmittedAt defaults to the engine clock when zero.
	SubmittedAt time.Time
}

// FailedCheck describes one failed signal. Reason is for logs only.
type FailedCheck struct {
	Name          string
	Reason        string
	PublicMessage string
}

// Result is the outcome of Engine.Verify.
type Result struct {
	Passed       bool
	FailedChecks []FailedCheck
}

// Failed reports whether the named check is among the failures.
func (r Result) Failed(name string) bool {
	for _, fc := range r.FailedChecks {
		if fc.Name == name {
			return true
		}
	}
	return false
}

// PublicMessages returns the de-duplicated client-facing messages in order.
func (r Result) PublicMessages() []string {
	seen := make(map[string]struct{}, len(r.FailedChecks))
	out := make([]string, 0, len(r.FailedChecks))
	for _, fc := range r.FailedChecks {
		if _, ok := seen[fc.PublicMessage]; ok {
			continue
		}
		seen[fc.PublicMessage] = struct{}{}
		out = append(out, fc.PublicMessage)
	}
	return out
}

// Settings configures an Engine. Zero durations fall back to the defaults.
type Settings struct {
	Mode           Mode
	HoneypotFields []string
	// ReservedFields are real form field names that must never be decoys.
	ReservedFields []string
	MinElapsed     time.Duration
	MaxElapsed     time.Duration
	Patterns       []*regexp.Regexp
	Captcha        CaptchaVerifier
	SiteKey        string
	Now            func() time.Time
}

// SettingsFromConfig builds Settings from application configuration.
func SettingsFromConfig(cfg config.VerificationConfig, reserved []string) (Settings, error) {
	mode, err := ParseMode(cfg.GetVerificationMode())
	if err != nil {
		return Settings{}, err
	}

	honeypots := cfg.GetHoneypotFields()
	if len(honeypots) == 0 {
		honeypots = DefaultHoneypotFields
	}

	patterns, err := DefaultPatterns()
	if err != nil {
		return Settings{}, err
	}
	if path := cfg.GetVerificationPatternsFile(); path != "" {
		patterns, err = LoadPatternsFile(path)
		if err != nil {
			return Settings{}, err
		}
	}

	settings := Settings{
		Mode:           mode,
		HoneypotFields: honeypots,
		ReservedFields: reserved,
		Patterns:       patterns,
		SiteKey:        cfg.GetCaptchaSiteKey(),
	}

	switch mode {
	case ModeRecaptcha:
		settings.Captcha = NewRecaptchaVerifier(SiteVerifyConfig{
			Secret:   cfg.GetCaptchaSecretKey(),
			Timeout:  cfg.GetCaptchaTimeout(),
			MinScore: cfg.GetRecaptchaMinScore(),
		})
	case ModeHcaptcha:
		settings.Captcha = NewHcaptchaVerifier(SiteVerifyConfig{
			Secret:  cfg.GetCaptchaSecretKey(),
			Timeout: cfg.GetCaptchaTimeout(),
		})
	}

	return settings, nil
}

func validateHoneypots(honeypots, reserved []string) error {
	fields := make(map[string]struct{}, len(reserved)+1)
	for _, name := range reserved {
		fields[strings.ToLower(name)] = struct{}{}
	}
	fields[FormStartField] = struct{}{}

	for _, name := range honeypots {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty decoy name", ErrHoneypotCollision)
		}
		if _, ok := fields[strings.ToLower(name)]; ok {
			return fmt.Errorf("%w: %s", ErrHoneypotCollision, name)
		}
	}
	return nil
}
