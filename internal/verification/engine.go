package verification

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"printsite_backend/platform/logger"
	"printsite_backend/platform/metrics"
)

// Engine evaluates submissions against the configured checks.
type Engine struct {
	mode       Mode
	honeypots  []string
	minElapsed time.Duration
	maxElapsed time.Duration
	patterns   []*regexp.Regexp
	captcha    CaptchaVerifier
	siteKey    string
	now        func() time.Time
	log        *logger.Logger
}

type checkFunc func(ctx context.Context, sub Submission) (ok bool, reason, public string)

// NewEngine validates settings and returns a ready Engine.
func NewEngine(settings Settings, log *logger.Logger) (*Engine, error) {
	mode, err := ParseMode(string(settings.Mode))
	if err != nil {
		return nil, err
	}
	if err := validateHoneypots(settings.HoneypotFields, settings.ReservedFields); err != nil {
		return nil, err
	}
	if mode != ModeNone && settings.Captcha == nil {
		return nil, fmt.Errorf("verification mode %s requires a captcha verifier", mode)
	}

	e := &Engine{
		mode:       mode,
		honeypots:  append([]string(nil), settings.HoneypotFields...),
		minElapsed: settings.MinElapsed,
		maxElapsed: settings.MaxElapsed,
		patterns:   settings.Patterns,
		captcha:    settings.Captcha,
		siteKey:    settings.SiteKey,
		now:        settings.Now,
		log:        log,
	}
	if e.minElapsed <= 0 {
		e.minElapsed = DefaultMinElapsed
	}
	if e.maxElapsed <= 0 {
		e.maxElapsed = DefaultMaxElapsed
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Mode returns the active verification mode.
func (e *Engine) Mode() Mode { return e.mode }

// SiteKey returns the public CAPTCHA key rendered by the frontend.
func (e *Engine) SiteKey() string { return e.siteKey }

// HoneypotFields returns the decoy field names forms must render hidden.
func (e *Engine) HoneypotFields() []string {
	return append([]string(nil), e.honeypots...)
}

// Now returns the engine clock, used to stamp form sessions.
func (e *Engine) Now() time.Time { return e.now() }

// Verify runs every applicable check. With mode none it passes immediately.
func (e *Engine) Verify(ctx context.Context, sub Submission) Result {
	if e.mode == ModeNone {
		metrics.VerificationResults.WithLabelValues(string(e.mode), metrics.Result(true)).Inc()
		return Result{Passed: true}
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = e.now()
	}

	checks := []struct {
		name string
		fn   checkFunc
	}{
		{CheckHoneypot, e.checkHoneypot},
		{CheckTiming, e.checkTiming},
		{CheckContent, e.checkContent},
		{CheckCaptcha, e.checkCaptcha},
	}

	result := Result{Passed: true}
	for _, c := range checks {
		ok, reason, public := c.fn(ctx, sub)
		metrics.VerificationChecks.WithLabelValues(c.name, metrics.Result(ok)).Inc()
		if e.log != nil {
			e.log.VerificationCheck(c.name, ok, reason, sub.ClientIP, sub.UserAgent)
		}
		if ok {
			continue
		}
		result.Passed = false
		result.FailedChecks = append(result.FailedChecks, FailedCheck{
			Name:          c.name,
			Reason:        reason,
			PublicMessage: public,
		})
	}

	metrics.VerificationResults.WithLabelValues(string(e.mode), metrics.Result(result.Passed)).Inc()
	return result
}

func (e *Engine) checkHoneypot(_ context.Context, sub Submission) (bool, string, string) {
	var filled []string
	for _, name := range e.honeypots {
		if strings.TrimSpace(sub.Fields[name]) != "" {
			filled = append(filled, name)
		}
	}
	if len(filled) > 0 {
		return false, "honeypot field filled: " + strings.Join(filled, ","), MessageGeneric
	}
	return true, "", ""
}

func (e *Engine) checkTiming(_ context.Context, sub Submission) (bool, string, string) {
	started, err := ParseFormStart(sub.FormStartedAt)
	if err != nil {
		return false, "form start time: " + err.Error(), MessageGeneric
	}
	elapsed := sub.SubmittedAt.Sub(started)
	if elapsed < e.minElapsed {
		return false, fmt.Sprintf("submitted too quickly (%s < %s)", elapsed.Round(time.Millisecond), e.minElapsed), MessageGeneric
	}
	if elapsed > e.maxElapsed {
		return false, fmt.Sprintf("form session expired (%s > %s)", elapsed.Round(time.Second), e.maxElapsed), MessageGeneric
	}
	return true, "", ""
}

func (e *Engine) checkContent(_ context.Context, sub Submission) (bool, string, string) {
	text := concatFields(sub.Fields)
	for _, re := range e.patterns {
		if match := re.FindString(text); match != "" {
			return false, fmt.Sprintf("spam pattern matched: %q", match), MessageGeneric
		}
	}
	return true, "", ""
}

func (e *Engine) checkCaptcha(ctx context.Context, sub Submission) (bool, string, string) {
	token := strings.TrimSpace(sub.CaptchaToken)
	if token == "" {
		return false, "captcha token missing", MessageCaptcha
	}
	if err := e.captcha.Verify(ctx, token, sub.ClientIP); err != nil {
		return false, err.Error(), MessageCaptcha
	}
	return true, "", ""
}

// ParseFormStart accepts Unix seconds, Unix milliseconds or RFC 3339.
func ParseFormStart(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n <= 0 {
			return time.Time{}, fmt.Errorf("invalid value %q", raw)
		}
		if n >= 1_000_000_000_000 {
			return time.UnixMilli(n), nil
		}
		return time.Unix(n, 0), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid value %q", raw)
}

func concatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fields[k])
		b.WriteByte('\n')
	}
	return b.String()
}
