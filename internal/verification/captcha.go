package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"printsite_backend/platform/metrics"

	"github.com/sony/gobreaker"
)

const (
	RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	HcaptchaVerifyURL  = "https://api.hcaptcha.com/siteverify"

	defaultCaptchaTimeout = 5 * time.Second
	defaultMinScore       = 0.5
)

var (
	// ErrCaptchaRejected means the provider answered and did not accept the token.
	ErrCaptchaRejected = errors.New("captcha rejected")
	// ErrCaptchaUnavailable means the provider could not give an answer in time.
	ErrCaptchaUnavailable = errors.New("captcha provider unavailable")
)

// CaptchaVerifier validates a client token with a provider. A nil error
// means the token was accepted.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// SiteVerifyConfig configures a siteverify-style provider client.
type SiteVerifyConfig struct {
	Secret   string
	Timeout  time.Duration
	MinScore float64
	// Endpoint overrides the provider URL.
	Endpoint   string
	HTTPClient *http.Client
}

// SiteVerifier talks to reCAPTCHA or hCaptcha. Both share the siteverify
// contract: form-encoded secret/response/remoteip in, JSON verdict out.
type SiteVerifier struct {
	provider string
	endpoint string
	secret   string
	timeout  time.Duration
	minScore float64
	useScore bool
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// NewRecaptchaVerifier returns a reCAPTCHA client. When the provider reports
// a score (v3) the token must also reach MinScore.
func NewRecaptchaVerifier(cfg SiteVerifyConfig) *SiteVerifier {
	if cfg.Endpoint == "" {
		cfg.Endpoint = RecaptchaVerifyURL
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = defaultMinScore
	}
	return newSiteVerifier(string(ModeRecaptcha), cfg, true)
}

// NewHcaptchaVerifier returns an hCaptcha client. Only the success flag counts.
func NewHcaptchaVerifier(cfg SiteVerifyConfig) *SiteVerifier {
	if cfg.Endpoint == "" {
		cfg.Endpoint = HcaptchaVerifyURL
	}
	return newSiteVerifier(string(ModeHcaptcha), cfg, false)
}

func newSiteVerifier(provider string, cfg SiteVerifyConfig, useScore bool) *SiteVerifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCaptchaTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &SiteVerifier{
		provider: provider,
		endpoint: cfg.Endpoint,
		secret:   cfg.Secret,
		timeout:  timeout,
		minScore: cfg.MinScore,
		useScore: useScore,
		http:     client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        provider,
			MaxRequests: 3,
			Timeout:     20 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 10 },
			// Only provider faults trip the breaker; a caller giving up does not.
			IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, context.Canceled) },
		}),
	}
}

// Verify calls the provider. Transport failures, non-2xx answers, malformed
// bodies and an open breaker all return ErrCaptchaUnavailable.
//
// The provider call runs detached from the caller's cancellation and bounded
// by the verifier timeout, so a disconnecting client never counts as a
// provider failure. A context that is already done skips the provider.
func (v *SiteVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCaptchaUnavailable, v.provider, err)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.timeout)
	defer cancel()

	start := time.Now()
	out, err := v.breaker.Execute(func() (interface{}, error) {
		return v.call(callCtx, token, remoteIP)
	})
	metrics.CaptchaLatency.WithLabelValues(v.provider).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s circuit open", ErrCaptchaUnavailable, v.provider)
		}
		return fmt.Errorf("%w: %s: %v", ErrCaptchaUnavailable, v.provider, err)
	}

	resp := out.(siteVerifyResponse)
	if !resp.Success {
		return fmt.Errorf("%w: %s error codes [%s]", ErrCaptchaRejected, v.provider, strings.Join(resp.ErrorCodes, ","))
	}
	if v.useScore && resp.Score != nil && *resp.Score < v.minScore {
		return fmt.Errorf("%w: %s score %.2f below %.2f", ErrCaptchaRejected, v.provider, *resp.Score, v.minScore)
	}
	return nil
}

func (v *SiteVerifier) call(ctx context.Context, token, remoteIP string) (siteVerifyResponse, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return siteVerifyResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := v.http.Do(req)
	if err != nil {
		return siteVerifyResponse{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return siteVerifyResponse{}, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return siteVerifyResponse{}, fmt.Errorf("siteverify status %d", res.StatusCode)
	}

	var out siteVerifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return siteVerifyResponse{}, fmt.Errorf("decode siteverify response: %w", err)
	}
	return out, nil
}
