// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"printsite_backend/platform/apperr"
	"printsite_backend/platform/config"
	"printsite_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// ContextUserIDKey holds the authenticated operator's id.
	ContextUserIDKey = "userID"
	// ContextRolesKey holds the roles carried by the access token.
	ContextRolesKey = "roles"

	accessTokenType = "access"
	bearerPrefix    = "Bearer "
)

// RequestLogger logs method, path, status and latency once the request is done.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		path := c.Request.URL.Path
		c.Next()
		elapsed := float64(time.Since(started).Microseconds()) / 1000
		log.HTTPRequest(c.Request.Method, path, c.Writer.Status(), elapsed, c.ClientIP())
	}
}

// RequestID tags each request with an id, reusing X-Request-ID when the
// client or proxy already set one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey, id))
		c.Next()
	}
}

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
}

// SecurityHeaders sets the fixed response headers for a JSON-only API.
// HSTS is only sent over TLS.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range securityHeaders {
			c.Header(h[0], h[1])
		}
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	buckets sync.Map // ip -> *rate.Limiter
	limit   rate.Limit
	burst   int
	log     *logger.Logger
}

// NewIPRateLimiter allows limit events per second per IP with the given burst.
func NewIPRateLimiter(limit rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{limit: limit, burst: burst, log: log}
}

// NewFormRateLimiter creates the limiter applied to public form submissions.
// perMinute <= 0 falls back to 10 requests per minute.
func NewFormRateLimiter(perMinute int, log *logger.Logger) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return NewIPRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute, log)
}

// Allow reports whether a request from ip fits in its budget.
func (l *IPRateLimiter) Allow(ip string) bool {
	bucket, ok := l.buckets.Load(ip)
	if !ok {
		bucket, _ = l.buckets.LoadOrStore(ip, rate.NewLimiter(l.limit, l.burst))
	}
	return bucket.(*rate.Limiter).Allow()
}

// RateLimit rejects requests over budget with 429.
func (l *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if l.Allow(ip) {
			c.Next()
			return
		}
		if l.log != nil {
			l.log.RateLimitExceeded(ip, c.Request.URL.Path)
		}
		HandleError(c, apperr.RateLimited("rate limit exceeded"))
		c.Abort()
	}
}

// accessClaims is the payload of an operator access token.
type accessClaims struct {
	Type  string   `json:"type"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthRequired accepts HMAC-signed access tokens sent as a Bearer
// Authorization header and stores the subject and roles on the context.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if !strings.HasPrefix(header, bearerPrefix) || raw == "" {
			HandleError(c, apperr.Unauthorized("missing token"))
			c.Abort()
			return
		}

		claims, userID, ok := verifyAccessToken(raw, cfg.GetJWTAccessSecret())
		if !ok {
			HandleError(c, apperr.Unauthorized("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRolesKey, claims.Roles)
		c.Next()
	}
}

func verifyAccessToken(raw, secret string) (*accessClaims, uuid.UUID, bool) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil || claims.Type != accessTokenType {
		return nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, false
	}
	return claims, userID, true
}

// RequireRole lets the request through only if AuthRequired stored role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if roles, _ := c.Get(ContextRolesKey); !slices.Contains(asStrings(roles), role) {
			HandleError(c, apperr.Forbidden("forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func asStrings(v any) []string {
	roles, _ := v.([]string)
	return roles
}
