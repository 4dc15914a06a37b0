package httpkit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"printsite_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type secretConfig string

func (s secretConfig) GetJWTAccessSecret() string { return string(s) }

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func adminEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/admin", AuthRequired(secretConfig(testSecret)), RequireRole("admin"), func(c *gin.Context) {
		id, _ := c.Get(ContextUserIDKey)
		c.String(http.StatusOK, id.(uuid.UUID).String())
	})
	return engine
}

func getWithToken(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthAcceptsAdminAccessToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":   userID.String(),
		"type":  "access",
		"roles": []string{"staff", "admin"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rec := getWithToken(adminEngine(), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != userID.String() {
		t.Fatalf("expected user id %s on context, got %q", userID, rec.Body.String())
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	userID := uuid.NewString()
	expiry := time.Now().Add(time.Hour).Unix()

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID, "type": "access", "roles": []string{"admin"}, "exp": expiry,
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	cases := map[string]struct {
		token  string
		status int
	}{
		"missing":       {"", http.StatusUnauthorized},
		"wrong key":     {otherKey, http.StatusUnauthorized},
		"refresh token": {signToken(t, jwt.MapClaims{"sub": userID, "type": "refresh", "roles": []string{"admin"}, "exp": expiry}), http.StatusUnauthorized},
		"expired":       {signToken(t, jwt.MapClaims{"sub": userID, "type": "access", "roles": []string{"admin"}, "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		"bad subject":   {signToken(t, jwt.MapClaims{"sub": "nobody", "type": "access", "roles": []string{"admin"}, "exp": expiry}), http.StatusUnauthorized},
		"no admin role": {signToken(t, jwt.MapClaims{"sub": userID, "type": "access", "roles": []string{"staff"}, "exp": expiry}), http.StatusForbidden},
		"no roles":      {signToken(t, jwt.MapClaims{"sub": userID, "type": "access", "exp": expiry}), http.StatusForbidden},
	}

	engine := adminEngine()
	for name, tc := range cases {
		rec := getWithToken(engine, tc.token)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", name, tc.status, rec.Code)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
			t.Fatalf("%s: expected error body, got %q", name, rec.Body.String())
		}
	}
}

func TestRateLimitRespondsTooManyRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewFormRateLimiter(1, logger.NewWithWriter("test", &bytes.Buffer{}))
	engine := gin.New()
	handled := 0
	engine.POST("/forms", limiter.RateLimit(), func(c *gin.Context) {
		handled++
		c.Status(http.StatusNoContent)
	})

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/forms", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("203.0.113.7"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first request through, got %d", rec.Code)
	}
	rec := send("203.0.113.7")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error != "rate limit exceeded" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if rec := send("203.0.113.8"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected a separate budget per ip, got %d", rec.Code)
	}
	if handled != 2 {
		t.Fatalf("expected handler to run twice, ran %d", handled)
	}
}
