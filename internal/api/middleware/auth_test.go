package middleware

import (
	"bytes"
	"credit-approval/internal/config"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	secret := "testsecret"
	cfg := config.AuthConfig{Enabled: true, JWTSecret: secret}

	serve := func(cfg config.AuthConfig, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		AuthMiddleware(cfg, logger)(okHandler).ServeHTTP(rec, req)
		return rec
	}

	t.Run("should allow request when middleware is disabled", func(t *testing.T) {
		disabled := cfg
		disabled.Enabled = false
		assert.Equal(t, http.StatusOK, serve(disabled, "").Code)
	})

	t.Run("should reject request with missing Authorization header", func(t *testing.T) {
		rec := serve(cfg, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":{"code":"UNAUTHORIZED","message":"Unauthorized"}}`, rec.Body.String())
	})

	t.Run("should reject malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Token abc").Code)
	})

	t.Run("should reject request with invalid token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Bearer invalidtoken").Code)
	})

	t.Run("should reject token signed with another secret", func(t *testing.T) {
		tok := signToken(t, "other", jwt.MapClaims{"username": "u", "exp": time.Now().Add(time.Hour).Unix()})
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Bearer "+tok).Code)
	})

	t.Run("should reject expired token", func(t *testing.T) {
		tok := signToken(t, secret, jwt.MapClaims{"username": "u", "exp": time.Now().Add(-time.Hour).Unix()})
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Bearer "+tok).Code)
	})

	t.Run("should reject token without expiry", func(t *testing.T) {
		tok := signToken(t, secret, jwt.MapClaims{"username": "u"})
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, "Bearer "+tok).Code)
	})

	t.Run("should allow request with valid token", func(t *testing.T) {
		tok := signToken(t, secret, jwt.MapClaims{"username": "u", "exp": time.Now().Add(time.Hour).Unix()})
		assert.Equal(t, http.StatusOK, serve(cfg, "bearer "+tok).Code)
	})
}
