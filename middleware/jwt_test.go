package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/middleware"
	"github.com/dmitrymomot/typetrack/pkg/jwt"
)

func TestJWT(t *testing.T) {
	t.Parallel()

	svc, err := jwt.NewFromString("test-secret")
	require.NoError(t, err)

	token, err := svc.Generate(jwt.StandardClaims{
		Subject:   "42",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	r := newRouter(middleware.JWT[ctx](svc))
	r.Get("/me", func(c ctx) handler.Response {
		claims, ok := middleware.GetJWTClaims[*jwt.StandardClaims](c)
		if !ok {
			return response.Error(response.ErrUnauthorized)
		}
		return response.String(claims.Subject)
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "42"},
		{"lowercase_scheme", "bearer " + token, http.StatusOK, "42"},
		{"missing", "", http.StatusUnauthorized, "no token provided"},
		{"no_scheme", token, http.StatusUnauthorized, "no token provided"},
		{"bad_token", "Bearer abc.def.ghi", http.StatusUnauthorized, "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := do(r, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}

	t.Run("nil_service_panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { middleware.JWTWithConfig[ctx](middleware.JWTConfig{}) })
	})
}
