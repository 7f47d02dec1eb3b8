package middleware_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/logger"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/middleware"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates_uuid", func(t *testing.T) {
		t.Parallel()

		var seen string
		r := newRouter(middleware.RequestID[ctx]())
		r.Get("/", func(c ctx) handler.Response {
			seen, _ = middleware.GetRequestID(c)
			return response.NoContent()
		})

		rec := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("header_present_on_errors", func(t *testing.T) {
		t.Parallel()

		r := newRouter(middleware.RequestID[ctx]())
		r.Get("/", func(c ctx) handler.Response { return response.Error(response.ErrNotFound) })

		rec := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("uses_existing", func(t *testing.T) {
		t.Parallel()

		r := newRouter(middleware.RequestIDWithConfig[ctx](middleware.RequestIDConfig{UseExisting: true}))
		r.Get("/", func(c ctx) handler.Response { return response.NoContent() })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "client-id")
		assert.Equal(t, "client-id", do(r, req).Header().Get("X-Request-ID"))
	})

	t.Run("log_extractor", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithContextExtractors(middleware.RequestIDExtractor))

		r := newRouter(middleware.RequestIDWithConfig[ctx](middleware.RequestIDConfig{
			Generator: func() string { return "fixed-id" },
		}))
		r.Get("/", func(c ctx) handler.Response {
			log.InfoContext(c, "inside")
			return response.NoContent()
		})
		do(r, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Contains(t, buf.String(), "request_id=fixed-id")

		_, ok := middleware.RequestIDExtractor(context.Background())
		assert.False(t, ok)
	})
}
