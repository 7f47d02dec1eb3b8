package router_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/router"
)

type ctx = *router.Context

func text(s string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		_, err := w.Write([]byte(s))
		return err
	}
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Methods(t *testing.T) {
	t.Parallel()

	r := router.New[ctx]()
	r.Get("/items", func(c ctx) handler.Response { return text("get") })
	r.Post("/items", func(c ctx) handler.Response { return text("post") })
	r.Method("/items", func(c ctx) handler.Response { return text("put-or-delete") }, "put", http.MethodDelete)

	t.Run("dispatches_by_method", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "get", serve(t, r, http.MethodGet, "/items").Body.String())
		assert.Equal(t, "post", serve(t, r, http.MethodPost, "/items").Body.String())
		assert.Equal(t, "put-or-delete", serve(t, r, http.MethodPut, "/items").Body.String())
		assert.Equal(t, "put-or-delete", serve(t, r, http.MethodDelete, "/items").Body.String())
	})

	t.Run("head_falls_back_to_get", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, r, http.MethodHead, "/items")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("method_not_allowed_sets_allow_header", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, r, http.MethodPatch, "/items")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "DELETE, GET, OPTIONS, POST, PUT", rec.Header().Get("Allow"))
	})

	t.Run("implicit_options", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, r, http.MethodOptions, "/items")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "DELETE, GET, OPTIONS, POST, PUT", rec.Header().Get("Allow"))
	})

	t.Run("unknown_path_is_not_found", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid_method_panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			router.New[ctx]().Method("/x", func(c ctx) handler.Response { return text("") }, "FETCH")
		})
		assert.Panics(t, func() {
			router.New[ctx]().Method("/x", func(c ctx) handler.Response { return text("") })
		})
	})

	t.Run("duplicate_route_panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			r.Get("/items", func(c ctx) handler.Response { return text("") })
		})
	})
}

func TestRouter_RootPatternIsExact(t *testing.T) {
	t.Parallel()

	r := router.New[ctx]()
	r.Get("/", func(c ctx) handler.Response { return text("root") })

	assert.Equal(t, "root", serve(t, r, http.MethodGet, "/").Body.String())
	assert.Equal(t, http.StatusNotFound, serve(t, r, http.MethodGet, "/anything").Code)
}

func TestRouter_Params(t *testing.T) {
	t.Parallel()

	r := router.New[ctx]()
	r.Get("/session/{id}", func(c ctx) handler.Response { return text(c.Param("id")) })
	r.Get("/files/{path...}", func(c ctx) handler.Response { return text(c.Param("path")) })

	assert.Equal(t, "abc", serve(t, r, http.MethodGet, "/session/abc").Body.String())
	assert.Equal(t, "a/b/c.txt", serve(t, r, http.MethodGet, "/files/a/b/c.txt").Body.String())
}

func TestRouter_RouteAndGroup(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) handler.Middleware[ctx] {
		return func(next handler.HandlerFunc[ctx]) handler.HandlerFunc[ctx] {
			return func(c ctx) handler.Response {
				order = append(order, name)
				return next(c)
			}
		}
	}

	r := router.New[ctx](router.WithMiddleware(mw("global")))
	r.Route("/api", func(api router.Router[ctx]) {
		api.Use(mw("api"))
		api.Get("/", func(c ctx) handler.Response { return text("api-root") })
		api.Group(func(g router.Router[ctx]) {
			g.Use(mw("group"))
			g.Get("/users", func(c ctx) handler.Response { return text("users") })
		})
		api.With(mw("inline")).Get("/posts", func(c ctx) handler.Response { return text("posts") })
	})

	assert.Equal(t, "api-root", serve(t, r, http.MethodGet, "/api").Body.String())
	assert.Equal(t, []string{"global", "api"}, order)

	order = nil
	assert.Equal(t, "users", serve(t, r, http.MethodGet, "/api/users").Body.String())
	assert.Equal(t, []string{"global", "api", "group"}, order)

	order = nil
	assert.Equal(t, "posts", serve(t, r, http.MethodGet, "/api/posts").Body.String())
	assert.Equal(t, []string{"global", "api", "inline"}, order)

	assert.Equal(t, []router.Route{
		{Method: http.MethodGet, Pattern: "/api"},
		{Method: http.MethodGet, Pattern: "/api/users"},
		{Method: http.MethodGet, Pattern: "/api/posts"},
	}, r.Routes())

	assert.Panics(t, func() { r.Route("/nil", nil) })
}

func TestRouter_Errors(t *testing.T) {
	t.Parallel()

	t.Run("handler_error_goes_to_error_handler", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("boom")
		var got error
		r := router.New[ctx](router.WithErrorHandler(func(c ctx, err error) {
			got = err
			c.ResponseWriter().WriteHeader(http.StatusTeapot)
		}))
		r.Get("/fail", func(c ctx) handler.Response {
			return func(w http.ResponseWriter, r *http.Request) error { return sentinel }
		})

		rec := serve(t, r, http.MethodGet, "/fail")
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.ErrorIs(t, got, sentinel)
	})

	t.Run("nil_response", func(t *testing.T) {
		t.Parallel()

		r := router.New[ctx]()
		r.Get("/nil", func(c ctx) handler.Response { return nil })

		rec := serve(t, r, http.MethodGet, "/nil")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), router.ErrNilResponse.Error())
	})

	t.Run("panic_is_recovered", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("kaboom")
		var got error
		r := router.New[ctx](router.WithErrorHandler(func(c ctx, err error) {
			got = err
			c.ResponseWriter().WriteHeader(http.StatusInternalServerError)
		}))
		r.Get("/panic", func(c ctx) handler.Response { panic(sentinel) })

		rec := serve(t, r, http.MethodGet, "/panic")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var pe router.PanicError
		require.ErrorAs(t, got, &pe)
		assert.Equal(t, sentinel, pe.Value())
		assert.NotEmpty(t, pe.Stack())
		assert.ErrorIs(t, got, sentinel)
	})

	t.Run("invalid_pattern_panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			router.New[ctx]().Get("items", func(c ctx) handler.Response { return text("") })
		})
	})
}

type customContext struct {
	*router.Context
	tenant string
}

func TestRouter_ContextFactory(t *testing.T) {
	t.Parallel()

	t.Run("custom_context", func(t *testing.T) {
		t.Parallel()

		r := router.New[*customContext](router.WithContextFactory(
			func(w http.ResponseWriter, r *http.Request, params map[string]string) *customContext {
				return &customContext{Context: router.NewContext(w, r, params), tenant: "acme"}
			},
		))
		r.Get("/t", func(c *customContext) handler.Response { return text(c.tenant) })

		assert.Equal(t, "acme", serve(t, r, http.MethodGet, "/t").Body.String())
	})

	t.Run("set_value_reaches_response", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		r := router.New[ctx]()
		r.Use(func(next handler.HandlerFunc[ctx]) handler.HandlerFunc[ctx] {
			return func(c ctx) handler.Response {
				c.SetValue(key{}, "v")
				return next(c)
			}
		})
		r.Get("/v", func(c ctx) handler.Response {
			return func(w http.ResponseWriter, r *http.Request) error {
				_, err := w.Write([]byte(r.Context().Value(key{}).(string)))
				return err
			}
		})

		assert.Equal(t, "v", serve(t, r, http.MethodGet, "/v").Body.String())
	})
}
