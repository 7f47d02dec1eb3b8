package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/typetrack/core/handler"
)

// CORSConfig configures Cross-Origin Resource Sharing.
type CORSConfig struct {
	Skip func(ctx handler.Context) bool

	// AllowOrigins lists allowed origins. Empty or containing "*" allows any origin.
	AllowOrigins []string
	// AllowMethods defaults to GET, HEAD, PUT, PATCH, POST, DELETE.
	AllowMethods []string
	// AllowHeaders defaults to common headers including Authorization and Content-Type.
	AllowHeaders  []string
	ExposeHeaders []string
	// AllowCredentials is ignored for wildcard origins.
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
	// AllowOriginFunc takes precedence over AllowOrigins.
	AllowOriginFunc func(origin string) (string, bool)
}

// CORS allows any origin with the default methods and headers.
func CORS[C handler.Context]() handler.Middleware[C] {
	return CORSWithConfig[C](CORSConfig{})
}

// CORSWithConfig answers preflight requests itself and decorates other
// responses with the allow-origin headers.
func CORSWithConfig[C handler.Context](cfg CORSConfig) handler.Middleware[C] {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet, http.MethodHead, http.MethodPut,
			http.MethodPatch, http.MethodPost, http.MethodDelete,
		}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept", "Accept-Language", "Content-Language", "Content-Type",
			"Origin", "Authorization", "X-Request-ID",
		}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")
	wildcard := len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*")

	resolve := func(origin string) (string, bool) {
		switch {
		case cfg.AllowOriginFunc != nil:
			return cfg.AllowOriginFunc(origin)
		case wildcard:
			return "*", true
		case origin != "" && slices.Contains(cfg.AllowOrigins, origin):
			return origin, true
		}
		return "", false
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			allowedOrigin, allowed := resolve(req.Header.Get("Origin"))

			requestMethod := req.Header.Get("Access-Control-Request-Method")
			if req.Method == http.MethodOptions && requestMethod != "" {
				if !allowed || !slices.Contains(cfg.AllowMethods, requestMethod) {
					return func(w http.ResponseWriter, r *http.Request) error {
						w.WriteHeader(http.StatusForbidden)
						return nil
					}
				}

				return func(w http.ResponseWriter, r *http.Request) error {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", allowedOrigin)
					h.Set("Access-Control-Allow-Methods", allowMethods)
					if req.Header.Get("Access-Control-Request-Headers") != "" {
						h.Set("Access-Control-Allow-Headers", allowHeaders)
					}
					if cfg.AllowCredentials && allowedOrigin != "*" {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
					if cfg.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
					h.Add("Vary", "Origin")
					h.Add("Vary", "Access-Control-Request-Method")
					h.Add("Vary", "Access-Control-Request-Headers")
					w.WriteHeader(http.StatusNoContent)
					return nil
				}
			}

			if allowed {
				// Headers go on before next so error responses are readable cross-origin.
				h := ctx.ResponseWriter().Header()
				h.Set("Access-Control-Allow-Origin", allowedOrigin)
				if cfg.AllowCredentials && allowedOrigin != "*" {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if exposeHeaders != "" {
					h.Set("Access-Control-Expose-Headers", exposeHeaders)
				}
				h.Add("Vary", "Origin")
			}

			return next(ctx)
		}
	}
}
