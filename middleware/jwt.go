package middleware

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/pkg/jwt"
)

type jwtClaimsContextKey struct{}

// ErrMissingToken is passed to the error handler when no token was found.
var ErrMissingToken = errors.New("no token provided")

// JWTConfig configures JWT authentication.
type JWTConfig struct {
	Skip    func(ctx handler.Context) bool
	Service *jwt.Service
	// TokenExtractor defaults to JWTFromAuthHeader.
	TokenExtractor func(ctx handler.Context) string
	// ErrorHandler defaults to 401 with the error message.
	ErrorHandler func(ctx handler.Context, err error) handler.Response
	// ClaimsFactory returns a pointer to decode claims into (default: *jwt.StandardClaims).
	ClaimsFactory func() any
}

// JWT authenticates requests with service and stores *jwt.StandardClaims.
func JWT[C handler.Context](service *jwt.Service) handler.Middleware[C] {
	return JWTWithConfig[C](JWTConfig{Service: service})
}

// JWTWithConfig validates bearer tokens and stores the parsed claims in the
// request context for GetJWTClaims. Panics without a service.
func JWTWithConfig[C handler.Context](cfg JWTConfig) handler.Middleware[C] {
	if cfg.Service == nil {
		panic("jwt middleware: service is required")
	}
	if cfg.TokenExtractor == nil {
		cfg.TokenExtractor = JWTFromAuthHeader()
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, err error) handler.Response {
			return response.Error(response.ErrUnauthorized.WithMessage(err.Error()))
		}
	}
	if cfg.ClaimsFactory == nil {
		cfg.ClaimsFactory = func() any { return &jwt.StandardClaims{} }
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			token := cfg.TokenExtractor(ctx)
			if token == "" {
				return cfg.ErrorHandler(ctx, ErrMissingToken)
			}

			claims := cfg.ClaimsFactory()
			if err := cfg.Service.Parse(token, claims); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.SetValue(jwtClaimsContextKey{}, claims)
			return next(ctx)
		}
	}
}

// GetJWTClaims returns the claims stored by the JWT middleware as T.
func GetJWTClaims[T any](ctx handler.Context) (T, bool) {
	claims, ok := ctx.Value(jwtClaimsContextKey{}).(T)
	return claims, ok
}

// JWTFromAuthHeader reads "Authorization: Bearer <token>"; the scheme is case-insensitive.
func JWTFromAuthHeader() func(handler.Context) string {
	return func(ctx handler.Context) string {
		scheme, token, ok := strings.Cut(strings.TrimSpace(ctx.Request().Header.Get("Authorization")), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
}

// JWTFromQuery reads the token from a query parameter.
func JWTFromQuery(name string) func(handler.Context) string {
	return func(ctx handler.Context) string {
		return ctx.Request().URL.Query().Get(name)
	}
}

// JWTFromMultiple returns the first non-empty token of extractors.
func JWTFromMultiple(extractors ...func(handler.Context) string) func(handler.Context) string {
	return func(ctx handler.Context) string {
		for _, extract := range extractors {
			if token := extract(ctx); token != "" {
				return token
			}
		}
		return ""
	}
}
