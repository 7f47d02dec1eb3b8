// Package middleware provides handler.Middleware implementations for the
// generic router: request IDs, request logging, CORS, JWT authentication and
// rate limiting.
//
// Each middleware has a zero-config constructor and an XWithConfig variant
// whose config struct carries a Skip func for per-request opt-out:
//
//	r.Use(
//		middleware.RequestID[*api.Context](),
//		middleware.LoggingWithLogger[*api.Context](log),
//		middleware.CORSWithConfig[*api.Context](middleware.CORSConfig{AllowOrigins: origins}),
//	)
package middleware
