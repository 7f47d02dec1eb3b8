// Package handler defines the request-processing contract shared by the
// router, middleware and application handlers: a typed request context,
// handlers that return a deferred Response, and middleware over them.
package handler

import "net/http"

// Response renders an HTTP response. Handlers return it instead of writing
// directly, so middleware can wrap rendering (headers, logging, timing).
// A non-nil error is passed to the router's error handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is a request handler bound to a concrete context type.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler renders errors returned by a Response.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps a handler.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
