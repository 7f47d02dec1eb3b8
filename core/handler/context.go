package handler

import (
	"context"
	"net/http"
)

// Context is the request context passed to handlers. It embeds
// context.Context so it can be handed straight to stores and services.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}
