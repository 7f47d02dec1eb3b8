package binder

import "net/http"

// Binder binds HTTP request data to v, which must be a non-nil pointer.
type Binder func(r *http.Request, v any) error
