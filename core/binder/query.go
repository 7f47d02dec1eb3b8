package binder

import "net/http"

// Query creates a query parameter binder.
//
// Field names come from `query:"name"` tags; `query:"-"` skips a field and
// untagged fields use the lowercased field name. Supported kinds are strings,
// integers, floats, bools, slices of those (repeated or comma separated) and
// pointers for optional values.
//
//	type listRequest struct {
//		Limit      *int `query:"limit"`
//		Offset     int  `query:"offset"`
//		ActiveOnly bool `query:"active_only"`
//	}
func Query() Binder {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
