// Package binder maps HTTP request data onto Go structs.
//
// JSON decodes the request body; Query fills fields from the URL query using
// `query:"name"` tags. Both return errors wrapping the sentinels in errors.go so
// callers can map them to 400/415 responses:
//
//	var req startRequest
//	if err := binder.JSON(binder.AllowEmptyBody())(r, &req); err != nil {
//		return response.Error(response.ErrBadRequest.WithError(err))
//	}
//
// String values are stripped of NUL bytes, CR/LF and other control characters.
package binder
