package binder

import "errors"

var (
	// ErrUnsupportedMediaType is returned when Content-Type is not application/json.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFailedToParseJSON is returned for malformed or oversized JSON bodies.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrFailedToParseQuery is returned when a query value cannot be converted.
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")

	// ErrMissingContentType is returned when a body is sent without Content-Type.
	ErrMissingContentType = errors.New("missing content type")
)
