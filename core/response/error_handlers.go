package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/typetrack/core/handler"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// convertToHTTPError converts any error to an HTTPError.
// Causes of unknown errors are not exposed to the client.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	baseErr, ok := httpErrorsByStatus[status]
	if !ok {
		return ErrInternalServerError
	}
	if status >= http.StatusInternalServerError {
		return baseErr
	}
	return baseErr.WithMessage(err.Error())
}

// ErrorHandler is the default error handler that returns plain text errors.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler returns errors as JSON responses of the form
// {"error": {"code": ..., "message": ..., "details": ...}}.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, JSONWithStatus(errorEnvelope{Error: httpErr}, httpErr.Status))
}

type errorEnvelope struct {
	Error HTTPError `json:"error"`
}
