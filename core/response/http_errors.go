package response

import "net/http"

// HTTPError represents a structured error response that implements the error interface.
type HTTPError struct {
	Status  int            `json:"-"`                 // HTTP status code (not in JSON)
	Code    string         `json:"code"`              // Machine-readable error code
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Optional context
}

// NewHTTPError creates an error with the given status and machine-readable code.
// The message defaults to the status text.
func NewHTTPError(status int, code string) HTTPError {
	return HTTPError{
		Status:  status,
		Code:    code,
		Message: http.StatusText(status),
	}
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	e.Details = merged
	return e
}

// WithError returns a copy of the error with the cause stored under "cause".
func (e HTTPError) WithError(err error) HTTPError {
	if err == nil {
		return e
	}
	return e.WithDetails(map[string]any{"cause": err.Error()})
}

var (
	// 4xx Client Errors
	ErrBadRequest           = NewHTTPError(http.StatusBadRequest, "bad_request")
	ErrUnauthorized         = NewHTTPError(http.StatusUnauthorized, "unauthorized")
	ErrForbidden            = NewHTTPError(http.StatusForbidden, "forbidden")
	ErrNotFound             = NewHTTPError(http.StatusNotFound, "not_found")
	ErrMethodNotAllowed     = NewHTTPError(http.StatusMethodNotAllowed, "method_not_allowed")
	ErrConflict             = NewHTTPError(http.StatusConflict, "conflict")
	ErrUnsupportedMediaType = NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type")
	ErrUnprocessableEntity  = NewHTTPError(http.StatusUnprocessableEntity, "unprocessable_entity")
	ErrTooManyRequests      = NewHTTPError(http.StatusTooManyRequests, "too_many_requests")

	// 5xx Server Errors
	ErrInternalServerError = NewHTTPError(http.StatusInternalServerError, "internal_server_error")
	ErrServiceUnavailable  = NewHTTPError(http.StatusServiceUnavailable, "service_unavailable")
)

// httpErrorsByStatus maps HTTP status codes to their corresponding HTTPError values.
var httpErrorsByStatus = map[int]HTTPError{
	http.StatusBadRequest:           ErrBadRequest,
	http.StatusUnauthorized:         ErrUnauthorized,
	http.StatusForbidden:            ErrForbidden,
	http.StatusNotFound:             ErrNotFound,
	http.StatusMethodNotAllowed:     ErrMethodNotAllowed,
	http.StatusConflict:             ErrConflict,
	http.StatusUnsupportedMediaType: ErrUnsupportedMediaType,
	http.StatusUnprocessableEntity:  ErrUnprocessableEntity,
	http.StatusTooManyRequests:      ErrTooManyRequests,
	http.StatusInternalServerError:  ErrInternalServerError,
	http.StatusServiceUnavailable:   ErrServiceUnavailable,
}
