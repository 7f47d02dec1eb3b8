package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/typetrack/core/binder"
	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/internal/activity"
)

var (
	errSessionAlreadyEnded = response.NewHTTPError(http.StatusBadRequest, "session_already_ended").
				WithMessage("Session already ended").
				WithDetails(map[string]any{"hint": "This session has already been completed"})
	errSessionConflict = response.ErrConflict.
				WithMessage("Another request changed this session, retry")
	errInvalidSessionID = response.ErrBadRequest.WithMessage("Invalid session id")
)

// notFound builds the 404 for a lookup that matched nothing.
func notFound(message, hint string) response.HTTPError {
	err := response.NewHTTPError(http.StatusNotFound, "session_not_found").WithMessage(message)
	if hint != "" {
		err = err.WithDetails(map[string]any{"hint": hint})
	}
	return err
}

// fail maps domain and binding errors to HTTP errors. Unknown errors pass
// through unchanged so the logging middleware sees the cause while the
// client gets a generic 500.
func fail(err error, notFoundErr response.HTTPError) handler.Response {
	switch {
	case errors.Is(err, activity.ErrNotFound):
		return response.Error(notFoundErr)
	case errors.Is(err, activity.ErrAlreadyEnded):
		return response.Error(errSessionAlreadyEnded)
	case errors.Is(err, activity.ErrConflict):
		return response.Error(errSessionConflict)
	case errors.Is(err, activity.ErrInvalidInput):
		return response.Error(response.ErrBadRequest.WithMessage(message(err)))
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return response.Error(response.ErrUnsupportedMediaType.WithMessage(message(err)))
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParseQuery):
		return response.Error(response.ErrBadRequest.WithMessage(message(err)))
	}
	return response.Error(err)
}

// message flattens joined errors into one line.
func message(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}
