package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/typetrack/core/handler"
)

// routeError is a routing failure that carries its HTTP status.
type routeError struct {
	status int
	msg    string
}

func (e routeError) Error() string   { return e.msg }
func (e routeError) StatusCode() int { return e.status }

var (
	ErrNotFound         error = routeError{http.StatusNotFound, "not found"}
	ErrMethodNotAllowed error = routeError{http.StatusMethodNotAllowed, "method not allowed"}

	ErrNoContextFactory = errors.New("no context factory provided")
	ErrNilResponse      = errors.New("nil response")
	ErrInvalidMethod    = errors.New("invalid http method")
	ErrInvalidPattern   = errors.New("invalid route path pattern")
	ErrNilSubrouter     = errors.New("nil subrouter")
)

// statusCode is implemented by errors that choose their HTTP status.
type statusCode interface {
	StatusCode() int
}

// defaultErrorHandler writes err as plain text.
func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()
	if ww, ok := w.(*responseWriter); ok && ww.Written() {
		return
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	http.Error(w, err.Error(), status)
}

// PanicError is passed to the error handler when a handler panics.
type PanicError interface {
	error
	Value() any
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }
func (e *panicError) Value() any    { return e.value }
func (e *panicError) Stack() []byte { return e.stack }

// Unwrap allows errors.Is/As to see an error value passed to panic.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
