package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/core/router"
)

type ctx = *router.Context

func newRouter(mws ...handler.Middleware[ctx]) router.Router[ctx] {
	r := router.New[ctx](router.WithErrorHandler(response.JSONErrorHandler[ctx]))
	r.Use(mws...)
	return r
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
