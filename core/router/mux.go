package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/dmitrymomot/typetrack/core/handler"
)

var knownMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
	http.MethodConnect, http.MethodTrace,
}

// registry is shared by a router and every router derived from it.
type registry[C handler.Context] struct {
	sm           *http.ServeMux
	paths        map[string]*pathEntry[C]
	routes       []Route
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
}

// pathEntry holds the per-method endpoints of one ServeMux pattern.
type pathEntry[C handler.Context] struct {
	params    []string
	endpoints map[string]endpoint[C]
	first     *mux[C]
}

type endpoint[C handler.Context] struct {
	owner *mux[C]
	fn    handler.HandlerFunc[C]
}

// mux is the private implementation of Router.
type mux[C handler.Context] struct {
	root        *registry[C]
	parent      *mux[C]
	prefix      string
	middlewares []handler.Middleware[C]
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		root: &registry[C]{
			sm:           http.NewServeMux(),
			paths:        make(map[string]*pathEntry[C]),
			errorHandler: defaultErrorHandler[C],
			logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.root.newContext == nil {
		m.root.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)

	if _, pattern := m.root.sm.Handler(r); pattern == "" {
		m.root.errorHandler(m.root.newContext(ww, r, nil), ErrNotFound)
		return
	}

	m.root.sm.ServeHTTP(ww, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodOptions, pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}
	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !slices.Contains(knownMethods, method) {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		m.handle(method, pattern, h)
	}
}

// Use appends middleware to the router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates an inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		root:        m.root,
		parent:      m,
		prefix:      m.prefix,
		middlewares: middlewares,
	}
}

// Group creates an inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Route creates a sub-router whose patterns are relative to pattern.
func (m *mux[C]) Route(pattern string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, pattern))
	}
	validatePattern(pattern)

	sub := &mux[C]{
		root:   m.root,
		parent: m,
		prefix: joinPath(m.prefix, pattern),
	}
	fn(sub)
	return sub
}

// Routes returns all registered routes in registration order.
func (m *mux[C]) Routes() []Route {
	return slices.Clone(m.root.routes)
}

func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	validatePattern(pattern)

	full := joinPath(m.prefix, pattern)
	entry, ok := m.root.paths[full]
	if !ok {
		entry = &pathEntry[C]{
			params:    patternParams(full),
			endpoints: make(map[string]endpoint[C]),
			first:     m,
		}
		m.root.paths[full] = entry

		smPattern := full
		if strings.HasSuffix(smPattern, "/") {
			smPattern += "{$}"
		}
		m.root.sm.HandleFunc(smPattern, func(w http.ResponseWriter, r *http.Request) {
			m.root.dispatch(w, r, entry)
		})
	}

	if _, dup := entry.endpoints[method]; dup {
		panic(fmt.Errorf("%w: duplicate route %s %s", ErrInvalidPattern, method, full))
	}
	entry.endpoints[method] = endpoint[C]{owner: m, fn: fn}
	m.root.routes = append(m.root.routes, Route{Method: method, Pattern: full})
}

// stack returns the middleware chain of m, outermost first.
func (m *mux[C]) stack() []handler.Middleware[C] {
	var chains [][]handler.Middleware[C]
	for curr := m; curr != nil; curr = curr.parent {
		if len(curr.middlewares) > 0 {
			chains = append(chains, curr.middlewares)
		}
	}
	var all []handler.Middleware[C]
	for i := len(chains) - 1; i >= 0; i-- {
		all = append(all, chains[i]...)
	}
	return all
}

func (reg *registry[C]) dispatch(w http.ResponseWriter, r *http.Request, entry *pathEntry[C]) {
	ww, ok := w.(*responseWriter)
	if !ok {
		ww = newResponseWriter(w)
	}

	var params map[string]string
	if len(entry.params) > 0 {
		params = make(map[string]string, len(entry.params))
		for _, key := range entry.params {
			params[key] = r.PathValue(key)
		}
	}

	ctx := reg.newContext(ww, r, params)

	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				reg.logger.Error("panic after response written",
					"value", panicErr.value,
					"stack", string(panicErr.stack),
					"path", r.URL.Path,
					"method", r.Method,
					"status", ww.Status(),
				)
				return
			}
			reg.errorHandler(ctx, panicErr)
		}
	}()

	ep, ok := entry.endpoints[r.Method]
	if !ok && r.Method == http.MethodHead {
		ep, ok = entry.endpoints[http.MethodGet]
	}
	if !ok && r.Method == http.MethodOptions {
		// Implicit OPTIONS runs the middleware of the first registered route,
		// so CORS preflight is answered by the CORS middleware.
		allow := entry.allow()
		ep, ok = endpoint[C]{owner: entry.first, fn: func(C) handler.Response {
			return func(w http.ResponseWriter, _ *http.Request) error {
				w.Header().Set("Allow", allow)
				w.WriteHeader(http.StatusNoContent)
				return nil
			}
		}}, true
	}
	if !ok {
		ww.Header().Set("Allow", entry.allow())
		reg.errorHandler(ctx, ErrMethodNotAllowed)
		return
	}

	fn := chain(ep.owner.stack(), ep.fn)

	resp := fn(ctx)
	if resp == nil {
		reg.errorHandler(ctx, ErrNilResponse)
		return
	}

	if err := resp(ww, ctx.Request()); err != nil {
		reg.errorHandler(ctx, err)
	}
}

func (e *pathEntry[C]) allow() string {
	allowed := make([]string, 0, len(e.endpoints)+1)
	for method := range e.endpoints {
		allowed = append(allowed, method)
	}
	if _, ok := e.endpoints[http.MethodOptions]; !ok {
		allowed = append(allowed, http.MethodOptions)
	}
	slices.Sort(allowed)
	return strings.Join(allowed, ", ")
}

// chain wraps endpoint with middlewares so that middlewares[0] runs first.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func validatePattern(pattern string) {
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}
}

func joinPath(prefix, pattern string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return pattern
	}
	if pattern == "/" {
		return prefix
	}
	return prefix + pattern
}

// patternParams lists wildcard names of a ServeMux pattern.
func patternParams(pattern string) []string {
	var params []string
	for _, seg := range strings.Split(pattern, "/") {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := strings.TrimSuffix(seg[1:len(seg)-1], "...")
		if name == "$" || name == "" {
			continue
		}
		params = append(params, name)
	}
	return params
}
