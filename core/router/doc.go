// Package router provides a generic HTTP router on top of net/http.ServeMux
// pattern matching. Handlers receive an application-defined context type and
// return a handler.Response; errors flow to a single error handler.
//
// # Basic Usage
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
//	)
//
//	r.Use(middleware.RequestID[*router.Context]())
//
//	r.Route("/api/activity", func(r router.Router[*router.Context]) {
//		r.Post("/start", startHandler)
//		r.Get("/session/{id}", getSessionHandler)
//	})
//
//	http.ListenAndServe(":8080", r)
//
// Path parameters use ServeMux syntax ({name}, {name...}) and are available
// through ctx.Param. A pattern of "/" matches only the root path.
//
// # Middleware
//
// Middleware registered with Use applies to every route of that router and
// of routers derived from it with With, Group or Route. Middleware is resolved
// when a request is served, so Use may be called before or after routes.
//
// # Errors
//
// Unmatched paths produce ErrNotFound and known paths with an unregistered
// method produce ErrMethodNotAllowed (with an Allow header). OPTIONS on a
// known path without an explicit OPTIONS route answers 204 with Allow, after
// the route's middleware has had a chance to respond. Not found, method not
// allowed, along with
// recovered panics (PanicError) and errors returned from responses, are passed
// to the error handler.
package router
