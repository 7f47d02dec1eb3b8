// Package response builds handler.Response values: JSON and plain-text bodies,
// empty status responses, and structured HTTP errors.
//
// Handlers return errors through Error, and the router's error handler
// (usually JSONErrorHandler) turns them into a response:
//
//	func getSession(ctx *api.Context) handler.Response {
//		sess, err := svc.Get(ctx, ctx.OwnerID(), id)
//		if errors.Is(err, activity.ErrNotFound) {
//			return response.Error(response.ErrNotFound.WithMessage("Session not found"))
//		}
//		return response.JSON(sess)
//	}
//
// Errors that are not HTTPError values are mapped by their StatusCode() method
// when they implement one, and to 500 otherwise.
package response
