package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/response"
	"github.com/dmitrymomot/typetrack/internal/users"
	"github.com/dmitrymomot/typetrack/middleware"
)

type userContextKey struct{}

var (
	errUserNotFound = response.NewHTTPError(http.StatusNotFound, "user_not_found").
			WithMessage("User not found").
			WithDetails(map[string]any{"hint": "Please authenticate first"})
	errInvalidClaims = response.ErrUnauthorized.WithMessage("token carries no user id")
)

// Identity resolves the user.id claim stored by the JWT middleware to a
// registered user.
func Identity[C handler.Context](repo users.Repository) handler.Middleware[C] {
	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			claims, ok := middleware.GetJWTClaims[*Claims](ctx)
			if !ok || claims.User.ID == 0 {
				return response.Error(errInvalidClaims)
			}

			u, err := repo.GetByGitHubID(ctx, claims.User.ID)
			if errors.Is(err, users.ErrNotFound) {
				return response.Error(errUserNotFound)
			}
			if err != nil {
				return response.Error(err)
			}

			ctx.SetValue(userContextKey{}, u)
			return next(ctx)
		}
	}
}

// UserFromContext returns the user resolved by Identity.
func UserFromContext(ctx context.Context) (users.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(users.User)
	return u, ok
}
