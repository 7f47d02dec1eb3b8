package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/logger"
	"github.com/dmitrymomot/typetrack/core/response"
)

// CheckTimeout bounds a single dependency check.
const CheckTimeout = 3 * time.Second

// Readiness answers "READY" when every check passes and 503 otherwise.
func Readiness[C handler.Context](log *slog.Logger, checks ...func(context.Context) error) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		for i, check := range checks {
			checkCtx, cancel := context.WithTimeout(ctx, CheckTimeout)
			err := check(checkCtx)
			cancel()
			if err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					slog.Int("check", i),
					logger.Error(err),
				)
				return response.Error(response.ErrServiceUnavailable)
			}
		}

		return response.String("READY")
	}
}
