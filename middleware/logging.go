package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/logger"
)

// LoggingConfig configures request logging.
type LoggingConfig struct {
	Skip func(ctx handler.Context) bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// LogLevel for successful requests (default: info).
	LogLevel slog.Level
	// SlowRequestThreshold raises successful requests to warn (default: 5s).
	SlowRequestThreshold time.Duration
	// Component defaults to "http".
	Component string
}

// Logging logs one record per request with the default logger.
func Logging[C handler.Context]() handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{})
}

// LoggingWithLogger logs one record per request with log.
func LoggingWithLogger[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{Logger: log})
}

// LoggingWithConfig logs method, path, status, size and latency after the
// response is written. 5xx log at error and 4xx at warn.
//
// When the response returns an error the router's error handler writes the
// body afterwards, so the status is taken from the error (StatusCode method,
// else 500).
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			resp := next(ctx)
			if resp == nil {
				return nil
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				rw := &statusRecorder{ResponseWriter: w}
				err := resp(rw, r)
				duration := time.Since(start)

				status := rw.status
				switch {
				case err != nil && !rw.wroteHeader:
					status = errorStatus(err)
				case !rw.wroteHeader:
					status = http.StatusOK
				}

				level := cfg.LogLevel
				attrs := []slog.Attr{
					logger.Component(cfg.Component),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(status),
					slog.Int64("bytes_out", rw.size),
					logger.Latency(duration),
					logger.ClientIP(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
				}
				switch {
				case status >= http.StatusInternalServerError:
					level = slog.LevelError
					attrs = append(attrs, logger.Error(err))
				case status >= http.StatusBadRequest:
					level = slog.LevelWarn
				case duration > cfg.SlowRequestThreshold:
					level = slog.LevelWarn
					attrs = append(attrs, slog.Bool("slow_request", true))
				}

				cfg.Logger.LogAttrs(r.Context(), level, "http request", attrs...)
				return err
			}
		}
	}
}

func errorStatus(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	size        int64
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(status int) {
	if !rw.wroteHeader {
		rw.status = status
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
