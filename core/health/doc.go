// Package health provides probe handlers.
//
//	r.Get("/live", health.Liveness[*api.Context])
//	r.Get("/ready", health.Readiness[*api.Context](log, pg.Healthcheck(pool), redis.Healthcheck(rdb)))
//	r.Get("/health", health.Status[*api.Context])
//
// Liveness never checks dependencies. Readiness runs every check with a
// deadline and answers 503 when any of them fails.
package health
