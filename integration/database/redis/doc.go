// Package redis connects go-redis clients with retry and health checking.
//
// Connect validates the redis:// or rediss:// URL, then pings the server with
// exponential backoff bounded by ConnectTimeout before returning the client.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Healthcheck returns a probe suitable for readiness endpoints.
package redis
