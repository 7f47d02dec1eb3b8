// Package config loads typed configuration from environment variables.
//
// A .env file in the working directory is loaded once on first use (values
// already present in the environment win), then caarlos0/env parses variables
// into struct fields using `env` and `envDefault` tags. Each configuration
// type is parsed once and cached; later calls copy the cached value.
//
//	type Config struct {
//		JWTSigningKey string        `env:"JWT_SIGNING_KEY,required"`
//		StaleAfter    time.Duration `env:"SESSION_STALE_THRESHOLD" envDefault:"300s"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
