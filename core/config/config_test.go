package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/typetrack/core/config"
)

type sampleConfig struct {
	Name       string        `env:"CFGTEST_NAME" envDefault:"typetrack"`
	StaleAfter time.Duration `env:"CFGTEST_STALE" envDefault:"300s"`
	Days       int           `env:"CFGTEST_DAYS" envDefault:"30"`
}

type requiredConfig struct {
	Key string `env:"CFGTEST_REQUIRED_KEY,required"`
}

// Not parallel: these tests mutate the process environment.
func TestLoad(t *testing.T) {
	t.Run("defaults_and_overrides", func(t *testing.T) {
		config.Reset()
		t.Setenv("CFGTEST_DAYS", "7")

		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "typetrack", cfg.Name)
		assert.Equal(t, 300*time.Second, cfg.StaleAfter)
		assert.Equal(t, 7, cfg.Days)
	})

	t.Run("cached_per_type", func(t *testing.T) {
		config.Reset()
		t.Setenv("CFGTEST_NAME", "first")

		var first sampleConfig
		require.NoError(t, config.Load(&first))

		t.Setenv("CFGTEST_NAME", "second")
		var second sampleConfig
		require.NoError(t, config.Load(&second))

		assert.Equal(t, "first", second.Name)
	})

	t.Run("required_missing", func(t *testing.T) {
		config.Reset()

		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsing)
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
