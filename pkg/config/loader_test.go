package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiosix/photostudio/pkg/config"
)

type defaultsConfig struct {
	BaseURL string `env:"TEST_BASE_URL" envDefault:"http://localhost:8080"`
	Port    int    `env:"TEST_PORT" envDefault:"8080"`
	Debug   bool   `env:"TEST_DEBUG" envDefault:"false"`
}

type envConfig struct {
	Value string `env:"TEST_ENV_VALUE" envDefault:"fallback"`
}

type cachedConfig struct {
	Value string `env:"TEST_CACHED_VALUE" envDefault:"initial"`
}

type requiredConfig struct {
	Secret string `env:"TEST_REQUIRED_SECRET_MISSING,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply when env is unset", func(t *testing.T) {
		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
		assert.Equal(t, 8080, cfg.Port)
		assert.False(t, cfg.Debug)
	})

	t.Run("reads values from the environment", func(t *testing.T) {
		t.Setenv("TEST_ENV_VALUE", "from-env")
		var cfg envConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from-env", cfg.Value)
	})

	t.Run("same type is parsed once and cached", func(t *testing.T) {
		t.Setenv("TEST_CACHED_VALUE", "first")
		var first cachedConfig
		require.NoError(t, config.Load(&first))
		require.Equal(t, "first", first.Value)

		// A later env change is invisible: the cached copy wins.
		t.Setenv("TEST_CACHED_VALUE", "second")
		var second cachedConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "first", second.Value)
	})

	t.Run("missing required variable errors", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[defaultsConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
