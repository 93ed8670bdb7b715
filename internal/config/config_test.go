package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "testdata-does-not-exist.env")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "http://localhost:3000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.Origins())
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("ENV_FILE", "testdata-does-not-exist.env")
	t.Setenv("STORE_DRIVER", DriverSQLite)
	t.Setenv("FRONTEND_URL", "https://brain.example.com/")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "https://brain.example.com", cfg.FrontendURL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBSSLMode:   sslModeDisable,
			StoreDriver: DriverMongo,
			JWTSecret:   defaultJWTSecret,
			Env:         EnvDevelopment,
		}
	}

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, validate(base()))
	})

	t.Run("bad ssl mode", func(t *testing.T) {
		cfg := base()
		cfg.DBSSLMode = "maybe"
		assert.Error(t, validate(cfg))
	})

	t.Run("bad driver", func(t *testing.T) {
		cfg := base()
		cfg.StoreDriver = "redis"
		assert.Error(t, validate(cfg))
	})

	t.Run("default secret in production", func(t *testing.T) {
		cfg := base()
		cfg.Env = EnvProduction
		assert.Error(t, validate(cfg))
	})

	t.Run("short secret in production", func(t *testing.T) {
		cfg := base()
		cfg.Env = EnvProduction
		cfg.JWTSecret = "short"
		assert.Error(t, validate(cfg))
	})

	t.Run("strong secret in production", func(t *testing.T) {
		cfg := base()
		cfg.Env = EnvProduction
		cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
		assert.NoError(t, validate(cfg))
	})
}
