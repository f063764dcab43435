package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "smartcollab.db", cfg.DatabaseURL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadRequiresSecretOutsideLocal(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("APP_ENV", "PROD")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDurationFallback(t *testing.T) {
	t.Setenv("SOME_TTL", "soon")
	assert.Equal(t, time.Minute, GetDuration("SOME_TTL", time.Minute))
}
