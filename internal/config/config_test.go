package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("MAX_WRITE_RETRIES", "")

	cfg := FromEnv()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "mongo", cfg.Storage)
	assert.Equal(t, 10, cfg.MaxWriteRetries)
	assert.Equal(t, 24*time.Hour, cfg.RateLimitWindow)
	assert.False(t, cfg.StrictTransitions)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("RATE_LIMIT_REQUESTS", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("STRICT_TRANSITIONS", "true")
	t.Setenv("MONGO_TIMEOUT", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.RateLimitRequests)
	assert.Equal(t, 90*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.StrictTransitions)
	assert.Equal(t, 10, cfg.MongoTimeout)
}

func TestAuthBypassed_OnlyInDevelopment(t *testing.T) {
	cfg := &Config{Env: "production", BypassAuth: true}
	assert.False(t, cfg.AuthBypassed())

	cfg.Env = "development"
	assert.True(t, cfg.AuthBypassed())
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{Env: "production", LogLevel: "debug"}
	log := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	cfg = &Config{Env: "development", LogLevel: "nonsense"}
	log = cfg.NewLogger()
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	cfg = &Config{Env: "development", LogFormat: "json"}
	assert.IsType(t, &logrus.JSONFormatter{}, cfg.NewLogger().Formatter)
}
