package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err, "a missing config file is not fatal")

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AI.BaseURL)
	assert.Equal(t, "anthropic/claude-3.5-haiku", cfg.AI.Model)
	assert.Equal(t, cfg.AI.Model, cfg.AI.VisionModel)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL())
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval())
	assert.Equal(t, 10, cfg.Session.MaxTurns)
	assert.Equal(t, 20, cfg.RateLimit.WebPerMinute)
	assert.Equal(t, 30, cfg.RateLimit.TelegramPerMinute)
	assert.False(t, cfg.Runtime.Dev)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: console
server:
  port: 8080
  allowed_origins: ["https://rallycapitalestorica.it"]
session:
  ttl_minutes: 15
  max_turns: 5
`), 0o600))

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"https://rallycapitalestorica.it"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL())
	assert.Equal(t, 5, cfg.Session.MaxTurns)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval(), "unset fields still get defaults")
	assert.True(t, cfg.Runtime.Dev)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
bot:
  token: from-file
`), 0o600))

	t.Setenv("PORT", "9090")
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "hook-secret")
	t.Setenv("SESSION_TTL_MINUTES", "45")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Bot.Token)
	assert.Equal(t, "hook-secret", cfg.Bot.WebhookSecret)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := LoadConfig(path, false)
	assert.Error(t, err)
}
