package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-at-least-32-chars!!")
	t.Setenv("ADMIN_PASS", "Sup3rSecret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "./eventreg.db", cfg.DBPath)
	assert.True(t, cfg.AdminEnabled)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, "discord", cfg.WebhookFormat)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Empty(t, cfg.SMTPHost)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "8081")
	t.Setenv("RATE_LIMIT_PER_MIN", "5")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("WEBHOOK_FORMAT", "slack")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 5, cfg.RateLimitPerMin)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "slack", cfg.WebhookFormat)
	assert.Equal(t, "mail.example.com", cfg.SMTPHost)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_EXPIRY_HOURS", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.JWTExpiryHours)
}

func TestLoad_AdminRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_PASS", "whatever123")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_AdminDisabledSkipsSecrets(t *testing.T) {
	t.Setenv("ADMIN_ENABLED", "false")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_PASS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.AdminEnabled)
}

func TestLoad_RejectsUnknownWebhookFormat(t *testing.T) {
	setRequired(t)
	t.Setenv("WEBHOOK_FORMAT", "teams")

	_, err := Load()
	require.Error(t, err)
}
