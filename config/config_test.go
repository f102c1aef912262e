package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"HRMS_API_URL", "HRMS_USERNAME", "HRMS_PASSWORD", "CONSOLE_ADDR", "HTTP_TIMEOUT_SECONDS", "TELEGRAM_BOT_TOKEN", "AUTHORIZED_CHAT_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.TelegramBotToken)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HRMS_API_URL", "http://hrms.internal:9000/")
	t.Setenv("CONSOLE_ADDR", "127.0.0.1:9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("AUTHORIZED_CHAT_ID", "12345")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://hrms.internal:9000", cfg.APIURL)
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "12345", cfg.AuthorizedChatID)
}

func TestLoadConfigInvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadDevBackendConfig(t *testing.T) {
	t.Setenv("DEV_JWT_SECRET", "")
	_, err := LoadDevBackendConfig()
	assert.Error(t, err)

	t.Setenv("DEV_JWT_SECRET", "s3cret")
	t.Setenv("DEV_ADMIN_USERNAME", "")
	t.Setenv("DEV_ADMIN_PASSWORD", "")
	cfg, err := LoadDevBackendConfig()
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}
