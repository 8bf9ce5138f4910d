package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Minute, cfg.UploadTokenTTL)
	assert.False(t, cfg.SecureCookies)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MS_LISTEN_ADDR", ":9000")
	t.Setenv("MS_SESSION_TTL", "24h")
	t.Setenv("MS_SECURE_COOKIES", "true")
	t.Setenv("MS_STRIPE_PRICE_ID", "price_abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, "price_abc", cfg.StripePriceID)
}
