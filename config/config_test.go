package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Defaults(t *testing.T) {
	cfg, err := ParseEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address)
	assert.Equal(t, "assets", cfg.AssetRoot)
	assert.Equal(t, 160, cfg.Size)
	assert.Equal(t, 30*time.Second, cfg.LoadTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Flash)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.TLS())
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("AVATARMIX_SIZE", "320")
	t.Setenv("AVATARMIX_ASSETS", "/srv/assets")
	t.Setenv("AVATARMIX_CERT", "a.crt")
	t.Setenv("AVATARMIX_KEY", "a.key")

	cfg, err := ParseEnv()
	require.NoError(t, err)

	assert.Equal(t, 320, cfg.Size)
	assert.Equal(t, "/srv/assets", cfg.AssetRoot)
	assert.True(t, cfg.TLS())
}

func TestParseEnv_Invalid(t *testing.T) {
	t.Setenv("AVATARMIX_SIZE", "0")
	_, err := ParseEnv()
	assert.Error(t, err)

	t.Setenv("AVATARMIX_SIZE", "big")
	_, err = ParseEnv()
	assert.Error(t, err)
}
