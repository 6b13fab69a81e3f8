package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(5*1024*1024), cfg.App.MaxUploadSize)
	assert.ElementsMatch(t, []string{".jpg", ".jpeg", ".png", ".gif"}, cfg.App.AllowedFormats)
	assert.Positive(t, cfg.Mongo.RetryDelay)
	assert.Positive(t, cfg.WordPress.Timeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("MONGO_DATABASE", "override")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "override", cfg.Mongo.Database)
}
