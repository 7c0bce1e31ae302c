package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_LOCK_TIMEOUT", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, int64(20<<20), cfg.Media.MaxUploadBytes)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geo.BaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_LOCK_TIMEOUT", "2s")
	t.Setenv("MEDIA_BACKEND", "s3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 2*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, "s3", cfg.Media.Backend)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("GEOCODER_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "GEOCODER_TIMEOUT")
}
