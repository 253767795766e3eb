package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "2.13.1", cfg.Target.WAPIVersion)
	assert.Equal(t, "default", cfg.Target.NetworkView)
	assert.Equal(t, 10, cfg.Target.RatePerSecond)
	assert.Equal(t, 3, cfg.Target.MaxAttempts)
	assert.Equal(t, 10, cfg.Target.BatchSize)
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, 16, cfg.Jobs.QueueDepth)
	assert.Equal(t, 100, cfg.Sync.ItemPauseMillis)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.False(t, cfg.Target.IsConfigured())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TARGET_HOST", "https://infoblox.example.com")
	t.Setenv("TARGET_USERNAME", "admin")
	t.Setenv("TARGET_RATE_PER_SECOND", "5")
	t.Setenv("JOBS_WORKERS", "2")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://infoblox.example.com", cfg.Target.Host)
	assert.Equal(t, "admin", cfg.Target.Username)
	assert.Equal(t, 5, cfg.Target.RatePerSecond)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.True(t, cfg.Target.IsConfigured())
}
