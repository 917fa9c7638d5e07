package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultMediaDir, cfg.Storage.MediaDir)
	assert.Equal(t, filepath.Join(os.TempDir(), DefaultScratchDirName), cfg.Storage.ScratchDir)
	assert.Equal(t, 4, cfg.Import.CopyWorkers)
	assert.Equal(t, DefaultMaxExtractedBytes, cfg.Import.MaxExtractedBytes)
	assert.Equal(t, DefaultMaxUploadBytes, cfg.Import.MaxUploadBytes)
	assert.Equal(t, 6*time.Hour, cfg.Maintenance.ScratchRetention)
	assert.Equal(t, DefaultTasksDatabasePath, cfg.Tasks.DBPath)
	assert.Equal(t, 90*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.Empty(t, cfg.Inbox.Dir)

	require.NoError(t, cfg.Validate())
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MEDIA_DIR", "/var/lib/companion/media")
	t.Setenv("IMPORT_COPY_WORKERS", "8")
	t.Setenv("SCRATCH_RETENTION", "90m")
	t.Setenv("INBOX_DIR", "/srv/inbox")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "/var/lib/companion/media", cfg.Storage.MediaDir)
	assert.Equal(t, 8, cfg.Import.CopyWorkers)
	assert.Equal(t, 90*time.Minute, cfg.Maintenance.ScratchRetention)
	assert.Equal(t, "/srv/inbox", cfg.Inbox.Dir)
	require.NoError(t, cfg.Validate())
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Import.CopyWorkers = 0 }},
		{"bad schedule", func(c *Config) { c.Maintenance.Schedule = "every day" }},
		{"no media dir", func(c *Config) { c.Storage.MediaDir = "" }},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }},
		{"tiny extraction cap", func(c *Config) { c.Import.MaxExtractedBytes = 10 }},
		{"tasks without a database", func(c *Config) { c.Tasks.DBPath = "" }},
		{"short scratch retention", func(c *Config) { c.Maintenance.ScratchRetention = 10 * time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
