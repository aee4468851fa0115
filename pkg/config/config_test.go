package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "teacher_archive.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "WAL", cfg.Database.JournalMode)
	assert.Equal(t, ".", cfg.Artifacts.Root)
	assert.Equal(t, int64(20*1024*1024), cfg.Artifacts.MaxFileSizeBytes)
	assert.Equal(t, 150, cfg.Artifacts.PreviewWidth)
	assert.Equal(t, 200, cfg.Artifacts.PreviewHeight)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestFromViperFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DB_BUSY_TIMEOUT", "soon")
	v.Set("ARTIFACT_MAX_FILE_SIZE", -1)
	v.Set("PREVIEW_WIDTH", 0)
	v.Set("DB_JOURNAL_MODE", "delete")

	cfg := fromViper(v)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, int64(20*1024*1024), cfg.Artifacts.MaxFileSizeBytes)
	assert.Equal(t, 150, cfg.Artifacts.PreviewWidth)
	assert.Equal(t, "DELETE", cfg.Database.JournalMode)
}
