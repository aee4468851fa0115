package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Database  DatabaseConfig
	Artifacts ArtifactsConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

// DatabaseConfig points at the embedded archive database file.
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
	JournalMode string
}

// ArtifactsConfig controls where photos and scans are stored.
type ArtifactsConfig struct {
	Root             string
	MaxFileSizeBytes int64
	PreviewWidth     int
	PreviewHeight    int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles in-process operation metrics.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Database = DatabaseConfig{
		Path:        v.GetString("DB_PATH"),
		BusyTimeout: parseDuration(v.GetString("DB_BUSY_TIMEOUT"), 5*time.Second),
		JournalMode: strings.ToUpper(v.GetString("DB_JOURNAL_MODE")),
	}

	maxSize := v.GetInt64("ARTIFACT_MAX_FILE_SIZE")
	if maxSize <= 0 {
		maxSize = 20 * 1024 * 1024
	}
	cfg.Artifacts = ArtifactsConfig{
		Root:             v.GetString("ARTIFACT_ROOT"),
		MaxFileSizeBytes: maxSize,
		PreviewWidth:     positiveOr(v.GetInt("PREVIEW_WIDTH"), 150),
		PreviewHeight:    positiveOr(v.GetInt("PREVIEW_HEIGHT"), 200),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_PATH", "teacher_archive.db")
	v.SetDefault("DB_BUSY_TIMEOUT", "5s")
	v.SetDefault("DB_JOURNAL_MODE", "WAL")

	v.SetDefault("ARTIFACT_ROOT", ".")
	v.SetDefault("ARTIFACT_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("PREVIEW_WIDTH", 150)
	v.SetDefault("PREVIEW_HEIGHT", 200)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("ENABLE_METRICS", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
