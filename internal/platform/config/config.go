package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const DefaultFileName = "demoprep.yaml"

type Config struct {
	DataDir string        `yaml:"data_dir" env:"DEMOPREP_DATA_DIR"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Prep    PrepConfig    `yaml:"prep"`
	Catalog CatalogConfig `yaml:"catalog"`
}

type StorageConfig struct {
	Driver         string  `yaml:"driver"          env:"DEMOPREP_STORAGE_DRIVER"   env-default:"sqlite"`
	RedisURL       string  `yaml:"redis_url"       env:"DEMOPREP_REDIS_URL"        env-default:"redis://localhost:6379/0"`
	RedisNamespace string  `yaml:"redis_namespace" env:"DEMOPREP_REDIS_NAMESPACE"  env-default:"demoprep:"`
	QuotaBytes     int64   `yaml:"quota_bytes"     env:"DEMOPREP_QUOTA_BYTES"      env-default:"5242880"`
	WarnRatio      float64 `yaml:"warn_ratio"      env:"DEMOPREP_STORAGE_WARN"     env-default:"0.8"`
}

const (
	SaveModeDebounced = "debounced"
	SaveModeManual    = "manual"
)

type SessionConfig struct {
	// SaveMode is "debounced" (autosave after a quiet period) or "manual"
	// (only explicit saves persist).
	SaveMode string        `yaml:"save_mode" env:"DEMOPREP_SAVE_MODE" env-default:"debounced"`
	Debounce time.Duration `yaml:"debounce"  env:"DEMOPREP_DEBOUNCE"  env-default:"300ms"`
}

func (s SessionConfig) Autosave() bool {
	return s.SaveMode == SaveModeDebounced
}

type LogConfig struct {
	Level string `yaml:"level" env:"DEMOPREP_LOG_LEVEL" env-default:"warn"`
	File  string `yaml:"file"  env:"DEMOPREP_LOG_FILE"`
}

type PrepConfig struct {
	APIKey    string        `yaml:"api_key"    env:"ANTHROPIC_API_KEY"`
	Model     string        `yaml:"model"      env:"DEMOPREP_PREP_MODEL"      env-default:"claude-sonnet-4-6"`
	MaxTokens int64         `yaml:"max_tokens" env:"DEMOPREP_PREP_MAX_TOKENS" env-default:"4000"`
	Timeout   time.Duration `yaml:"timeout"    env:"DEMOPREP_PREP_TIMEOUT"    env-default:"5m"`
}

type CatalogConfig struct {
	Dir string `yaml:"dir" env:"DEMOPREP_CATALOG_DIR"`
}

var drivers = []string{"sqlite", "memory", "redis"}

// DBPath is the SQLite file used by the sqlite storage driver.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "demoprep.db")
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("storage.driver must be one of %v (got %q)", drivers, c.Storage.Driver)
	}
	if c.Storage.Driver == "redis" && c.Storage.RedisURL == "" {
		return fmt.Errorf("storage.redis_url is required for the redis driver")
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage.quota_bytes must be >= 0 (got %d)", c.Storage.QuotaBytes)
	}
	if c.Storage.WarnRatio <= 0 || c.Storage.WarnRatio > 1 {
		return fmt.Errorf("storage.warn_ratio must be in (0,1] (got %v)", c.Storage.WarnRatio)
	}
	if c.Session.SaveMode != SaveModeDebounced && c.Session.SaveMode != SaveModeManual {
		return fmt.Errorf("session.save_mode must be %q or %q (got %q)", SaveModeDebounced, SaveModeManual, c.Session.SaveMode)
	}
	if c.Session.Debounce < 0 {
		return fmt.Errorf("session.debounce must be >= 0 (got %s)", c.Session.Debounce)
	}
	if c.Prep.MaxTokens <= 0 {
		return fmt.Errorf("prep.max_tokens must be > 0 (got %d)", c.Prep.MaxTokens)
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "demoprep")
	}
	return ".demoprep"
}
