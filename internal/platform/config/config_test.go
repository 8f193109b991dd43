package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEMOPREP_CONFIG", "")
	t.Chdir(t.TempDir())
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != dataDir || cfg.DBPath() != filepath.Join(dataDir, "demoprep.db") {
		t.Fatalf("unexpected data dir: %+v", cfg)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.QuotaBytes != 5*1024*1024 || cfg.Storage.WarnRatio != 0.8 {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if !cfg.Session.Autosave() || cfg.Session.Debounce != 300*time.Millisecond {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Prep.Model != "claude-sonnet-4-6" || cfg.Prep.MaxTokens != 4000 {
		t.Fatalf("unexpected prep defaults: %+v", cfg.Prep)
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := writeYAML(t, `
data_dir: /tmp/demoprep-yaml
storage:
  driver: memory
  quota_bytes: 1024
session:
  save_mode: manual
  debounce: 1s
log:
  level: debug
`)
	t.Setenv("DEMOPREP_STORAGE_DRIVER", "redis")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/demoprep-yaml" {
		t.Fatalf("expected yaml data dir, got %q", cfg.DataDir)
	}
	if cfg.Storage.Driver != "redis" {
		t.Fatalf("env should win over yaml, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.QuotaBytes != 1024 || cfg.Session.Autosave() || cfg.Session.Debounce != time.Second {
		t.Fatalf("yaml values not applied: %+v %+v", cfg.Storage, cfg.Session)
	}
	if cfg.Prep.APIKey != "sk-test" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected prep/log: %+v %+v", cfg.Prep, cfg.Log)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), t.TempDir())
	if err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	path := writeYAML(t, "storage:\n  driver: floppy\n")
	_, err := Load(path, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "storage.driver") {
		t.Fatalf("expected driver validation error, got %v", err)
	}
}
