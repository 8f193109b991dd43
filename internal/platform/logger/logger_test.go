package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"demoprep/internal/platform/logger"
)

func TestFileCoreWritesJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "demoprep.log")
	log, err := logger.New(logger.Options{Level: "info", File: path, Quiet: true})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("session saved")
	log.Debug("below level")
	_ = log.Sync()

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(payload)
	if !strings.Contains(text, `"message":"session saved"`) {
		t.Fatalf("expected json entry, got %q", text)
	}
	if strings.Contains(text, "below level") {
		t.Fatalf("debug entry should be filtered: %q", text)
	}
}

func TestRejectsUnknownLevel(t *testing.T) {
	t.Parallel()
	if _, err := logger.New(logger.Options{Level: "chatty"}); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}
