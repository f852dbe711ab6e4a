package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"firewatch/internal/logging"
	"firewatch/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "firewatch.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("scan started", logging.String("bbox", "68,6,98,38"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "scan started") {
		t.Fatalf("log missing message: %s", content)
	}
	if !strings.Contains(content, `"bbox":"68,6,98,38"`) {
		t.Fatalf("log missing attribute: %s", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestDebugLevelFiltersBelowThreshold(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "firewatch.log")

	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("filtered")
	logger.Warn("kept")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "filtered") {
		t.Fatal("info record should have been filtered at warn level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Fatal("warn record missing")
	}
}

func TestWithContextCarriesStageAndRun(t *testing.T) {
	ctx := services.WithStage(context.Background(), "clustering")
	ctx = services.WithRunID(ctx, "run-42")

	fields := logging.ContextFields(ctx)
	keys := make(map[string]string, len(fields))
	for _, field := range fields {
		keys[field.Key] = field.Value.String()
	}
	if keys[logging.FieldStage] != "clustering" {
		t.Fatalf("stage field = %q", keys[logging.FieldStage])
	}
	if keys[logging.FieldRunID] != "run-42" {
		t.Fatalf("run field = %q", keys[logging.FieldRunID])
	}
}
