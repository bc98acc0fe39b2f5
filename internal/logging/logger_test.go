package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRunLoggerWritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")

	logger, logPath, err := NewRunLogger(logDir, "info", "console", "20260101_120000")
	if err != nil {
		t.Fatalf("NewRunLogger: %v", err)
	}
	if filepath.Base(logPath) != "mdprep_20260101_120000.log" {
		t.Fatalf("unexpected log path: %q", logPath)
	}

	logger.Info("batch started", Int("total", 3), String("table", "Mol.csv"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO") || !strings.Contains(line, "batch started") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "total=3") || !strings.Contains(line, "table=Mol.csv") {
		t.Fatalf("missing attrs in log line: %q", line)
	}
}

func TestComponentPrefix(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}
	NewComponentLogger(logger, "pipeline").Warn("step failed", String("step", "convert"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "WARN pipeline: step failed step=convert") {
		t.Fatalf("unexpected line: %q", string(data))
	}
}

func TestQuotedValues(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := New(Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}
	logger.Error("failed", String("error", "exit status 1: no such file"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `error="exit status 1: no such file"`) {
		t.Fatalf("expected quoted value, got %q", string(data))
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("ignored")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected nop logger to be disabled")
	}
}
