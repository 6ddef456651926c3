package log

import (
	"context"
	"testing"
)

func TestTestLoggerCapturesFields(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)

	scoped := logger.With(RunIDKey, "run-1", FoldsKey, 5)
	scoped.Info("sweep started", GridSizeKey, 3)

	entries := logger.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["message"] != "sweep started" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry[RunIDKey] != "run-1" {
		t.Errorf("run id = %v", entry[RunIDKey])
	}
	if entry[GridSizeKey] != float64(3) {
		t.Errorf("grid size = %v", entry[GridSizeKey])
	}
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	logger, _ := NewTestLogger(LevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	entries := logger.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !logger.Contains("visible") {
		t.Error("expected warn entry to be captured")
	}
}

func TestZerologLoggerEnabled(t *testing.T) {
	p := newZerologProvider()
	p.SetLevel(LevelWarn)
	logger := p.GetLogger()

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
		Level(42):  "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}
