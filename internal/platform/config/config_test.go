package config_test

import (
	"path/filepath"
	"testing"

	"distracted/internal/platform/config"
)

func TestNewDerivesPaths(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, ".distracted", "distracted.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.RecognizersPath != filepath.Join(dir, "recognizers", "recognizers.json") {
		t.Fatalf("unexpected recognizers path: %s", cfg.RecognizersPath)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Log.Level)
	}
}

func TestNewReadsGameOverrides(t *testing.T) {
	t.Setenv("DISTRACTED_SESSION_SECONDS", "90")
	t.Setenv("DISTRACTED_TIMEOUT_PENALTY", "25")
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Game.SessionSeconds == nil || *cfg.Game.SessionSeconds != 90 {
		t.Fatalf("expected session override, got %v", cfg.Game.SessionSeconds)
	}
	if cfg.Game.TimeoutPenalty == nil || *cfg.Game.TimeoutPenalty != 25 {
		t.Fatalf("expected penalty override, got %v", cfg.Game.TimeoutPenalty)
	}
	if cfg.Game.TaskTimeoutSeconds != nil {
		t.Fatalf("unset overrides must stay nil, got %d", *cfg.Game.TaskTimeoutSeconds)
	}
}

func TestNewKeepsZeroOverrides(t *testing.T) {
	t.Setenv("DISTRACTED_TIMEOUT_PENALTY", "0")
	t.Setenv("DISTRACTED_WORKING_MEMORY_FOCUS_REWARD", "0")
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Game.TimeoutPenalty == nil || *cfg.Game.TimeoutPenalty != 0 {
		t.Fatalf("zero penalty must be kept as an override, got %v", cfg.Game.TimeoutPenalty)
	}
	if cfg.Game.WorkingMemoryReward == nil || *cfg.Game.WorkingMemoryReward != 0 {
		t.Fatalf("zero reward must be kept as an override, got %v", cfg.Game.WorkingMemoryReward)
	}
}

func TestNewRejectsEmptyDir(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
}

func TestNewRejectsMalformedOverride(t *testing.T) {
	t.Setenv("DISTRACTED_SESSION_SECONDS", "ninety")
	if _, err := config.New(t.TempDir()); err == nil {
		t.Fatalf("expected parse error for malformed override")
	}
}
