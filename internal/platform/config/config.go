package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DataDir         string
	DBPath          string
	CatalogPath     string
	ReportsDir      string
	RecognizersPath string
	LogPath         string

	Log  LogConfig
	Game GameConfig
}

type LogConfig struct {
	Level string `env:"DISTRACTED_LOG_LEVEL" envDefault:"info"`
	JSON  bool   `env:"DISTRACTED_LOG_JSON"`
}

// GameConfig carries optional overrides for the session tunables. A nil
// field keeps the built-in default; a set field, zero included, replaces it.
type GameConfig struct {
	SessionSeconds      *int `env:"DISTRACTED_SESSION_SECONDS"`
	TaskTimeoutSeconds  *int `env:"DISTRACTED_TASK_TIMEOUT_SECONDS"`
	PollIntervalMS      *int `env:"DISTRACTED_POLL_INTERVAL_MS"`
	TimeoutPenalty      *int `env:"DISTRACTED_TIMEOUT_PENALTY"`
	DistractionCost     *int `env:"DISTRACTED_DISTRACTION_FOCUS_COST"`
	TaskReward          *int `env:"DISTRACTED_TASK_FOCUS_REWARD"`
	DistractionReward   *int `env:"DISTRACTED_DISTRACTION_FOCUS_REWARD"`
	RabbitHoleReward    *int `env:"DISTRACTED_RABBIT_HOLE_FOCUS_REWARD"`
	WorkingMemoryReward *int `env:"DISTRACTED_WORKING_MEMORY_FOCUS_REWARD"`
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{
		DataDir:         dataDir,
		DBPath:          filepath.Join(dataDir, ".distracted", "distracted.db"),
		CatalogPath:     filepath.Join(dataDir, "catalog.yaml"),
		ReportsDir:      filepath.Join(dataDir, "reports"),
		RecognizersPath: filepath.Join(dataDir, "recognizers", "recognizers.json"),
		LogPath:         filepath.Join(dataDir, ".distracted", "distracted.log"),
	}
	if err := ParseEnv(&cfg.Log); err != nil {
		return Config{}, err
	}
	if err := ParseEnv(&cfg.Game); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
