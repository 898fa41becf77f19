package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the flat gtdstore configuration.
type Config struct {
	Version string `json:"version"`
	// DBPath overrides the store location. Empty means the default under
	// the home directory.
	DBPath string `json:"db_path,omitempty"`
	// TargetVersion pins the schema version the store is kept at. Zero
	// means the latest published version.
	TargetVersion int `json:"target_version,omitempty"`
	// BackupRetentionHours is the grace window for pruning old snapshots
	// after a successful migration run. Zero keeps everything.
	BackupRetentionHours int `json:"backup_retention_hours,omitempty"`
	// RiskThreshold overrides the score at which a safety-net export is
	// taken before a migration step. Zero means the built-in default.
	RiskThreshold int `json:"risk_threshold,omitempty"`
}

// LoadConfig reads .gtdstore/config.json from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".gtdstore", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory.
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, ".gtdstore")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create .gtdstore dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadOrDefault reads the config from dir, falling back to a zero config
// when none exists yet.
func LoadOrDefault(dir string) *Config {
	cfg, err := LoadConfig(dir)
	if err != nil {
		return &Config{Version: "1"}
	}
	return cfg
}
