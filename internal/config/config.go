// Package config loads the bridge configuration from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// WorkerConfig names the external computation process and its call policy.
// Discovering a suitable interpreter is the deployment's job; the bridge
// only needs a ready-to-exec command.
type WorkerConfig struct {
	Command       string   `toml:"command"`
	Args          []string `toml:"args"`
	CallTimeoutMS int      `toml:"callTimeoutMs"`
}

// ArtifactsConfig controls where plot artifacts are written.
type ArtifactsConfig struct {
	Dir            string `toml:"dir"`
	ThumbnailWidth int    `toml:"thumbnailWidth"`
}

// LoggingConfig defines basic logging knobs.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Config aggregates the bridge configuration.
type Config struct {
	Worker    WorkerConfig    `toml:"worker"`
	Artifacts ArtifactsConfig `toml:"artifacts"`
	Logging   LoggingConfig   `toml:"logging"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a TOML config from path and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Worker.Command == "" {
		cfg.Worker.Command = "python3"
	}
	if len(cfg.Worker.Args) == 0 {
		cfg.Worker.Args = []string{"-m", "worker"}
	}
	if cfg.Worker.CallTimeoutMS == 0 {
		cfg.Worker.CallTimeoutMS = 30000
	}
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = "artifacts"
	}
	if cfg.Artifacts.ThumbnailWidth == 0 {
		cfg.Artifacts.ThumbnailWidth = 320
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (cfg *Config) validate() error {
	cfg.applyDefaults()
	if cfg.Worker.CallTimeoutMS < 0 {
		return fmt.Errorf("worker.callTimeoutMs must not be negative")
	}
	if cfg.Artifacts.ThumbnailWidth < 0 {
		return fmt.Errorf("artifacts.thumbnailWidth must not be negative")
	}
	switch cfg.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error", cfg.Logging.Level)
	}
	return nil
}
