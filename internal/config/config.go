// Package config loads the YAML configuration consumed by cmd/rollupctl.
// It is deliberately small: the core (internal/store, internal/cachelayer,
// internal/blockstate, internal/session) never reads configuration itself,
// it is handed already-constructed dependencies by the driver.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/citizen-stig/storage-witness-delta-plaground/internal/rlog"
)

// Backend names a store.Adapter implementation.
type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendBolt    Backend = "bolt"
	BackendLevelDB Backend = "leveldb"
)

// Config is the top level document read from a YAML file.
type Config struct {
	Backend   Backend   `yaml:"backend"`
	Path      string    `yaml:"path"`
	CacheSize int       `yaml:"cache_size"`
	Log       LogConfig `yaml:"log"`
}

// LogConfig controls the ambient logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration Load starts from before applying
// the values read from a file.
func Default() Config {
	return Config{
		Backend:   BackendMemory,
		CacheSize: 1024,
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	switch cfg.Backend {
	case BackendMemory, BackendBolt, BackendLevelDB:
	default:
		return Config{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.Backend != BackendMemory && cfg.Path == "" {
		return Config{}, fmt.Errorf("backend %q requires a path", cfg.Backend)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}
	return cfg, nil
}

// LogLevel maps the config's level string onto rlog.Level, defaulting
// to info on anything unrecognized rather than failing startup over it.
func (c Config) LogLevel() rlog.Level {
	switch c.Log.Level {
	case "debug":
		return rlog.DebugLevel
	case "warn":
		return rlog.WarnLevel
	case "error":
		return rlog.ErrorLevel
	default:
		return rlog.InfoLevel
	}
}
