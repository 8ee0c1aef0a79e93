// Package config loads brewcat settings from the config file and environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "brewcat"

// DefaultDebounce is how long the watcher waits for the store to settle.
const DefaultDebounce = 2 * time.Second

// LogConfig configures application logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// WatchConfig configures the store watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	PIDFile  string        `mapstructure:"pid_file"`
}

// Config represents the application configuration.
type Config struct {
	// Prefix is the Homebrew prefix. Empty means ask brew, then fall back to
	// the platform default.
	Prefix  string      `mapstructure:"prefix"`
	Strict  bool        `mapstructure:"strict"`
	Workers int         `mapstructure:"workers"`
	DBPath  string      `mapstructure:"db_path"`
	Log     LogConfig   `mapstructure:"log"`
	Watch   WatchConfig `mapstructure:"watch"`
}

// Dir returns the brewcat config directory under $XDG_CONFIG_HOME
// (~/.config on Linux, ~/Library/Application Support on macOS).
func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// DataDir returns the directory holding the catalog database.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// StateDir returns the directory holding logs and the watcher PID file.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// Load reads $XDG_CONFIG_HOME/brewcat/config.yaml, if present, and applies
// BREWCAT_* environment overrides (e.g. BREWCAT_STRICT, BREWCAT_LOG_LEVEL).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Pick up XDG_* changes made after process start.
	xdg.Reload()
	v.AddConfigPath(Dir())

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("prefix", "")
	v.SetDefault("strict", false)
	v.SetDefault("workers", 0)
	v.SetDefault("db_path", filepath.Join(DataDir(), appName+".db"))
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.path", filepath.Join(StateDir(), appName+".log"))
	v.SetDefault("watch.debounce", DefaultDebounce)
	v.SetDefault("watch.pid_file", filepath.Join(StateDir(), "watch.pid"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}

	return &cfg, nil
}
