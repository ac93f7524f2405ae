// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. Config file ($XDG_CONFIG_HOME/kb/config.toml, or --config)
// 3. Environment variables (KB_*)
// 4. CLI flags
//
// Each level overrides the previous one.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/tgienger/kb/internal/models"
)

// Default values.
const (
	DefaultExportDir = "."
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the full configuration for kb.
type Config struct {
	// Paths
	DBPath    string `toml:"db_path"`
	ExportDir string `toml:"export_dir"`
	LogFile   string `toml:"log_file"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Number of days ahead that counts as "due soon"
	DueSoonDays int `toml:"due_soon_days"`
}

// Defaults returns the built-in configuration. getenv is consulted for
// the XDG base directories.
func Defaults(getenv func(string) string) *Config {
	return &Config{
		DBPath:      xdgPath(getenv, "XDG_DATA_HOME", ".local/share", "kb.db"),
		ExportDir:   DefaultExportDir,
		LogFile:     xdgPath(getenv, "XDG_STATE_HOME", ".local/state", "kb.log"),
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		DueSoonDays: models.DueSoonDays,
	}
}

// Load applies defaults, the config file and the environment, in that
// order. An empty path means the default config file, which may be
// absent. An explicit path must exist.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Defaults(getenv)

	explicit := path != ""
	if !explicit {
		path = DefaultFile(getenv)
	}
	if path != "" {
		if err := loadFile(cfg, expandPath(path)); err != nil {
			if !explicit && errors.Is(err, os.ErrNotExist) {
				err = nil
			} else {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if err := loadFromEnv(cfg, getenv); err != nil {
		return nil, err
	}
	cfg.finalize()
	return cfg, nil
}

// DefaultFile returns the path of the user config file
func DefaultFile(getenv func(string) string) string {
	return xdgPath(getenv, "XDG_CONFIG_HOME", ".config", "config.toml")
}

func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("KB_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("KB_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := getenv("KB_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := getenv("KB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("KB_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := getenv("KB_DUE_SOON_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KB_DUE_SOON_DAYS: %w", err)
		}
		cfg.DueSoonDays = n
	}
	return nil
}

func (c *Config) finalize() {
	c.DBPath = expandPath(c.DBPath)
	c.ExportDir = expandPath(c.ExportDir)
	c.LogFile = expandPath(c.LogFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate checks the values that cannot be fixed up silently
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path is empty", ErrInvalidConfig)
	}
	if c.DueSoonDays < 1 {
		return fmt.Errorf("%w: due_soon_days must be at least 1, got %d", ErrInvalidConfig, c.DueSoonDays)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%w: log_format must be json or text, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	return nil
}
