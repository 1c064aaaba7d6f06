package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Overrides carry values set explicitly on the command line. Empty
// strings and nil pointers mean "not set".
type Overrides struct {
	ConfigFile string
	BaseURL    string
	Timeout    time.Duration
	Theme      string
	LogFile    string
	Debug      *bool
}

// Load builds the config in priority order:
// 1. Defaults
// 2. User config file (config dir/tasktracker/config.toml or ~/.tasktracker/config.toml)
// 3. Explicit --config file
// 4. Environment variables
// 5. Command-line overrides
func Load(ov Overrides) (*Config, error) {
	cfg := Default()

	if p := findUserConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}

	if ov.ConfigFile != "" {
		if err := loadConfigFile(cfg, ov.ConfigFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", ov.ConfigFile, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	applyOverrides(cfg, ov)

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TASKTRACKER_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TASKTRACKER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TASKTRACKER_TIMEOUT: %w", err)
		}
		cfg.Timeout = Duration{d}
	}
	if v := os.Getenv("TASKTRACKER_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TASKTRACKER_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TASKTRACKER_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TASKTRACKER_DEBUG: %w", err)
		}
		cfg.Debug = b
	}
	return nil
}

func applyOverrides(cfg *Config, ov Overrides) {
	if ov.BaseURL != "" {
		cfg.BaseURL = ov.BaseURL
	}
	if ov.Timeout != 0 {
		cfg.Timeout = Duration{ov.Timeout}
	}
	if ov.Theme != "" {
		cfg.Theme = ov.Theme
	}
	if ov.LogFile != "" {
		cfg.LogFile = ov.LogFile
	}
	if ov.Debug != nil {
		cfg.Debug = *ov.Debug
	}
}

func finalizeConfig(cfg *Config) error {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	if cfg.LogFile == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		cfg.LogFile = filepath.Join(dir, DefaultLogFile)
	}
	cfg.LogFile = expandPath(cfg.LogFile)
	return nil
}

// Dir is the per-user directory for config, credentials and logs.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tasktracker"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tasktracker"), nil
}

func findUserConfigFile() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, configFileName)
	if _, err := os.Stat(p); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return p
		}
		return ""
	}
	return p
}

func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
