// Package config loads tasktracker settings from TOML files, the
// environment and command-line flags.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Makepad-fr/tasktracker/internal/api"
)

const (
	DefaultTheme   = "classic"
	DefaultLogFile = "tasktracker.log"

	configFileName = "config.toml"
)

// Duration lets TOML carry durations as strings like "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
	Theme   string   `toml:"theme"`
	LogFile string   `toml:"log_file"`
	Debug   bool     `toml:"debug"`
}

func setDefaults(cfg *Config) {
	cfg.BaseURL = api.DefaultBaseURL
	cfg.Timeout = Duration{api.DefaultTimeout}
	cfg.Theme = DefaultTheme
	cfg.LogFile = ""
	cfg.Debug = false
}

// Default returns a config holding only built-in defaults.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	raw := strings.TrimSpace(c.BaseURL)
	if raw == "" {
		return fmt.Errorf("base_url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q: missing host", raw)
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout.Duration)
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q (want classic, neon or mono)", c.Theme)
	}
	return nil
}
