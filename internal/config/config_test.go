package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Makepad-fr/tasktracker/internal/api"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{
		"TASKTRACKER_BASE_URL", "TASKTRACKER_TIMEOUT", "TASKTRACKER_THEME",
		"TASKTRACKER_LOG_FILE", "TASKTRACKER_DEBUG",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != api.DefaultBaseURL {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Timeout.Duration != api.DefaultTimeout {
		t.Errorf("Timeout: got %s", cfg.Timeout)
	}
	if cfg.Theme != DefaultTheme {
		t.Errorf("Theme: got %q", cfg.Theme)
	}
	if want := filepath.Join(dir, "tasktracker", DefaultLogFile); cfg.LogFile != want {
		t.Errorf("LogFile: got %q, want %q", cfg.LogFile, want)
	}
}

func TestLoad_Layering(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "tasktracker", "config.toml"), `
base_url = "http://user.example/"
timeout = "3s"
theme = "neon"
`)
	extra := filepath.Join(t.TempDir(), "extra.toml")
	writeFile(t, extra, `timeout = "4s"`)
	t.Setenv("TASKTRACKER_THEME", "MONO")

	debug := true
	cfg, err := Load(Overrides{ConfigFile: extra, BaseURL: "https://flag.example", Debug: &debug})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://flag.example" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Timeout.Duration != 4*time.Second {
		t.Errorf("Timeout: got %s", cfg.Timeout)
	}
	if cfg.Theme != "mono" {
		t.Errorf("Theme: got %q", cfg.Theme)
	}
	if !cfg.Debug {
		t.Errorf("Debug: got false")
	}
}

func TestLoad_BadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKTRACKER_TIMEOUT", "soon")
	if _, err := Load(Overrides{}); err == nil || !strings.Contains(err.Error(), "TASKTRACKER_TIMEOUT") {
		t.Fatalf("expected timeout env error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty url", func(c *Config) { c.BaseURL = "" }, false},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://x" }, false},
		{"no host", func(c *Config) { c.BaseURL = "http://" }, false},
		{"zero timeout", func(c *Config) { c.Timeout = Duration{} }, false},
		{"unknown theme", func(c *Config) { c.Theme = "sepia" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate: got %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
