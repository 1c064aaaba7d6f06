// Package logging builds the charmbracelet/log loggers used by the CLI
// and the TUI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Options holds configuration for a logger.
type Options struct {
	Debug           bool
	ReportTimestamp bool
	Prefix          string
}

func level(debug bool) log.Level {
	if debug {
		return log.DebugLevel
	}
	return log.InfoLevel
}

// New returns a text logger writing to w.
func New(w io.Writer, opt Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level(opt.Debug),
		Formatter:       log.TextFormatter,
		ReportTimestamp: opt.ReportTimestamp,
		TimeFormat:      time.DateTime,
		Prefix:          opt.Prefix,
	})
}

// OpenFile opens (or creates) path for appending and returns a logfmt
// logger on it. The TUI owns the terminal, so its diagnostics go here.
func OpenFile(path string, opt Options) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level(opt.Debug),
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          opt.Prefix,
	})
	return logger, f, nil
}
