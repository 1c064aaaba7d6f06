// Package cli wires config, logging, the API client and the controller
// behind a cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tasktracker/internal/api"
	"github.com/Makepad-fr/tasktracker/internal/auth"
	"github.com/Makepad-fr/tasktracker/internal/config"
	"github.com/Makepad-fr/tasktracker/internal/logging"
	"github.com/Makepad-fr/tasktracker/internal/tracker"
	"github.com/Makepad-fr/tasktracker/internal/tui"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

// usageError marks bad invocations; they exit with code 2.
type usageError struct{ error }

func usagef(format string, a ...any) error {
	return usageError{fmt.Errorf(format, a...)}
}

// App carries state shared by every command of one invocation.
type App struct {
	ov      config.Overrides
	debug   bool
	color   string
	cfg     *config.Config
	log     *log.Logger
	closers []io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Task tracker for a remote /todos API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive list
  tasktracker

  # Scriptable commands
  tasktracker ls --pending
  tasktracker add "Buy milk"
  tasktracker edit 3 "Buy oat milk"
  tasktracker rm 3
`),
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI(cmd.Context())
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ui.Stdout, ui.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
		if cmd.Flags().Changed("debug") {
			app.ov.Debug = &app.debug
		}
		return app.init(cmd.ErrOrStderr())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ov.ConfigFile, "config", "", "path to a TOML config file")
	pf.StringVar(&app.ov.BaseURL, "base-url", "", "API base URL (default "+api.DefaultBaseURL+")")
	pf.DurationVar(&app.ov.Timeout, "timeout", 0, "per-request timeout (e.g. 5s)")
	pf.StringVar(&app.ov.Theme, "theme", "", "classic, neon or mono")
	pf.StringVar(&app.ov.LogFile, "log-file", "", "diagnostic log file")
	pf.BoolVar(&app.debug, "debug", false, "log requests at debug level")
	pf.StringVar(&app.color, "color", "auto", "auto, always or never")

	cmd.AddCommand(
		newListCmd(app),
		newAddCmd(app),
		newRemoveCmd(app),
		newEditCmd(app),
		newAuthCmd(app),
	)
	return cmd
}

// Execute runs the command tree and returns an exit code (0 ok, 1 error, 2 usage).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	ui.Stderr = stderr
	ui.Fail(err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		ui.Hint("run `tasktracker --help` for usage")
		return 2
	}
	return 1
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func (a *App) init(stderr io.Writer) error {
	cfg, err := config.Load(a.ov)
	if err != nil {
		return usageError{fmt.Errorf("config: %w", err)}
	}
	a.cfg = cfg

	switch a.color {
	case "", "auto":
		ui.SetColorForcing(false, false)
	case "always":
		ui.SetColorForcing(true, false)
	case "never":
		ui.SetColorForcing(false, true)
	default:
		return usagef("--color must be auto, always or never, got %q", a.color)
	}
	// mono turns colour off on top of the forcing above.
	ui.SetTheme(cfg.Theme)

	a.log = logging.New(stderr, a.logOptions())
	return nil
}

func (a *App) logOptions() logging.Options {
	return logging.Options{Debug: a.cfg.Debug, ReportTimestamp: a.cfg.Debug, Prefix: "tasktracker"}
}

// fileLogger swaps the stderr logger for one writing to log_file. The TUI
// owns the screen, so its diagnostics cannot go to stderr.
func (a *App) fileLogger() {
	logger, closer, err := logging.OpenFile(a.cfg.LogFile, a.logOptions())
	if err != nil {
		a.log.Warn("log file unavailable", "path", a.cfg.LogFile, "err", err)
		return
	}
	a.log = logger
	a.closers = append(a.closers, closer)
}

func (a *App) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}

func (a *App) credentials() (auth.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return auth.Store{}, err
	}
	return auth.Store{Dir: dir}, nil
}

func (a *App) client() (*api.Client, error) {
	store, err := a.credentials()
	if err != nil {
		return nil, err
	}
	token, err := store.Token()
	if err != nil {
		return nil, err
	}
	return api.New(api.Options{
		BaseURL:   a.cfg.BaseURL,
		Timeout:   a.cfg.Timeout.Duration,
		Token:     token,
		UserAgent: "tasktracker-cli",
		Logger:    a.log.WithPrefix("api"),
	})
}

func (a *App) controller() (*tracker.Controller, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return tracker.New(c, a.log.WithPrefix("tracker")), nil
}

func (a *App) runTUI(ctx context.Context) error {
	if !stdoutIsTerminal() {
		return usagef("the interactive list needs a terminal; try `tasktracker ls`")
	}
	a.fileLogger()
	ctrl, err := a.controller()
	if err != nil {
		return err
	}
	a.log.Info("starting tui", "base_url", a.cfg.BaseURL)
	if err := tui.Run(ctx, ctrl, tui.Options{Theme: ui.Current(), Logger: a.log.WithPrefix("tui")}); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
