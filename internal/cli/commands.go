package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tasktracker/internal/auth"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

func newListCmd(app *App) *cobra.Command {
	var completed, pending, group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if completed && pending {
				return usagef("ls: --completed and --pending cannot be used together")
			}
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			if completed {
				ctrl.ToggleFilterCompleted()
			}
			if pending {
				ctrl.ToggleFilterNot()
			}
			if err := ctrl.Fetch(cmd.Context()); err != nil {
				return fmt.Errorf("fetch: %w", err)
			}
			tasks := ctrl.Tasks()
			done, open := ctrl.Stats()
			ui.Panel(listPanel(tasks, done, open, ctrl.Filter(), group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&completed, "completed", false, "only completed tasks")
	cmd.Flags().BoolVar(&pending, "pending", false, "only tasks not completed")
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task (title can be multiple words)",
		Args:  minArgs(1, "usage: tasktracker add <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return usagef("add: empty title")
			}
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			if err := ctrl.Add(cmd.Context(), title); err != nil {
				return fmt.Errorf("add: %w", err)
			}
			tasks := ctrl.Tasks()
			ui.OK(fmt.Sprintf("added #%d", tasks[len(tasks)-1].ID))
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task by id",
		Args:    exactArgs(1, "usage: tasktracker rm <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("rm", args[0])
			if err != nil {
				return err
			}
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			if err := ctrl.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("rm: %w", err)
			}
			ui.OK(fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <title...>",
		Short: "Replace a task's title (the server copy is marked not completed)",
		Args:  minArgs(2, "usage: tasktracker edit <id> <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("edit", args[0])
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == "" {
				return usagef("edit: empty title")
			}
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			if err := ctrl.Edit(cmd.Context(), id, title); err != nil {
				return fmt.Errorf("edit: %w", err)
			}
			ui.OK(fmt.Sprintf("edited #%d", id))
			return nil
		},
	}
}

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the optional API token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usagef("usage: tasktracker auth <login|logout|status>")
		},
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Save a bearer token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.credentials()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
			sc := bufio.NewScanner(cmd.InOrStdin())
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				return fmt.Errorf("read token: no input")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			if err := store.Set(sc.Text()); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK("logged in")
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Delete the saved token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.credentials()
			if err != nil {
				return err
			}
			if ti, _ := store.Get(); ti != nil && ti.Source == "env" {
				ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
				return nil
			}
			if err := store.Delete(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK("logged out")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.credentials()
			if err != nil {
				return err
			}
			ti, err := store.Get()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ti == nil {
				fmt.Fprintln(out, ui.Current().Muted.Render("not logged in"))
				fmt.Fprintln(out, "Run: tasktracker auth login")
				return nil
			}
			fmt.Fprintf(out, "source: %s\n", ti.Source)
			if !ti.CreatedAt.IsZero() {
				fmt.Fprintf(out, "saved: %s\n", ti.CreatedAt.UTC().Format(time.RFC3339))
			}
			fmt.Fprintln(out, "env override: "+auth.EnvToken)
			return nil
		},
	}

	cmd.AddCommand(login, logout, status)
	return cmd
}

func parseID(op, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, usagef("%s: not a task id: %s", op, s)
	}
	return n, nil
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("%s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("%s", usage)
		}
		return nil
	}
}
