package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/kairo/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "kairo",
		Short:         "Kairo personal productivity dashboard",
		Long:          `Kairo keeps your tasks, events and courses in one terminal dashboard, with an assistant that can change them for you.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/kairo/config.yaml)")
	flags.StringVar(&opts.baseURL, "base-url", "", "Remote Data Service base URL")
	flags.StringVar(&opts.user, "user", "", "user id sent with every request")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noBackend, "no-backend", false, "do not start the backend process")

	rootCmd.AddCommand(
		newDashboardCommand(opts),
		newListCommand(opts),
		newAskCommand(opts),
		newDueCommand(opts),
		newBackendCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

func runTUI(ctx context.Context, opts *options) error {
	env, err := opts.open(true)
	if err != nil {
		return err
	}
	defer env.close()

	// Create and run the application
	app := ui.NewApp(ctx, env.shell)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running application: %w", err)
	}
	return nil
}
