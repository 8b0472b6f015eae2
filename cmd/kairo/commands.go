package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tgienger/kairo/internal/bridge"
	"github.com/tgienger/kairo/internal/config"
	"github.com/tgienger/kairo/internal/db"
	"github.com/tgienger/kairo/internal/entity"
	"github.com/tgienger/kairo/internal/logger"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/shell"
	"github.com/tgienger/kairo/internal/supervisor"
	"github.com/tgienger/kairo/internal/view"
)

// options are the persistent flags
type options struct {
	configPath string
	baseURL    string
	user       string
	logLevel   string
	noBackend  bool
}

// config loads the configuration and applies flag overrides
func (o *options) config() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.baseURL != "" {
		cfg.API.BaseURL = o.baseURL
	}
	if o.user != "" {
		cfg.API.UserID = o.user
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}
	if o.noBackend {
		cfg.Backend.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// env is an opened application: logger, settings database and shell
type env struct {
	log   *logger.Logger
	db    *db.DB
	shell *shell.Shell
}

// open builds the shell. Only the TUI manages the backend process; the
// one-shot commands expect it to be running already.
func (o *options) open(manageBackend bool) (*env, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	if !manageBackend {
		cfg.Backend.Enabled = false
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, err
	}

	database, err := db.New(cfg.Data.Dir)
	if err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	sh, err := shell.New(cfg, log, shell.Options{Store: database})
	if err != nil {
		database.Close()
		_ = log.Close()
		return nil, err
	}

	log.Infow("Kairo started", "version", version, "base_url", cfg.API.BaseURL, "user", cfg.API.UserID)
	return &env{log: log, db: database, shell: sh}, nil
}

func (e *env) close() {
	if err := e.shell.Close(); err != nil {
		e.log.WithError(err).Warnw("Backend did not stop cleanly")
	}
	e.db.Close()
}

func newDashboardCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard counters and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(false)
			if err != nil {
				return err
			}
			defer e.close()

			refreshErr := e.shell.Dashboard.Refresh(cmd.Context())
			dv, _ := view.LatestAs[view.DashboardView](e.shell.Board, view.DashboardContainer)
			if err := view.WriteDashboard(cmd.OutOrStdout(), dv); err != nil {
				return err
			}
			return refreshErr
		},
	}
}

// collection is one listable kind: its loader, its container and, for
// entity kinds, a raw JSON snapshot
type collection struct {
	loader    entity.Loader
	container string
	snapshot  func(ctx context.Context) ([]byte, error)
}

func collections(sh *shell.Shell) map[string]collection {
	return map[string]collection{
		"tasks":    {sh.Tasks, view.ListContainer(string(entity.KindTask)), sh.Tasks.Snapshot},
		"events":   {sh.Events, view.ListContainer(string(entity.KindEvent)), sh.Events.Snapshot},
		"courses":  {sh.Courses, view.ListContainer(string(entity.KindCourse)), sh.Courses.Snapshot},
		"archived": {sh.Archive, view.ArchiveContainer, nil},
	}
}

func newListCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "list <tasks|events|courses|archived>",
		Short:     "Print one collection",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"tasks", "events", "courses", "archived"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(false)
			if err != nil {
				return err
			}
			defer e.close()

			c := collections(e.shell)[args[0]]
			if asJSON {
				if c.snapshot == nil {
					return fmt.Errorf("--json is not supported for %s", args[0])
				}
				out, err := c.snapshot(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}

			loadErr := c.loader.Load(cmd.Context())
			lv, _ := view.LatestAs[view.ListView](e.shell.Board, c.container)
			if err := view.WriteList(cmd.OutOrStdout(), lv); err != nil {
				return err
			}
			return loadErr
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw records as JSON")
	return cmd
}

func newAskCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message...>",
		Short: "Send one message to the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(false)
			if err != nil {
				return err
			}
			defer e.close()

			return ask(cmd.Context(), e.shell.Bridge, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}
}

// ask sends message over the bridge command channel and prints the reply
func ask(ctx context.Context, b *bridge.Bridge, message string, w io.Writer) error {
	var (
		reply   *models.ChatReply
		failure error
	)
	b.Receive(bridge.CommandResponse, func(payload any) {
		reply, _ = payload.(*models.ChatReply)
	})
	b.Receive(bridge.Error, func(payload any) {
		failure = fmt.Errorf("%v", payload)
	})

	b.Send(ctx, bridge.Command, message)

	if failure != nil {
		return failure
	}
	if reply == nil {
		return errors.New("no reply from the assistant")
	}
	if _, err := fmt.Fprintln(w, reply.Response); err != nil {
		return err
	}
	if reply.ParsedAction != nil && reply.ParsedAction.Action != "" {
		params, _ := json.Marshal(reply.ParsedAction.Parameters)
		_, err := fmt.Fprintf(w, "\naction: %s %s\n", reply.ParsedAction.Action, params)
		return err
	}
	return nil
}

// dueChannels maps the due argument to its bridge channel
var dueChannels = map[string]string{
	"all":     bridge.GetTasks,
	"daily":   bridge.GetDailyTasks,
	"weekly":  bridge.GetWeeklyTasks,
	"monthly": bridge.GetMonthlyTasks,
}

func newDueCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "due [all|daily|weekly|monthly]",
		Short:     "Print tasks due today, this week or this month",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"all", "daily", "weekly", "monthly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			window := "daily"
			if len(args) == 1 {
				window = args[0]
			}

			e, err := opts.open(false)
			if err != nil {
				return err
			}
			defer e.close()

			return due(cmd.Context(), e.shell, dueChannels[window], cmd.OutOrStdout())
		},
	}
}

func due(ctx context.Context, sh *shell.Shell, channel string, w io.Writer) error {
	var (
		tasks   []models.Task
		failure error
	)
	sh.Bridge.Receive(bridge.TasksResponse, func(payload any) {
		tasks, _ = payload.([]models.Task)
	})
	sh.Bridge.Receive(bridge.Error, func(payload any) {
		failure = fmt.Errorf("%v", payload)
	})

	sh.Bridge.Send(ctx, channel, nil)
	if failure != nil {
		return failure
	}
	return view.WriteList(w, sh.Tasks.List(tasks))
}

func newBackendCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "backend",
		Short: "Run the backend process in the foreground until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cfg.Backend.Command == "" {
				return errors.New("no backend command configured")
			}

			cfg.Logger.Output = "stderr"
			log, err := logger.New(cfg.Logger)
			if err != nil {
				return err
			}
			defer log.Close()

			sup := supervisor.New(supervisor.Config{
				Command:      cfg.Backend.Command,
				Args:         cfg.Backend.Args,
				Dir:          cfg.Backend.Dir,
				ReadyURL:     cfg.API.TrimmedBaseURL(),
				ReadyTimeout: cfg.Backend.ReadyTimeout,
				StopTimeout:  cfg.Backend.StopTimeout,
			}, log)
			return runBackend(cmd.Context(), sup, cmd.OutOrStdout(), cfg.API.TrimmedBaseURL())
		},
	}
}

func runBackend(ctx context.Context, sup *supervisor.Supervisor, w io.Writer, url string) error {
	if err := sup.Start(ctx); err != nil {
		return err
	}
	if err := sup.Ready(ctx); err != nil {
		_ = sup.Stop()
		return err
	}
	fmt.Fprintf(w, "Backend ready at %s. Press Ctrl+C to stop.\n", url)

	select {
	case <-ctx.Done():
		return sup.Stop()
	case <-sup.Done():
		return sup.Err()
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kairo %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
