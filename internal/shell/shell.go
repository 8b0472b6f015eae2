// Package shell wires configuration, the remote client and every
// controller into one running application.
package shell

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tgienger/kairo/internal/bridge"
	"github.com/tgienger/kairo/internal/chat"
	"github.com/tgienger/kairo/internal/config"
	"github.com/tgienger/kairo/internal/dashboard"
	"github.com/tgienger/kairo/internal/entity"
	"github.com/tgienger/kairo/internal/logger"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/prefs"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/supervisor"
	"github.com/tgienger/kairo/internal/view"
	"golang.org/x/sync/errgroup"
)

// Kinds lists the entity kinds in navigation order
var Kinds = []entity.Kind{entity.KindTask, entity.KindEvent, entity.KindCourse}

// Options overrides collaborators, mostly for tests
type Options struct {
	Store      prefs.Store
	Clock      models.Clock
	HTTPClient *http.Client
}

// Shell is the assembled application
type Shell struct {
	Config    *config.Config
	Log       *logger.Logger
	Board     *view.Board
	Client    *remote.Client
	Settings  *prefs.Settings
	Clock     models.Clock
	Tasks     *entity.Controller[models.Task]
	Events    *entity.Controller[models.Event]
	Courses   *entity.Controller[models.Course]
	Archive   *entity.ArchiveView
	Dashboard *dashboard.Aggregator
	Chat      *chat.Channel
	Bridge    *bridge.Bridge
	Backend   *supervisor.Supervisor // nil when the backend is managed elsewhere
}

// Containers returns every container mounted at startup
func Containers() []string {
	containers := []string{view.DashboardContainer, view.ChatContainer, view.NoticeContainer, view.ArchiveContainer}
	for _, k := range Kinds {
		containers = append(containers, view.ListContainer(string(k)), view.FormContainer(string(k)))
	}
	return containers
}

// New assembles the application from cfg. opts.Store is required.
func New(cfg *config.Config, log *logger.Logger, opts Options) (*Shell, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("shell: a preference store is required")
	}
	if opts.Clock.Now == nil {
		opts.Clock = models.SystemClock()
	}
	if log == nil {
		log = logger.NewNop()
	}

	settings, err := prefs.Load(opts.Store, prefs.Defaults{Theme: cfg.UI.DefaultTheme, Style: cfg.Chat.DefaultStyle})
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	board := view.NewBoard(Containers()...)
	client := remote.NewClient(cfg.API.BaseURL, cfg.API.UserID, cfg.API.Timeout, opts.HTTPClient, log)
	dash := dashboard.New(client, board, opts.Clock, log)

	ctlOpts := entity.Options{Clock: opts.Clock, Validate: validator.New(), Logger: log, Dashboard: dash}
	s := &Shell{
		Config:    cfg,
		Log:       log,
		Board:     board,
		Client:    client,
		Settings:  settings,
		Clock:     opts.Clock,
		Tasks:     entity.NewController(entity.TaskSchema(), client, board, ctlOpts),
		Events:    entity.NewController(entity.EventSchema(), client, board, ctlOpts),
		Courses:   entity.NewController(entity.CourseSchema(), client, board, ctlOpts),
		Archive:   entity.NewArchiveView(client, board, opts.Clock, log),
		Dashboard: dash,
	}

	s.Chat = chat.New(client, board, settings, dash, log)
	for _, k := range Kinds {
		keywords := cfg.Chat.ActionKeywords[string(k)]
		if len(keywords) == 0 {
			keywords = []string{string(k)}
		}
		s.Chat.Route(keywords, s.Loader(k))
	}

	s.Bridge = bridge.New(bridge.NewTaskHost(client, settings.ChatStyle, opts.Clock, log), log)

	if cfg.Backend.Enabled {
		s.Backend = supervisor.New(supervisor.Config{
			Command:      cfg.Backend.Command,
			Args:         cfg.Backend.Args,
			Dir:          cfg.Backend.Dir,
			ReadyURL:     client.BaseURL(),
			ReadyTimeout: cfg.Backend.ReadyTimeout,
			StopTimeout:  cfg.Backend.StopTimeout,
		}, log)
	}

	for _, k := range Kinds {
		s.resetForm(k)
	}
	s.Chat.Render()
	return s, nil
}

// Loader returns the list loader for kind
func (s *Shell) Loader(k entity.Kind) entity.Loader {
	switch k {
	case entity.KindTask:
		return s.Tasks
	case entity.KindEvent:
		return s.Events
	case entity.KindCourse:
		return s.Courses
	}
	return nil
}

func (s *Shell) resetForm(k entity.Kind) {
	switch k {
	case entity.KindTask:
		s.Tasks.ResetForm()
	case entity.KindEvent:
		s.Events.ResetForm()
	case entity.KindCourse:
		s.Courses.ResetForm()
	}
}

// Start launches the backend, when enabled, and waits for it to answer
func (s *Shell) Start(ctx context.Context) error {
	if s.Backend == nil {
		return nil
	}
	if err := s.Backend.Start(ctx); err != nil {
		return err
	}
	if err := s.Backend.Ready(ctx); err != nil {
		_ = s.Backend.Stop()
		return err
	}
	return nil
}

// LoadAll fetches every view once. Failures are rendered, not returned.
func (s *Shell) LoadAll(ctx context.Context) {
	var eg errgroup.Group
	eg.Go(func() error { _ = s.Dashboard.Refresh(ctx); return nil })
	eg.Go(func() error { _ = s.Tasks.Load(ctx); return nil })
	eg.Go(func() error { _ = s.Events.Load(ctx); return nil })
	eg.Go(func() error { _ = s.Courses.Load(ctx); return nil })
	eg.Go(func() error { _ = s.Archive.Load(ctx); return nil })
	_ = eg.Wait()
}

// Close stops the backend and flushes the log
func (s *Shell) Close() error {
	var err error
	if s.Backend != nil {
		err = s.Backend.Stop()
	}
	_ = s.Log.Close()
	return err
}
