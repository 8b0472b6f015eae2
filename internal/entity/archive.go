package entity

import (
	"context"
	"time"

	"github.com/tgienger/kairo/internal/logger"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/view"
)

// ArchiveView shows archived tasks. It is read-only.
type ArchiveView struct {
	client  *remote.Client
	surface view.Surface
	clock   models.Clock
	log     *logger.Logger
}

// NewArchiveView creates the archived tasks view
func NewArchiveView(client *remote.Client, surface view.Surface, clock models.Clock, log *logger.Logger) *ArchiveView {
	if log == nil {
		log = logger.NewNop()
	}
	return &ArchiveView{client: client, surface: surface, clock: clock, log: log.WithComponent("archive")}
}

// Load fetches and renders archived tasks
func (a *ArchiveView) Load(ctx context.Context) error {
	a.render(view.ListView{Kind: "archived", State: view.StateLoading, Message: "Loading archived tasks..."})

	tasks, err := remote.ListOf[models.Task](ctx, a.client, remote.ArchivedTasksPath, remote.ArchivedTasksKey)
	switch {
	case remote.IsNotFound(err):
		a.render(view.ListView{Kind: "archived", State: view.StateEmpty, Message: "No archived tasks found or feature not yet available."})
		return nil
	case err != nil:
		a.log.WithError(err).Warnw("Failed to load archived tasks")
		a.render(view.ListView{Kind: "archived", State: view.StateError, Message: "Failed to load archived tasks."})
		return err
	case len(tasks) == 0:
		a.render(view.ListView{Kind: "archived", State: view.StateEmpty, Message: "You have no archived tasks."})
		return nil
	}

	cards := make([]view.Card, 0, len(tasks))
	for _, t := range tasks {
		cards = append(cards, ArchivedTaskCard(t, a.clock.Loc()))
	}
	a.render(view.ListView{Kind: "archived", State: view.StateReady, Cards: cards})
	return nil
}

func (a *ArchiveView) render(lv view.ListView) {
	if !a.surface.Mounted(view.ArchiveContainer) {
		return
	}
	a.surface.Render(view.ArchiveContainer, lv)
}

// ArchivedTaskCard renders an archived task
func ArchivedTaskCard(t models.Task, loc *time.Location) view.Card {
	return view.Card{
		ID:     t.ID,
		Title:  t.Title,
		Badges: []view.Badge{statusBadge(t.Status)},
		Lines: []view.Line{
			{Label: "Due", Value: t.Due.Format(loc, models.DateTimeLayout, notAvailable)},
			{Label: "Archived on", Value: t.ArchivedAt.Format(loc, models.DateTimeLayout, notAvailable)},
			{Label: "Description", Value: snippet(t.Description)},
		},
	}
}
