// Package dashboard aggregates tasks, events and courses into summary
// counters and a recent-activity feed.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tgienger/kairo/internal/logger"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/view"
	"golang.org/x/sync/errgroup"
)

// RecentLimit caps the recent-activity feed
const RecentLimit = 5

// Aggregator renders the dashboard container
type Aggregator struct {
	client  *remote.Client
	surface view.Surface
	clock   models.Clock
	log     *logger.Logger
}

// New creates an aggregator
func New(client *remote.Client, surface view.Surface, clock models.Clock, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{client: client, surface: surface, clock: clock, log: log.WithComponent("dashboard")}
}

// Refresh fetches all three collections concurrently and re-renders.
// Any failure renders the error state for the whole dashboard.
func (a *Aggregator) Refresh(ctx context.Context) error {
	var (
		tasks   []models.Task
		events  []models.Event
		courses []models.Course
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		tasks, err = remote.ListOf[models.Task](egCtx, a.client, remote.TasksPath, remote.TasksKey)
		return err
	})
	eg.Go(func() error {
		var err error
		events, err = remote.ListOf[models.Event](egCtx, a.client, remote.EventsPath, remote.EventsKey)
		return err
	})
	eg.Go(func() error {
		var err error
		courses, err = remote.ListOf[models.Course](egCtx, a.client, remote.CoursesPath, remote.CoursesKey)
		return err
	})

	if err := eg.Wait(); err != nil {
		a.log.WithError(err).Warnw("Failed to refresh dashboard")
		a.render(view.DashboardView{
			State:   view.StateError,
			Message: fmt.Sprintf("Failed to load dashboard data. Please ensure your backend server is running and accessible at %s.", a.client.BaseURL()),
		})
		return fmt.Errorf("dashboard: %w", err)
	}

	a.render(Summarize(tasks, events, courses, a.clock.Time()))
	return nil
}

func (a *Aggregator) render(dv view.DashboardView) {
	if !a.surface.Mounted(view.DashboardContainer) {
		return
	}
	a.surface.Render(view.DashboardContainer, dv)
}

// Summarize computes the dashboard for now. now's location is the viewer's zone.
func Summarize(tasks []models.Task, events []models.Event, courses []models.Course, now time.Time) view.DashboardView {
	loc := now.Location()
	dv := view.DashboardView{State: view.StateReady}

	dv.Stats.TotalTasks = len(tasks)
	for _, t := range tasks {
		if t.Status == models.StatusPending {
			dv.Stats.PendingTasks++
		}
	}
	for _, e := range events {
		if start, ok := e.Start.In(loc); ok && start.After(now) {
			dv.Stats.UpcomingEvents++
		}
	}
	for _, c := range courses {
		if ActiveCourse(c, now) {
			dv.Stats.ActiveCourses++
		}
	}

	dv.Recent = Recent(tasks, events, courses, loc, RecentLimit)
	if len(dv.Recent) == 0 {
		dv.Placeholder = "No recent activity."
	}
	return dv
}

// ActiveCourse reports whether c runs on now's calendar day. Missing
// bounds are open; unparseable bounds are treated as missing.
func ActiveCourse(c models.Course, now time.Time) bool {
	loc := now.Location()
	if c.StartDate.Valid() && c.StartDate.StartIn(loc).After(now) {
		return false
	}
	if c.EndDate.Valid() && c.EndDate.EndIn(loc).Before(now) {
		return false
	}
	return true
}

type activity struct {
	kind  string
	title string
	at    time.Time
	known bool
}

func touched(updated, created models.Timestamp, loc *time.Location) (time.Time, bool) {
	ts := updated
	if !ts.Present() {
		ts = created
	}
	return ts.In(loc)
}

// Recent merges all three kinds, newest first, and keeps limit entries.
// Undated entries sort last and keep their input order.
func Recent(tasks []models.Task, events []models.Event, courses []models.Course, loc *time.Location, limit int) []view.Activity {
	items := make([]activity, 0, len(tasks)+len(events)+len(courses))
	for _, t := range tasks {
		at, ok := touched(t.UpdatedAt, t.CreatedAt, loc)
		items = append(items, activity{kind: "Task", title: t.Title, at: at, known: ok})
	}
	for _, e := range events {
		at, ok := touched(e.UpdatedAt, e.CreatedAt, loc)
		items = append(items, activity{kind: "Event", title: e.Title, at: at, known: ok})
	}
	for _, c := range courses {
		at, ok := touched(c.UpdatedAt, c.CreatedAt, loc)
		items = append(items, activity{kind: "Course", title: c.Name, at: at, known: ok})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.known != b.known {
			return a.known
		}
		return a.at.After(b.at)
	})

	if len(items) > limit {
		items = items[:limit]
	}

	out := make([]view.Activity, 0, len(items))
	for _, it := range items {
		when := "Date unknown"
		if it.known {
			when = it.at.Format(models.DateLayout)
		}
		out = append(out, view.Activity{
			Kind:  it.kind,
			Title: it.title,
			When:  when,
			Text:  fmt.Sprintf("%s: %s \"%s\" updated.", when, it.kind, it.title),
		})
	}
	return out
}
