package views

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/ui/styles"
)

func TestDashboardViewReload(t *testing.T) {
	sh, srv := newTestShell(t)
	srv.Seed("tasks", map[string]any{"title": "Essay", "status": "pending", "updated_at": "2024-05-01T10:00:00"})
	v := NewDashboardView(context.Background(), sh.Dashboard, sh.Board, styles.NewStyles(styles.TokyoNight))
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	_, cmd := v.Update(keyRunes("r"))
	msg := exec(t, v, cmd)
	assert.Equal(t, DashboardRefreshed{}, msg)

	out := v.View()
	assert.Contains(t, out, "Recent activity")
	assert.Contains(t, out, `Task "Essay" updated.`)
}

func TestDashboardViewError(t *testing.T) {
	sh, srv := newTestShell(t)
	srv.Fail("GET", "/courses", 500, `{"error":"boom"}`)
	v := NewDashboardView(context.Background(), sh.Dashboard, sh.Board, styles.NewStyles(styles.TokyoNight))

	msg := exec(t, v, v.Reload())
	refreshed, ok := msg.(DashboardRefreshed)
	require.True(t, ok)
	assert.Error(t, refreshed.Err)
	assert.Contains(t, v.View(), "Failed to load dashboard data.")
}

func TestArchiveView(t *testing.T) {
	sh, srv := newTestShell(t)
	srv.SeedArchived(map[string]any{"task_id": "t9", "title": "Old essay", "archived_at": "2024-04-01T12:00:00"})
	v := NewArchiveView(context.Background(), sh.Archive, sh.Board, styles.NewStyles(styles.TokyoNight))
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	exec(t, v, v.Reload())
	assert.Len(t, v.list.Items(), 1)
	assert.Contains(t, v.View(), "Old essay")
}

func TestArchiveViewUnavailable(t *testing.T) {
	sh, srv := newTestShell(t)
	srv.DisableArchive()
	v := NewArchiveView(context.Background(), sh.Archive, sh.Board, styles.NewStyles(styles.TokyoNight))

	exec(t, v, v.Reload())
	assert.Contains(t, v.View(), "No archived tasks found or feature not yet available.")
}
