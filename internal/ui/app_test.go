package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/config"
	"github.com/tgienger/kairo/internal/prefs"
	"github.com/tgienger/kairo/internal/remote/remotetest"
	"github.com/tgienger/kairo/internal/shell"
	"github.com/tgienger/kairo/internal/view"
)

func newTestApp(t *testing.T) (*App, *remotetest.Server, *prefs.Memory) {
	t.Helper()
	srv := remotetest.New()
	t.Cleanup(srv.Close)

	store := prefs.NewMemory(nil)
	cfg := &config.Config{
		API:  config.APIConfig{BaseURL: srv.URL, UserID: "user123"},
		UI:   config.UIConfig{DefaultTheme: "dark"},
		Chat: config.ChatConfig{DefaultStyle: "friendly", Styles: []string{"friendly", "concise"}},
	}
	sh, err := shell.New(cfg, nil, shell.Options{Store: store})
	require.NoError(t, err)

	app := NewApp(context.Background(), sh)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, srv, store
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppStartLoadsEverything(t *testing.T) {
	app, srv, _ := newTestApp(t)
	srv.Seed("tasks", map[string]any{"title": "Read", "priority": "low", "status": "pending"})

	msg := app.start()
	require.Equal(t, started{}, msg)
	app.Update(msg)

	assert.Equal(t, 2, srv.Count("GET", "/tasks"))
	assert.Equal(t, 1, srv.Count("GET", "/tasks/archived"))
	assert.Contains(t, app.View(), "Total tasks")
}

func TestAppNumberKeysSwitchViews(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Update(keyRunes("2"))
	assert.Equal(t, ViewTasks, app.currentView)

	app.Update(keyRunes("5"))
	assert.Equal(t, ViewArchive, app.currentView)

	app.Update(keyRunes("6"))
	assert.Equal(t, ViewChat, app.currentView)

	// the chat input owns plain keys
	app.Update(keyRunes("1"))
	assert.Equal(t, ViewChat, app.currentView)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, ViewDashboard, app.currentView)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, ViewChat, app.currentView)
}

func TestAppToggleThemePersists(t *testing.T) {
	app, _, store := newTestApp(t)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "light", app.shell.Settings.Theme())
	saved, err := store.Get(prefs.ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, "light", saved)
	assert.False(t, app.styles.Theme.IsDark)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.True(t, app.styles.Theme.IsDark)
}

func TestAppQuit(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestAppShowsNotice(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.shell.Board.Render(view.NoticeContainer, view.Notice{Level: view.LevelError, Text: "Error: backend unreachable."})
	assert.Contains(t, app.View(), "Error: backend unreachable.")
}

// drain runs cmd and feeds every resulting message back into app
func drain(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(app, c)
		}
	default:
		_, next := app.Update(msg)
		drain(app, next)
	}
}

func TestAppSwitchReloadsView(t *testing.T) {
	app, srv, _ := newTestApp(t)
	srv.Seed("tasks", map[string]any{"title": "Read chapter 4", "priority": "low", "status": "pending"})

	_, cmd := app.Update(keyRunes("2"))
	drain(app, cmd)
	assert.Equal(t, 1, srv.Count("GET", "/tasks"))
	assert.Contains(t, app.View(), "Read chapter 4")

	_, cmd = app.Update(keyRunes("1"))
	drain(app, cmd)
	assert.Equal(t, 2, srv.Count("GET", "/tasks"))
	assert.Equal(t, 1, srv.Count("GET", "/events"))
	assert.Equal(t, 1, srv.Count("GET", "/courses"))

	_, cmd = app.Update(keyRunes("5"))
	drain(app, cmd)
	assert.Equal(t, 1, srv.Count("GET", "/tasks/archived"))

	before := srv.Count("", "")
	_, cmd = app.Update(keyRunes("6"))
	drain(app, cmd)
	assert.Equal(t, before, srv.Count("", ""), "chat has nothing to fetch")
}
