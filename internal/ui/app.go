package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/tgienger/kairo/internal/shell"
	"github.com/tgienger/kairo/internal/ui/keys"
	"github.com/tgienger/kairo/internal/ui/styles"
	"github.com/tgienger/kairo/internal/ui/views"
	"github.com/tgienger/kairo/internal/view"
)

// Page is one tab of the application
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Model, tea.Cmd)
	View() string
	Title() string
	// Capturing reports whether plain keys belong to the page, e.g. while typing
	Capturing() bool
	SetStyles(s *styles.Styles)
	// Reload re-fetches what the page shows; nil when there is nothing to fetch
	Reload() tea.Cmd
}

// Currently active view
type View int

const (
	ViewDashboard View = iota
	ViewTasks
	ViewEvents
	ViewCourses
	ViewArchive
	ViewChat
)

// chrome is the number of lines used by the tab bar and notice line
const chrome = 3

// started reports that the backend is up and the first load finished
type started struct {
	err error
}

type App struct {
	ctx    context.Context
	shell  *shell.Shell
	keys   keys.KeyMap
	styles *styles.Styles

	pages       []Page
	currentView View
	width       int
	height      int
}

// NewApp creates a new application over sh. ctx bounds every request.
func NewApp(ctx context.Context, sh *shell.Shell) *App {
	s := styles.NewStyles(styles.ForName(sh.Settings.Theme()))
	board := sh.Board

	return &App{
		ctx:    ctx,
		shell:  sh,
		keys:   keys.DefaultKeyMap(),
		styles: s,
		pages: []Page{
			views.NewDashboardView(ctx, sh.Dashboard, board, s),
			views.NewEntityView(ctx, sh.Tasks, board, s),
			views.NewEntityView(ctx, sh.Events, board, s),
			views.NewEntityView(ctx, sh.Courses, board, s),
			views.NewArchiveView(ctx, sh.Archive, board, s),
			views.NewChatView(ctx, sh.Chat, board, sh.Config.Chat.Styles, s),
		},
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.start}
	for _, p := range a.pages {
		cmds = append(cmds, p.Init())
	}
	return tea.Batch(cmds...)
}

// start launches the backend, then loads every view
func (a *App) start() tea.Msg {
	err := a.shell.Start(a.ctx)
	if err != nil {
		a.shell.Board.Render(view.NoticeContainer, view.Notice{
			Level: view.LevelError,
			Text:  fmt.Sprintf("Backend did not start: %s", err),
		})
	}
	a.shell.LoadAll(a.ctx)
	return started{err: err}
}

func (a *App) page() Page {
	return a.pages[a.currentView]
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, a.broadcast(tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-chrome, 1)})

	case started:
		return a, a.broadcast(views.BoardUpdated{})

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case views.EntityDone, views.ArchiveLoaded, views.DashboardRefreshed, views.ChatReplied:
		// A mutation can change any container
		return a, tea.Batch(a.broadcast(msg), a.broadcast(views.BoardUpdated{}))
	}

	return a, a.broadcast(msg)
}

// broadcast sends a non-key message to every page
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.pages))
	for _, p := range a.pages {
		_, cmd := p.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	capturing := a.page().Capturing()

	switch {
	case msg.String() == "ctrl+c":
		return a, tea.Quit

	case key.Matches(msg, a.keys.NextView):
		return a, a.switchTo(View((int(a.currentView) + 1) % len(a.pages)))

	case key.Matches(msg, a.keys.PrevView):
		return a, a.switchTo(View((int(a.currentView) + len(a.pages) - 1) % len(a.pages)))

	case key.Matches(msg, a.keys.Theme):
		a.toggleTheme()
		return a, nil
	}

	if !capturing {
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case len(msg.Runes) == 1 && msg.Runes[0] >= '1' && int(msg.Runes[0]-'1') < len(a.pages):
			return a, a.switchTo(View(msg.Runes[0] - '1'))
		}
	}

	_, cmd := a.page().Update(msg)
	return a, cmd
}

func (a *App) switchTo(v View) tea.Cmd {
	a.currentView = v
	_, cmd := a.page().Update(views.BoardUpdated{})
	return tea.Batch(cmd, a.page().Reload())
}

func (a *App) toggleTheme() {
	theme, err := a.shell.Settings.ToggleTheme()
	if err != nil {
		a.shell.Log.WithError(err).Warnw("Failed to save theme")
	}
	a.styles = styles.NewStyles(styles.ForName(theme))
	for _, p := range a.pages {
		p.SetStyles(a.styles)
	}
}

func (a *App) View() string {
	header := a.renderTabs()
	notice := a.renderNotice()
	return lipgloss.JoinVertical(lipgloss.Left, header, notice, "", a.page().View())
}

func (a *App) renderTabs() string {
	s := a.styles
	tabs := make([]string, 0, len(a.pages))
	for i, p := range a.pages {
		label := fmt.Sprintf("%d %s", i+1, p.Title())
		if View(i) == a.currentView {
			tabs = append(tabs, s.TabActive.Render(label))
		} else {
			tabs = append(tabs, s.Tab.Render(label))
		}
	}
	bar := s.Title.Render("Kairo") + "  " + strings.Join(tabs, "")
	if a.width > 0 {
		bar = ansi.Truncate(bar, a.width, "…")
	}
	return s.TitleBar.Render(bar)
}

func (a *App) renderNotice() string {
	n, ok := view.LatestAs[view.Notice](a.shell.Board, view.NoticeContainer)
	if !ok || n.Text == "" {
		return ""
	}
	text := n.Text
	if a.width > 0 {
		text = ansi.Truncate(text, max(a.width-2, 1), "…")
	}
	return a.styles.Notice(n.Level).Render(text)
}
