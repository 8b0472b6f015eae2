package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kairo/internal/entity"
	"github.com/tgienger/kairo/internal/ui/keys"
	"github.com/tgienger/kairo/internal/ui/styles"
	"github.com/tgienger/kairo/internal/view"
)

// DashboardRefreshed reports that a dashboard refresh finished
type DashboardRefreshed struct {
	Err error
}

// DashboardView shows the counters and recent activity
type DashboardView struct {
	ctx    context.Context
	dash   entity.Refresher
	board  *view.Board
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int
}

// NewDashboardView creates the dashboard page
func NewDashboardView(ctx context.Context, dash entity.Refresher, board *view.Board, s *styles.Styles) *DashboardView {
	return &DashboardView{ctx: ctx, dash: dash, board: board, styles: s, keys: keys.DefaultKeyMap()}
}

func (v *DashboardView) Title() string              { return "Dashboard" }
func (v *DashboardView) Capturing() bool            { return false }
func (v *DashboardView) SetStyles(s *styles.Styles) { v.styles = s }
func (v *DashboardView) Init() tea.Cmd              { return nil }

// Reload refreshes the dashboard in the background
func (v *DashboardView) Reload() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		return DashboardRefreshed{Err: v.dash.Refresh(ctx)}
	}
}

// Update handles messages
func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Reload) {
			return v, v.Reload()
		}
	}
	return v, nil
}

// View renders the view
func (v *DashboardView) View() string {
	s := v.styles
	dv, ok := view.LatestAs[view.DashboardView](v.board, view.DashboardContainer)
	if !ok {
		dv = view.DashboardView{State: view.StateLoading, Message: "Loading dashboard..."}
	}

	var body string
	switch dv.State {
	case view.StateLoading:
		body = s.TitleMuted.Render(dv.Message)
	case view.StateError:
		body = s.Error.Render(dv.Message)
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			v.renderStats(dv.Stats),
			"",
			s.Title.Render("Recent activity"),
			v.renderRecent(dv),
		)
	}

	help := s.Help.Render(s.HelpKey.Render("r") + " reload • " + s.HelpKey.Render("?") + " help")
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, body, help), v.width, v.height)
}

func (v *DashboardView) renderStats(st view.Stats) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	boxWidth := clamp(contentWidth/4-2, 12, 22)

	stat := func(value int, label string) string {
		return s.StatBox.Width(boxWidth).Render(
			lipgloss.JoinVertical(lipgloss.Center,
				s.StatValue.Render(fmt.Sprintf("%d", value)),
				s.StatLabel.Render(label),
			),
		)
	}

	boxes := []string{
		stat(st.TotalTasks, "Total tasks"),
		stat(st.PendingTasks, "Pending"),
		stat(st.UpcomingEvents, "Upcoming events"),
		stat(st.ActiveCourses, "Active courses"),
	}
	if contentWidth > 0 && contentWidth < 60 {
		return lipgloss.JoinVertical(lipgloss.Left, boxes...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (v *DashboardView) renderRecent(dv view.DashboardView) string {
	s := v.styles
	if len(dv.Recent) == 0 {
		return s.TitleMuted.Padding(0, 2).Render(dv.Placeholder)
	}
	width := max(styles.ContentWidth(v.width)-4, 20)
	rows := make([]string, 0, len(dv.Recent))
	for _, a := range dv.Recent {
		rows = append(rows, s.ListItem.Width(width).Render(kindIcon(a.Kind)+" "+a.Text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func kindIcon(kind string) string {
	switch kind {
	case "Task":
		return "✓"
	case "Event":
		return "◷"
	case "Course":
		return "▤"
	}
	return "•"
}
