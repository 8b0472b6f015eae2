package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/kairo/internal/entity"
	"github.com/tgienger/kairo/internal/ui/keys"
	"github.com/tgienger/kairo/internal/ui/styles"
	"github.com/tgienger/kairo/internal/view"
)

// BoardUpdated asks pages to pick up new board content
type BoardUpdated struct{}

// ArchiveLoaded reports that the archive finished loading
type ArchiveLoaded struct {
	Err error
}

type cardItem struct {
	card view.Card
}

func (i cardItem) FilterValue() string { return i.card.Title }

type cardDelegate struct {
	styles *styles.Styles
	width  int
}

func (d *cardDelegate) Height() int                               { return 4 }
func (d *cardDelegate) Spacing() int                              { return 1 }
func (d *cardDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d *cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(cardItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	style := d.styles.ListItem.Width(width)
	title := d.styles.CardTitle
	if index == m.Index() {
		style = d.styles.ListSelected.Width(width)
		title = title.Foreground(d.styles.Theme.Primary)
	}

	rows := []string{title.Render(ci.card.Title)}
	for _, l := range ci.card.Lines {
		rows = append(rows, d.styles.CardLabel.Render(l.Label+": ")+l.Value)
	}
	for len(rows) < d.Height() {
		rows = append(rows, "")
	}

	fmt.Fprint(w, style.Render(strings.Join(rows[:d.Height()], "\n")))
}

// ArchiveView lists archived tasks. It is read-only.
type ArchiveView struct {
	ctx      context.Context
	archive  entity.Loader
	board    *view.Board
	list     list.Model
	delegate *cardDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
}

// NewArchiveView creates the archive page
func NewArchiveView(ctx context.Context, archive entity.Loader, board *view.Board, s *styles.Styles) *ArchiveView {
	delegate := &cardDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Archived tasks"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ArchiveView{
		ctx:      ctx,
		archive:  archive,
		board:    board,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *ArchiveView) Title() string   { return "Archive" }
func (v *ArchiveView) Init() tea.Cmd   { return nil }
func (v *ArchiveView) Capturing() bool { return v.list.SettingFilter() }

// SetStyles switches the color theme
func (v *ArchiveView) SetStyles(s *styles.Styles) {
	v.styles = s
	v.delegate.styles = s
	v.list.Styles.Title = s.Title
}

// Reload re-fetches archived tasks
func (v *ArchiveView) Reload() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		return ArchiveLoaded{Err: v.archive.Load(ctx)}
	}
}

func (v *ArchiveView) current() view.ListView {
	lv, ok := view.LatestAs[view.ListView](v.board, view.ArchiveContainer)
	if !ok {
		return view.ListView{State: view.StateLoading, Message: "Loading archived tasks..."}
	}
	return lv
}

func (v *ArchiveView) sync() {
	lv := v.current()
	items := make([]list.Item, 0, len(lv.Cards))
	for _, c := range lv.Cards {
		items = append(items, cardItem{card: c})
	}
	v.list.SetItems(items)
}

// Update handles messages
func (v *ArchiveView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-4)
		return v, nil

	case ArchiveLoaded, BoardUpdated:
		v.sync()
		return v, nil

	case tea.KeyMsg:
		if !v.list.SettingFilter() && key.Matches(msg, v.keys.Reload) {
			return v, v.Reload()
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View renders the view
func (v *ArchiveView) View() string {
	s := v.styles
	lv := v.current()

	var content string
	switch lv.State {
	case view.StateReady:
		content = v.list.View()
	case view.StateError:
		content = s.Title.Render("Archived tasks") + "\n\n" + s.Error.Render(lv.Message)
	default:
		content = s.Title.Render("Archived tasks") + "\n\n" + s.TitleMuted.Render(lv.Message)
	}

	help := s.Help.Render(s.HelpKey.Render("/") + " filter • " + s.HelpKey.Render("r") + " reload")
	return styles.CenterView(content+"\n"+help, v.width, v.height)
}
