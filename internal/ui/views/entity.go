package views

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kairo/internal/entity"
	"github.com/tgienger/kairo/internal/ui/keys"
	"github.com/tgienger/kairo/internal/ui/styles"
	"github.com/tgienger/kairo/internal/view"
)

// EntityController is what an entity page drives
type EntityController interface {
	Kind() entity.Kind
	Plural() string
	Actions() []string
	Load(ctx context.Context) error
	ResetForm()
	Create(ctx context.Context, form entity.Form) error
	Edit(ctx context.Context, id string) error
	CloseModal()
	SaveEdit(ctx context.Context, id string, form entity.Form) error
	DeletePrompt() string
	Remove(ctx context.Context, id string, confirm view.Confirmer) error
	Invoke(ctx context.Context, name, id string) error
}

type entityMode int

const (
	modeList entityMode = iota
	modeCreate
	modeEdit
	modeConfirm
)

// Operations reported by EntityDone
const (
	OpLoad   = "load"
	OpCreate = "create"
	OpEdit   = "edit"
	OpSave   = "save"
	OpDelete = "delete"
	OpAction = "action"
)

// EntityDone reports that a background operation on kind finished
type EntityDone struct {
	Kind entity.Kind
	Op   string
	ID   string
	Err  error
}

// EntityView lists one entity kind and hosts its create form, edit
// dialog and delete prompt. Content comes from the board.
type EntityView struct {
	ctx    context.Context
	ctl    EntityController
	board  *view.Board
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	cursor  int
	scrollY int

	mode      entityMode
	form      *formEditor
	formErr   string
	editID    string
	pending   bool
	confirmID string

	// Help popup (shown with ?)
	showHelpPopup bool
}

// NewEntityView creates a page for ctl
func NewEntityView(ctx context.Context, ctl EntityController, board *view.Board, s *styles.Styles) *EntityView {
	return &EntityView{
		ctx:    ctx,
		ctl:    ctl,
		board:  board,
		styles: s,
		keys:   keys.DefaultKeyMap(),
	}
}

// Title is the tab label
func (v *EntityView) Title() string {
	return strings.ToUpper(v.ctl.Plural()[:1]) + v.ctl.Plural()[1:]
}

// Capturing reports whether keys are going into a form or prompt
func (v *EntityView) Capturing() bool {
	return v.mode != modeList || v.showHelpPopup
}

// SetStyles switches the color theme
func (v *EntityView) SetStyles(s *styles.Styles) {
	v.styles = s
	if v.form != nil {
		v.form.styles = s
	}
}

// Init initializes the view
func (v *EntityView) Init() tea.Cmd {
	return nil
}

// Reload re-fetches the list
func (v *EntityView) Reload() tea.Cmd {
	return v.run(OpLoad, "", func(ctx context.Context) error { return v.ctl.Load(ctx) })
}

func (v *EntityView) run(op, id string, fn func(ctx context.Context) error) tea.Cmd {
	kind := v.ctl.Kind()
	ctx := v.ctx
	return func() tea.Msg {
		return EntityDone{Kind: kind, Op: op, ID: id, Err: fn(ctx)}
	}
}

func (v *EntityView) list() view.ListView {
	lv, ok := view.LatestAs[view.ListView](v.board, view.ListContainer(string(v.ctl.Kind())))
	if !ok {
		return view.ListView{State: view.StateLoading, Message: "Loading " + v.ctl.Plural() + "..."}
	}
	return lv
}

func (v *EntityView) cards() []view.Card {
	lv := v.list()
	if lv.State != view.StateReady {
		return nil
	}
	return lv.Cards
}

func (v *EntityView) selected() (view.Card, bool) {
	cards := v.cards()
	if len(cards) == 0 {
		return view.Card{}, false
	}
	return cards[clamp(v.cursor, 0, len(cards)-1)], true
}

// Update handles messages
func (v *EntityView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case EntityDone:
		if msg.Kind != v.ctl.Kind() {
			return v, nil
		}
		return v.done(msg)

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		switch v.mode {
		case modeConfirm:
			return v.updateConfirmDelete(msg)
		case modeCreate, modeEdit:
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *EntityView) done(msg EntityDone) (tea.Model, tea.Cmd) {
	v.pending = false
	switch msg.Op {
	case OpCreate:
		if msg.Err == nil {
			v.mode = modeList
			v.form = nil
			return v, nil
		}
		v.formErr = errorText(msg.Err)

	case OpEdit:
		if msg.Err != nil {
			v.mode = modeList
			return v, nil
		}
		if v.mode != modeEdit {
			// cancelled while loading
			v.ctl.CloseModal()
			return v, nil
		}
		modal, ok := view.LatestAs[view.ModalView](v.board, view.ModalContainer(string(v.ctl.Kind())))
		if !ok {
			v.mode = modeList
			return v, nil
		}
		v.editID = msg.ID
		v.form = newFormEditor(modal.Fields, v.styles, v.keys, styles.ContentWidth(v.width))
		v.formErr = ""
		return v, textinput.Blink

	case OpSave:
		if msg.Err == nil {
			v.mode = modeList
			v.form = nil
			return v, nil
		}
		v.formErr = errorText(msg.Err)
		if modal, ok := view.LatestAs[view.ModalView](v.board, view.ModalContainer(string(v.ctl.Kind()))); ok && modal.Error != "" {
			v.formErr = modal.Error
		}
	}

	if n := len(v.cards()); v.cursor >= n {
		v.cursor = max(0, n-1)
	}
	return v, nil
}

// errorText prefers the validation message, which is already user facing
func errorText(err error) string {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

func (v *EntityView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cards := v.cards()

	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(cards)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Reload):
		return v, v.Reload()

	case key.Matches(msg, v.keys.New):
		v.startCreate()
		return v, tea.Batch(textinput.Blink, textarea.Blink)

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		card, ok := v.selected()
		if !ok || v.pending {
			return v, nil
		}
		v.mode = modeEdit
		v.form = nil
		v.pending = true
		return v, v.run(OpEdit, card.ID, func(ctx context.Context) error { return v.ctl.Edit(ctx, card.ID) })

	case key.Matches(msg, v.keys.Delete):
		if card, ok := v.selected(); ok {
			v.mode = modeConfirm
			v.confirmID = card.ID
		}
		return v, nil

	case key.Matches(msg, v.keys.Complete):
		card, ok := v.selected()
		if !ok || !slices.Contains(v.ctl.Actions(), "complete") || !slices.Contains(card.Actions, "complete") {
			return v, nil
		}
		return v, v.run(OpAction, card.ID, func(ctx context.Context) error { return v.ctl.Invoke(ctx, "complete", card.ID) })

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *EntityView) startCreate() {
	v.mode = modeCreate
	v.formErr = ""
	fv, ok := view.LatestAs[view.FormView](v.board, view.FormContainer(string(v.ctl.Kind())))
	if !ok {
		v.ctl.ResetForm()
		fv, _ = view.LatestAs[view.FormView](v.board, view.FormContainer(string(v.ctl.Kind())))
	}
	v.form = newFormEditor(fv.Fields, v.styles, v.keys, styles.ContentWidth(v.width))
}

func (v *EntityView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.form == nil {
		// still waiting for the edit dialog
		if key.Matches(msg, v.keys.Back) {
			v.mode = modeList
		}
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		if v.mode == modeEdit {
			v.ctl.CloseModal()
		}
		v.mode = modeList
		v.form = nil
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.save()
	}

	submit, cmd := v.form.Update(msg)
	if submit {
		return v, v.save()
	}
	return v, cmd
}

func (v *EntityView) save() tea.Cmd {
	if v.pending {
		return nil
	}
	v.pending = true
	form := v.form.Values()
	if v.mode == modeEdit {
		id := v.editID
		return v.run(OpSave, id, func(ctx context.Context) error { return v.ctl.SaveEdit(ctx, id, form) })
	}
	return v.run(OpCreate, "", func(ctx context.Context) error { return v.ctl.Create(ctx, form) })
}

func (v *EntityView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := v.confirmID
	switch {
	case key.Matches(msg, v.keys.Confirm):
		v.mode = modeList
		return v, v.run(OpDelete, id, func(ctx context.Context) error {
			return v.ctl.Remove(ctx, id, view.Answer(true))
		})
	case key.Matches(msg, v.keys.Cancel):
		v.mode = modeList
		return v, v.run(OpDelete, id, func(ctx context.Context) error {
			return v.ctl.Remove(ctx, id, view.Answer(false))
		})
	}
	return v, nil
}

func (v *EntityView) visibleItems() int {
	// Each card is about 4 lines plus a margin
	return max((v.height-6)/5, 1)
}

func (v *EntityView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *EntityView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	switch v.mode {
	case modeConfirm:
		return v.renderDeleteConfirm()
	case modeCreate:
		return styles.CenterView(v.form.View("New "+v.singular(), v.formErr), v.width, v.height)
	case modeEdit:
		if v.form == nil {
			return v.styles.TitleMuted.Render("Loading " + v.singular() + " details...")
		}
		heading := "Edit " + v.singular()
		if modal, ok := view.LatestAs[view.ModalView](v.board, view.ModalContainer(string(v.ctl.Kind()))); ok && modal.Heading != "" {
			heading = modal.Heading
		}
		return styles.CenterView(v.form.View(heading, v.formErr), v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(v.renderList())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *EntityView) singular() string {
	k := string(v.ctl.Kind())
	return strings.ToUpper(k[:1]) + k[1:]
}

func (v *EntityView) renderList() string {
	s := v.styles
	lv := v.list()

	switch lv.State {
	case view.StateLoading:
		return s.TitleMuted.Render(lv.Message)
	case view.StateError:
		return s.Error.Render(lv.Message)
	case view.StateEmpty:
		return s.TitleMuted.Render(lv.Message)
	}

	width := max(styles.ContentWidth(v.width)-4, 20)
	endIdx := min(v.scrollY+v.visibleItems(), len(lv.Cards))
	var items []string
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, renderCard(s, lv.Cards[i], i == v.cursor, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

// renderCard draws a card: title and badges, then one line per field
func renderCard(s *styles.Styles, c view.Card, selected bool, width int) string {
	badges := make([]string, 0, len(c.Badges))
	for _, b := range c.Badges {
		badges = append(badges, s.Tone(b.Tone).Render(b.Text))
	}

	title := s.CardTitle.Render(c.Title)
	if len(badges) > 0 {
		title += "  " + strings.Join(badges, "")
	}

	rows := []string{title}
	for _, l := range c.Lines {
		rows = append(rows, s.CardLabel.Render(l.Label+": ")+l.Value)
	}

	card := s.Card.Width(width)
	if selected {
		card = card.BorderForeground(s.Theme.BorderFocus)
	}
	return card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (v *EntityView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}

	parts := []string{
		s.HelpKey.Render("n") + " new",
		s.HelpKey.Render("e") + " edit",
		s.HelpKey.Render("d") + " del",
	}
	if slices.Contains(v.ctl.Actions(), "complete") {
		parts = append(parts, s.HelpKey.Render("c")+" complete")
	}
	parts = append(parts,
		s.HelpKey.Render("r")+" reload",
		s.HelpKey.Render("?")+" help",
	)
	return s.Help.Render(strings.Join(parts, " • "))
}

func (v *EntityView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↑/↓") + "    move",
		s.HelpKey.Render("n") + "      new " + string(v.ctl.Kind()),
		s.HelpKey.Render("e/↵") + "    edit " + string(v.ctl.Kind()),
		s.HelpKey.Render("d") + "      delete " + string(v.ctl.Kind()),
	}
	if slices.Contains(v.ctl.Actions(), "complete") {
		helpItems = append(helpItems, s.HelpKey.Render("c")+"      mark completed")
	}
	helpItems = append(helpItems,
		s.HelpKey.Render("r")+"      reload",
		s.HelpKey.Render("1-6")+"    switch view",
		s.HelpKey.Render("ctrl+t")+" toggle theme",
		s.HelpKey.Render("q")+"      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *EntityView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(s.Theme.Error).Render(fmt.Sprintf("Delete %s?", v.singular())),
		"",
		s.TitleMuted.Width(clamp(contentWidth-10, 20, 60)).Render(v.ctl.DeletePrompt()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
