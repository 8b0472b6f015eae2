package views

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/kairo/internal/chat"
	"github.com/tgienger/kairo/internal/ui/keys"
	"github.com/tgienger/kairo/internal/ui/styles"
	"github.com/tgienger/kairo/internal/view"
)

// Assistant is the chat channel a ChatView drives
type Assistant interface {
	Send(ctx context.Context, message string) error
	SetStyle(style string) error
	Style() string
}

// ChatReplied reports that a chat message finished
type ChatReplied struct {
	Err error
}

// ChatView shows the transcript and the message input
type ChatView struct {
	ctx       context.Context
	assistant Assistant
	board     *view.Board
	styleList []string
	styles    *styles.Styles
	keys      keys.KeyMap

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width    int
	height   int
	sending  bool
	rendered uint64
}

// NewChatView creates the chat page. styleList is cycled with the style key.
func NewChatView(ctx context.Context, assistant Assistant, board *view.Board, styleList []string, s *styles.Styles) *ChatView {
	input := textarea.New()
	input.Placeholder = "Ask Kairo to add a task, plan an event... (Enter to send)"
	input.CharLimit = 4096
	input.ShowLineNumbers = false
	input.SetHeight(2)
	input.SetWidth(60)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	v := &ChatView{
		ctx:       ctx,
		assistant: assistant,
		board:     board,
		styleList: styleList,
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		input:     input,
		viewport:  viewport.New(60, 10),
		spinner:   sp,
	}
	v.newRenderer()
	return v
}

func (v *ChatView) Title() string   { return "Chat" }
func (v *ChatView) Capturing() bool { return v.input.Focused() }
func (v *ChatView) Reload() tea.Cmd { return nil }

// SetStyles switches the color theme and the markdown style
func (v *ChatView) SetStyles(s *styles.Styles) {
	v.styles = s
	v.spinner.Style = s.Spinner
	v.newRenderer()
	v.refresh(true)
}

func (v *ChatView) newRenderer() {
	wrap := max(v.viewport.Width-4, 20)
	v.renderer, _ = glamour.NewTermRenderer(
		glamour.WithStandardStyle(v.styles.Theme.Glamour()),
		glamour.WithWordWrap(wrap),
	)
}

// Init initializes the view
func (v *ChatView) Init() tea.Cmd {
	return textarea.Blink
}

func (v *ChatView) current() view.ChatView {
	cv, _ := view.LatestAs[view.ChatView](v.board, view.ChatContainer)
	return cv
}

func (v *ChatView) busy() bool {
	return v.sending || v.current().Busy
}

// Update handles messages
func (v *ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.input.SetWidth(max(contentWidth-4, 20))
		v.viewport.Width = max(contentWidth-2, 20)
		v.viewport.Height = max(msg.Height-8, 3)
		v.newRenderer()
		v.refresh(true)
		return v, nil

	case ChatReplied:
		v.sending = false
		v.refresh(true)
		return v, nil

	case BoardUpdated:
		v.refresh(false)
		return v, nil

	case spinner.TickMsg:
		if !v.busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh(false)
		return v, cmd

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *ChatView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Style):
		return v, v.cycleStyle()

	case !v.input.Focused():
		switch {
		case key.Matches(msg, v.keys.Enter), msg.String() == "i":
			return v, v.input.Focus()
		case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.Down),
			msg.String() == "pgup", msg.String() == "pgdown":
			var cmd tea.Cmd
			v.viewport, cmd = v.viewport.Update(msg)
			return v, cmd
		}
		return v, nil

	case key.Matches(msg, v.keys.Back):
		v.input.Blur()
		return v, nil

	case msg.String() == "pgup", msg.String() == "pgdown":
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case key.Matches(msg, v.keys.Enter):
		return v, v.send()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// send posts the input. Input is ignored while a message is in flight.
func (v *ChatView) send() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	if text == "" || v.busy() {
		return nil
	}
	v.input.Reset()
	v.sending = true

	ctx := v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		err := v.assistant.Send(ctx, text)
		if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrBusy) {
			err = nil
		}
		return ChatReplied{Err: err}
	})
}

func (v *ChatView) cycleStyle() tea.Cmd {
	if len(v.styleList) == 0 {
		return nil
	}
	next := v.styleList[0]
	if i := slices.Index(v.styleList, v.assistant.Style()); i >= 0 {
		next = v.styleList[(i+1)%len(v.styleList)]
	}
	if err := v.assistant.SetStyle(next); err != nil {
		return nil
	}
	v.refresh(true)
	return nil
}

// refresh re-renders the transcript when the board changed or force is set
func (v *ChatView) refresh(force bool) {
	version := v.board.Version()
	if !force && version == v.rendered {
		return
	}
	v.rendered = version

	atBottom := v.viewport.AtBottom()
	v.viewport.SetContent(v.renderTranscript(v.current()))
	if atBottom || force {
		v.viewport.GotoBottom()
	}
}

func (v *ChatView) renderTranscript(cv view.ChatView) string {
	s := v.styles
	if len(cv.Entries) == 0 {
		return s.TitleMuted.Render("Say hello to Kairo. Try \"add a task to read chapter 3 by Friday\".")
	}

	var b strings.Builder
	for _, e := range cv.Entries {
		stamp := ""
		if !e.At.IsZero() {
			stamp = s.TitleMuted.Render(" " + e.At.Format("3:04 PM"))
		}
		switch e.Sender {
		case view.SenderUser:
			b.WriteString(s.UserMessage.Render("You") + stamp + "\n")
			b.WriteString(lipgloss.NewStyle().Width(max(v.viewport.Width-2, 20)).Render(e.Text) + "\n\n")
		case view.SenderAssistant:
			b.WriteString(s.AssistantMessage.Render("Kairo") + stamp + "\n")
			b.WriteString(v.markdown(e.Text) + "\n")
		default:
			b.WriteString(s.SystemMessage.Render(e.Text) + "\n\n")
		}
	}
	return b.String()
}

func (v *ChatView) markdown(text string) string {
	if v.renderer == nil {
		return text + "\n"
	}
	out, err := v.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return strings.TrimLeft(out, "\n")
}

// View renders the view
func (v *ChatView) View() string {
	s := v.styles

	status := s.StatusBar.Render("Style: " + v.assistant.Style() + " • " +
		s.HelpKey.Render("ctrl+y") + " change • " + s.HelpKey.Render("esc") + " scroll")
	if v.busy() {
		status = v.spinner.View() + s.TitleMuted.Render(" Kairo is thinking...")
	}

	inputStyle := s.Input
	if v.input.Focused() {
		inputStyle = s.InputFocused
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.viewport.View(),
		status,
		inputStyle.Render(v.input.View()),
	)
	return styles.CenterView(content, v.width, v.height)
}
