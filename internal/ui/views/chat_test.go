package views

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/ui/styles"
	"github.com/tgienger/kairo/internal/view"
)

// drain runs cmd, expanding batches, and feeds every message into v
func drain(v tea.Model, cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(v, c)...)
		}
		return out
	}
	v.Update(msg)
	return []tea.Msg{msg}
}

func TestChatViewSend(t *testing.T) {
	sh, _ := newTestShell(t)
	v := NewChatView(context.Background(), sh.Chat, sh.Board, sh.Config.Chat.Styles, styles.NewStyles(styles.TokyoNight))
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	require.True(t, v.Capturing())

	v.Update(keyRunes("hello"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, v.busy())
	assert.Empty(t, v.input.Value())

	msgs := drain(v, cmd)
	assert.Contains(t, msgs, tea.Msg(ChatReplied{}))
	assert.False(t, v.busy())

	cv, ok := view.LatestAs[view.ChatView](sh.Board, view.ChatContainer)
	require.True(t, ok)
	require.Len(t, cv.Entries, 2)
	assert.Equal(t, "You said: hello", cv.Entries[1].Text)
	assert.Contains(t, v.View(), "hello")
}

func TestChatViewIgnoresBlankAndBusy(t *testing.T) {
	sh, _ := newTestShell(t)
	v := NewChatView(context.Background(), sh.Chat, sh.Board, sh.Config.Chat.Styles, styles.NewStyles(styles.TokyoNight))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	v.sending = true
	v.Update(keyRunes("again"))
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "again", v.input.Value())
}

func TestChatViewCyclesStyle(t *testing.T) {
	sh, _ := newTestShell(t)
	v := NewChatView(context.Background(), sh.Chat, sh.Board, sh.Config.Chat.Styles, styles.NewStyles(styles.TokyoNight))

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "concise", sh.Chat.Style())
	assert.Equal(t, "concise", sh.Settings.ChatStyle())

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "friendly", sh.Chat.Style())

	cv, _ := view.LatestAs[view.ChatView](sh.Board, view.ChatContainer)
	require.NotEmpty(t, cv.Entries)
	assert.Equal(t, `My response style has been set to "friendly".`, cv.Entries[len(cv.Entries)-1].Text)
}

func TestChatViewEscReleasesKeys(t *testing.T) {
	sh, _ := newTestShell(t)
	v := NewChatView(context.Background(), sh.Chat, sh.Board, sh.Config.Chat.Styles, styles.NewStyles(styles.TokyoNight))

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.Capturing())

	v.Update(keyRunes("i"))
	assert.True(t, v.Capturing())
}

func TestChatViewSwitchesTheme(t *testing.T) {
	sh, _ := newTestShell(t)
	v := NewChatView(context.Background(), sh.Chat, sh.Board, sh.Config.Chat.Styles, styles.NewStyles(styles.TokyoNight))
	v.SetStyles(styles.NewStyles(styles.TokyoNightDay))
	assert.NotNil(t, v.renderer)
	assert.Equal(t, "light", v.styles.Theme.Glamour())
}
