package chat

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/prefs"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/remote/remotetest"
	"github.com/tgienger/kairo/internal/view"
)

type counter struct{ n atomic.Int32 }

func (c *counter) Load(context.Context) error    { c.n.Add(1); return nil }
func (c *counter) Refresh(context.Context) error { c.n.Add(1); return nil }

type fixture struct {
	srv     *remotetest.Server
	board   *view.Board
	store   *prefs.Memory
	channel *Channel
	dash    *counter
	tasks   *counter
	events  *counter
	courses *counter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := remotetest.New()
	t.Cleanup(srv.Close)

	store := prefs.NewMemory(nil)
	settings, err := prefs.Load(store, prefs.Defaults{Theme: prefs.ThemeDark, Style: "friendly"})
	require.NoError(t, err)

	f := &fixture{
		srv:     srv,
		board:   view.NewRecorder(view.ChatContainer),
		store:   store,
		dash:    &counter{},
		tasks:   &counter{},
		events:  &counter{},
		courses: &counter{},
	}
	client := remote.NewClient(srv.URL, "user123", 0, nil, nil)
	f.channel = New(client, f.board, settings, f.dash, nil)
	f.channel.Route([]string{"task"}, f.tasks)
	f.channel.Route([]string{"event", "calendar"}, f.events)
	f.channel.Route([]string{"course"}, f.courses)
	return f
}

func TestSendEmpty(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.channel.Send(context.Background(), "   \n"), ErrEmptyMessage)
	assert.Zero(t, f.srv.Count("", ""))
	assert.Empty(t, f.channel.Transcript())
}

func TestSendRoutesParsedAction(t *testing.T) {
	f := newFixture(t)
	f.srv.SetChat(func(req models.ChatRequest) (int, any) {
		assert.Equal(t, "user123", req.UserID)
		assert.Equal(t, "friendly", req.Style)
		return http.StatusOK, map[string]any{
			"response":      "I've added **Buy milk** to your tasks.",
			"parsed_action": map[string]any{"action": "create_task"},
		}
	})

	require.NoError(t, f.channel.Send(context.Background(), "  remind me to buy milk "))

	transcript := f.channel.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, view.SenderUser, transcript[0].Sender)
	assert.Equal(t, "remind me to buy milk", transcript[0].Text)
	assert.Equal(t, view.SenderAssistant, transcript[1].Sender)

	assert.EqualValues(t, 1, f.tasks.n.Load())
	assert.Zero(t, f.events.n.Load())
	assert.Zero(t, f.courses.n.Load())
	assert.EqualValues(t, 1, f.dash.n.Load())
}

func TestSendWithoutActionStillRefreshesDashboard(t *testing.T) {
	f := newFixture(t)
	f.srv.SetChat(func(req models.ChatRequest) (int, any) {
		return http.StatusOK, map[string]any{"response": "Hello!", "parsed_action": map[string]any{"action": "schedule_calendar_entry"}}
	})
	require.NoError(t, f.channel.Send(context.Background(), "hi"))
	assert.EqualValues(t, 1, f.events.n.Load())
	assert.EqualValues(t, 1, f.dash.n.Load())

	f.srv.SetChat(func(req models.ChatRequest) (int, any) {
		return http.StatusOK, map[string]any{"response": "Just chatting."}
	})
	require.NoError(t, f.channel.Send(context.Background(), "how are you"))
	assert.EqualValues(t, 1, f.events.n.Load())
	assert.Zero(t, f.tasks.n.Load())
	assert.EqualValues(t, 2, f.dash.n.Load())
}

func TestSendFailure(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail(http.MethodPost, "/chat", http.StatusInternalServerError, `{"error":"model unavailable"}`)

	err := f.channel.Send(context.Background(), "plan my week")
	require.Error(t, err)

	transcript := f.channel.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, view.SenderAssistant, transcript[1].Sender)
	assert.Equal(t,
		"I'm sorry, I encountered an error: model unavailable. Please try again. Ensure your backend server is running and accessible at "+f.srv.URL+".",
		transcript[1].Text)

	assert.False(t, f.channel.Busy())
	cv, ok := view.LatestAs[view.ChatView](f.board, view.ChatContainer)
	require.True(t, ok)
	assert.False(t, cv.Busy)
	assert.Len(t, cv.Entries, 2)

	history := view.HistoryOf[view.ChatView](f.board, view.ChatContainer)
	assert.True(t, history[0].Busy, "input must be disabled while the request is in flight")
	assert.Zero(t, f.dash.n.Load())
}

func TestSendWhileBusy(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.srv.SetChat(func(req models.ChatRequest) (int, any) {
		<-release
		return http.StatusOK, map[string]any{"response": "done"}
	})

	done := make(chan error, 1)
	go func() { done <- f.channel.Send(context.Background(), "first") }()

	require.Eventually(t, f.channel.Busy, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, f.channel.Send(context.Background(), "second"), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.srv.Count(http.MethodPost, "/chat"))
	assert.Len(t, f.channel.Transcript(), 2)
}

func TestSetStyle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.channel.SetStyle("concise"))

	stored, _ := f.store.Get(prefs.StyleKey)
	assert.Equal(t, "concise", stored)
	assert.Equal(t, "concise", f.channel.Style())

	transcript := f.channel.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, `My response style has been set to "concise".`, transcript[0].Text)

	f.srv.SetChat(func(req models.ChatRequest) (int, any) {
		assert.Equal(t, "concise", req.Style)
		return http.StatusOK, map[string]any{"response": "ok"}
	})
	require.NoError(t, f.channel.Send(context.Background(), "hi"))
}
