package bridge

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/remote/remotetest"
)

type recordingHost struct {
	channels []string
}

func (h *recordingHost) Handle(_ context.Context, channel string, payload any, reply Reply) {
	h.channels = append(h.channels, channel)
	reply(TasksResponse, payload)
	reply("secrets", payload)
}

func TestWhitelist(t *testing.T) {
	host := &recordingHost{}
	b := New(host, nil)

	var got []any
	b.Receive(TasksResponse, func(p any) { got = append(got, p) })
	b.Receive("secrets", func(p any) { t.Fatal("listener on a non-whitelisted channel must never fire") })

	b.Send(context.Background(), "shell:exec", "rm -rf /")
	b.Send(context.Background(), GetTasks, "ok")

	assert.Equal(t, []string{GetTasks}, host.channels)
	assert.Equal(t, []any{"ok"}, got)

	assert.ErrorIs(t, CheckOutbound("openExternal"), ErrChannelNotAllowed)
	assert.NoError(t, CheckOutbound(Command))
	assert.ErrorIs(t, CheckInbound(Command), ErrChannelNotAllowed)
	assert.NoError(t, CheckInbound(Error))
}

func TestDueWithin(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{Title: "this morning", Due: models.ParseTimestamp("2024-03-10T08:00:00")},
		{Title: "tonight", Due: models.ParseTimestamp("2024-03-10T23:59:59")},
		{Title: "in six days", Due: models.ParseTimestamp("2024-03-16T12:00:00")},
		{Title: "in seven days", Due: models.ParseTimestamp("2024-03-17T00:00:00")},
		{Title: "yesterday", Due: models.ParseTimestamp("2024-03-09T12:00:00")},
		{Title: "someday"},
	}

	titles := func(ts []models.Task) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.Title)
		}
		return out
	}

	assert.Equal(t, []string{"this morning", "tonight"}, titles(DueWithin(tasks, now, 1)))
	assert.Equal(t, []string{"this morning", "tonight", "in six days"}, titles(DueWithin(tasks, now, 7)))
	assert.Equal(t, []string{"this morning", "tonight", "in six days", "in seven days"}, titles(DueWithin(tasks, now, 30)))
}

func TestTaskHost(t *testing.T) {
	srv := remotetest.New()
	defer srv.Close()
	srv.Seed("tasks", map[string]any{"task_id": "a", "title": "today", "due_datetime": "2024-03-10T18:00:00"})
	srv.Seed("tasks", map[string]any{"task_id": "b", "title": "later", "due_datetime": "2024-04-30T18:00:00"})
	srv.SetChat(func(req models.ChatRequest) (int, any) {
		assert.Equal(t, "concise", req.Style)
		return http.StatusOK, models.ChatReply{Response: "Done."}
	})

	client := remote.NewClient(srv.URL, "user123", 0, nil, nil)
	host := NewTaskHost(client, func() string { return "concise" }, models.FixedClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)), nil)
	b := New(host, nil)

	var tasks []models.Task
	var reply *models.ChatReply
	var errs []any
	b.Receive(TasksResponse, func(p any) { tasks = p.([]models.Task) })
	b.Receive(CommandResponse, func(p any) { reply = p.(*models.ChatReply) })
	b.Receive(Error, func(p any) { errs = append(errs, p) })

	b.Send(context.Background(), GetTasks, nil)
	assert.Len(t, tasks, 2)

	b.Send(context.Background(), GetDailyTasks, nil)
	require.Len(t, tasks, 1)
	assert.Equal(t, "today", tasks[0].Title)

	b.Send(context.Background(), Command, "what's due?")
	require.NotNil(t, reply)
	assert.Equal(t, "Done.", reply.Response)

	b.Send(context.Background(), Command, 42)
	srv.Fail(http.MethodGet, "/tasks", http.StatusInternalServerError, `{"error":"db locked"}`)
	b.Send(context.Background(), GetWeeklyTasks, nil)
	assert.Equal(t, []any{"command payload must be a non-empty string", "db locked"}, errs)
}
