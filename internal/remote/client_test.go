package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/remote/remotetest"
)

func newClient(t *testing.T) (*remote.Client, *remotetest.Server) {
	t.Helper()
	srv := remotetest.New()
	t.Cleanup(srv.Close)
	return remote.NewClient(srv.URL+"/", "user123", 0, nil, nil), srv
}

func TestListOf(t *testing.T) {
	client, srv := newClient(t)
	srv.Seed("tasks", map[string]any{"task_id": "t1", "title": "Write report", "priority": "high"})
	srv.Seed("tasks", map[string]any{"task_id": "t2", "title": "Call mom", "due_datetime": nil})

	tasks, err := remote.ListOf[models.Task](context.Background(), client, remote.TasksPath, remote.TasksKey)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Write report", tasks[0].Title)
	assert.False(t, tasks[1].Due.Present())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "user123", reqs[0].UserID)
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestListNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "user123", 0, nil, nil)
	events, err := remote.ListOf[models.Event](context.Background(), client, remote.EventsPath, remote.EventsKey)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStatusErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"model unavailable"}`, "model unavailable"},
		{"message field", `{"message":"bad input"}`, "bad input"},
		{"no body", ``, "HTTP error! status: 500"},
		{"not json", `<html>oops</html>`, "HTTP error! status: 500"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, srv := newClient(t)
			srv.Fail(http.MethodGet, "/courses", http.StatusInternalServerError, tc.body)

			_, err := client.List(context.Background(), remote.CoursesPath, remote.CoursesKey)
			require.Error(t, err)

			var se *remote.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, http.StatusInternalServerError, se.Code)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := remote.NewClient(url, "user123", 0, nil, nil)
	_, err := client.Create(context.Background(), remote.TasksPath, models.TaskInput{Title: "x"})
	require.Error(t, err)
	assert.True(t, remote.IsUnreachable(err))
	assert.Equal(t, "backend unreachable", err.Error())
}

func TestMutations(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()

	msg, err := client.Create(ctx, remote.TasksPath, models.TaskInput{UserID: "user123", Title: "Read", Priority: "low", Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, "Task created successfully", msg)
	require.Equal(t, 1, srv.Len("tasks"))

	tasks, err := remote.ListOf[models.Task](ctx, client, remote.TasksPath, remote.TasksKey)
	require.NoError(t, err)
	id := tasks[0].ID

	_, err = client.Update(ctx, remote.TasksPath, id, map[string]string{"title": "Read more"})
	require.NoError(t, err)
	rec, _ := srv.Get("tasks", id)
	assert.Equal(t, "Read more", rec["title"])

	_, err = client.Post(ctx, remote.CompleteTaskPath+"/"+id, models.UserRef{UserID: client.UserID()})
	require.NoError(t, err)
	rec, _ = srv.Get("tasks", id)
	assert.Equal(t, models.StatusCompleted, rec["status"])

	// 204 with no body
	msg, err = client.Delete(ctx, remote.TasksPath, id)
	require.NoError(t, err)
	assert.Empty(t, msg)
	assert.Zero(t, srv.Len("tasks"))

	_, err = client.Delete(ctx, remote.TasksPath, id)
	assert.True(t, remote.IsNotFound(err))
}

func TestChat(t *testing.T) {
	client, srv := newClient(t)
	srv.SetChat(func(req models.ChatRequest) (int, any) {
		assert.Equal(t, "formal", req.Style)
		return http.StatusOK, map[string]any{
			"response":      "Added it.",
			"parsed_action": map[string]any{"action": "create_task", "parameters": map[string]any{"title": "x"}},
		}
	})

	reply, err := client.Chat(context.Background(), "add a task", "formal")
	require.NoError(t, err)
	assert.Equal(t, "Added it.", reply.Response)
	require.NotNil(t, reply.ParsedAction)
	assert.Equal(t, "create_task", reply.ParsedAction.Action)
}

func TestChatEmptyBody(t *testing.T) {
	client, srv := newClient(t)
	srv.SetChat(func(req models.ChatRequest) (int, any) {
		return http.StatusNoContent, nil
	})

	reply, err := client.Chat(context.Background(), "hello", "friendly")
	require.NoError(t, err)
	assert.Empty(t, reply.Response)
	assert.Nil(t, reply.ParsedAction)
}
