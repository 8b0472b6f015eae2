package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/tgienger/kairo/internal/logger"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
)

// windows maps a task query to the number of calendar days it covers,
// starting today. Zero means all tasks.
var windows = map[string]int{
	GetTasks:        0,
	GetDailyTasks:   1,
	GetWeeklyTasks:  7,
	GetMonthlyTasks: 30,
}

// TaskHost answers task queries from the Remote Data Service and forwards
// commands to the assistant
type TaskHost struct {
	client *remote.Client
	style  func() string
	clock  models.Clock
	log    *logger.Logger
}

// NewTaskHost creates a host. style supplies the assistant response style.
func NewTaskHost(client *remote.Client, style func() string, clock models.Clock, log *logger.Logger) *TaskHost {
	if log == nil {
		log = logger.NewNop()
	}
	return &TaskHost{client: client, style: style, clock: clock, log: log.WithComponent("host")}
}

// Handle implements Host
func (h *TaskHost) Handle(ctx context.Context, channel string, payload any, reply Reply) {
	switch channel {
	case Command:
		h.command(ctx, payload, reply)
	case GetTasks, GetDailyTasks, GetWeeklyTasks, GetMonthlyTasks:
		h.tasks(ctx, windows[channel], reply)
	default:
		reply(Error, fmt.Sprintf("unsupported channel %q", channel))
	}
}

func (h *TaskHost) command(ctx context.Context, payload any, reply Reply) {
	message, ok := payload.(string)
	if !ok || message == "" {
		reply(Error, "command payload must be a non-empty string")
		return
	}
	resp, err := h.client.Chat(ctx, message, h.style())
	if err != nil {
		h.log.WithError(err).Warnw("Command failed")
		reply(Error, err.Error())
		return
	}
	reply(CommandResponse, resp)
}

func (h *TaskHost) tasks(ctx context.Context, days int, reply Reply) {
	tasks, err := remote.ListOf[models.Task](ctx, h.client, remote.TasksPath, remote.TasksKey)
	if err != nil {
		h.log.WithError(err).Warnw("Task query failed")
		reply(Error, err.Error())
		return
	}
	if days > 0 {
		tasks = DueWithin(tasks, h.clock.Time(), days)
	}
	reply(TasksResponse, tasks)
}

// DueWithin keeps tasks due between the start of now's day and the end of
// the days-th day. Tasks without a due date are dropped.
func DueWithin(tasks []models.Task, now time.Time, days int) []models.Task {
	loc := now.Location()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	to := time.Date(now.Year(), now.Month(), now.Day()+days, 0, 0, 0, 0, loc)

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		due, ok := t.Due.In(loc)
		if !ok {
			continue
		}
		if !due.Before(from) && due.Before(to) {
			out = append(out, t)
		}
	}
	return out
}
