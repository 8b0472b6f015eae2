package entity

import (
	"time"

	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/view"
)

// TaskSchema describes tasks
func TaskSchema() Schema[models.Task] {
	return Schema[models.Task]{
		Kind:     KindTask,
		Singular: "task",
		Plural:   "tasks",
		Path:     remote.TasksPath,
		ListKey:  remote.TasksKey,
		Fields: []FieldSpec{
			{Name: "title", Label: "Title", Widget: view.WidgetText, Required: true},
			{Name: "description", Label: "Description", Widget: view.WidgetTextArea},
			{Name: "due_date", Label: "Due date", Widget: view.WidgetDate},
			{Name: "due_time", Label: "Due time", Widget: view.WidgetTime},
			{Name: "priority", Label: "Priority", Widget: view.WidgetSelect, Options: models.Priorities, Default: models.PriorityMedium},
			{Name: "status", Label: "Status", Widget: view.WidgetSelect, Options: models.Statuses, Default: models.StatusPending},
			{Name: "tags", Label: "Tags", Widget: view.WidgetText, EditOnly: true},
		},
		RequiredMessage: "Task title cannot be empty.",
		ID:              func(t models.Task) string { return t.ID },
		Title:           func(t models.Task) string { return t.Title },
		Card:            TaskCard,
		Values:          taskValues,
		Payload:         taskPayload,
		Actions: []Action{{
			Name:    "complete",
			Label:   "Complete",
			Path:    func(id string) string { return remote.CompleteTaskPath + "/" + id },
			Success: "Task marked as completed!",
		}},
	}
}

// TaskCard renders a task for a list
func TaskCard(t models.Task, loc *time.Location) view.Card {
	return view.Card{
		ID:     t.ID,
		Title:  t.Title,
		Badges: []view.Badge{priorityBadge(t.Priority), statusBadge(t.Status)},
		Lines: []view.Line{
			{Label: "Due", Value: t.Due.Format(loc, models.DateTimeLayout, noDueDate)},
			{Label: "Tags", Value: textOr(string(t.Tags), notAvailable)},
			{Label: "Description", Value: snippet(t.Description)},
		},
		Actions: []string{"edit", "delete", "complete"},
	}
}

func taskValues(t models.Task, loc *time.Location) Form {
	date, clock := split(t.Due, loc)
	return Form{
		"title":       t.Title,
		"description": t.Description,
		"due_date":    date,
		"due_time":    clock,
		"priority":    orDefault(t.Priority, models.PriorityMedium),
		"status":      orDefault(t.Status, models.StatusPending),
		"tags":        string(t.Tags),
	}
}

func taskPayload(f Form, userID string, mode Mode) (any, error) {
	due, err := combine("due_date", "due_time", f)
	if err != nil {
		return nil, err
	}
	in := models.TaskInput{
		Title:       f.Get("title"),
		Description: f.Get("description"),
		Due:         due,
		Priority:    orDefault(f.Get("priority"), models.PriorityMedium),
		Status:      orDefault(f.Get("status"), models.StatusPending),
	}
	if mode == ModeCreate {
		in.UserID = userID
	} else {
		tags := f.Get("tags")
		in.Tags = &tags
	}
	return in, nil
}
