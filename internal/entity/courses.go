package entity

import (
	"time"

	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/view"
)

// CourseSchema describes courses
func CourseSchema() Schema[models.Course] {
	return Schema[models.Course]{
		Kind:     KindCourse,
		Singular: "course",
		Plural:   "courses",
		Path:     remote.CoursesPath,
		ListKey:  remote.CoursesKey,
		Fields: []FieldSpec{
			{Name: "name", Label: "Name", Widget: view.WidgetText, Required: true},
			{Name: "description", Label: "Description", Widget: view.WidgetTextArea},
			{Name: "instructor", Label: "Instructor", Widget: view.WidgetText},
			{Name: "schedule", Label: "Schedule", Widget: view.WidgetText},
			{Name: "start_date", Label: "Start date", Widget: view.WidgetDate},
			{Name: "end_date", Label: "End date", Widget: view.WidgetDate},
		},
		RequiredMessage: "Course name cannot be empty.",
		DeleteWarning:   "This will not delete related tasks.",
		ID:              func(c models.Course) string { return c.ID },
		Title:           func(c models.Course) string { return c.Name },
		Card:            CourseCard,
		Values:          courseValues,
		Payload:         coursePayload,
	}
}

// CourseCard renders a course for a list
func CourseCard(c models.Course, _ *time.Location) view.Card {
	dates := c.StartDate.Format(models.DateLayout, notAvailable) + " - " + c.EndDate.Format(models.DateLayout, notAvailable)
	return view.Card{
		ID:    c.ID,
		Title: c.Name,
		Lines: []view.Line{
			{Label: "Instructor", Value: textOr(c.Instructor, notAvailable)},
			{Label: "Schedule", Value: textOr(c.Schedule, notAvailable)},
			{Label: "Dates", Value: dates},
			{Label: "Description", Value: snippet(c.Description)},
		},
		Actions: []string{"edit", "delete"},
	}
}

func courseValues(c models.Course, _ *time.Location) Form {
	values := Form{
		"name":        c.Name,
		"description": c.Description,
		"instructor":  c.Instructor,
		"schedule":    c.Schedule,
	}
	if c.StartDate.Valid() {
		values["start_date"] = c.StartDate.String()
	}
	if c.EndDate.Valid() {
		values["end_date"] = c.EndDate.String()
	}
	return values
}

func coursePayload(f Form, userID string, mode Mode) (any, error) {
	start, err := dateOnly("start_date", f)
	if err != nil {
		return nil, err
	}
	end, err := dateOnly("end_date", f)
	if err != nil {
		return nil, err
	}
	in := models.CourseInput{
		Name:        f.Get("name"),
		Description: f.Get("description"),
		Instructor:  f.Get("instructor"),
		Schedule:    f.Get("schedule"),
		StartDate:   start,
		EndDate:     end,
	}
	if mode == ModeCreate {
		in.UserID = userID
	}
	return in, nil
}
