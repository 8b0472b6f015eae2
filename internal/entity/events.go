package entity

import (
	"time"

	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/view"
)

// EventSchema describes events
func EventSchema() Schema[models.Event] {
	return Schema[models.Event]{
		Kind:     KindEvent,
		Singular: "event",
		Plural:   "events",
		Path:     remote.EventsPath,
		ListKey:  remote.EventsKey,
		Fields: []FieldSpec{
			{Name: "title", Label: "Title", Widget: view.WidgetText, Required: true},
			{Name: "description", Label: "Description", Widget: view.WidgetTextArea},
			{Name: "start_date", Label: "Start date", Widget: view.WidgetDate, Required: true},
			{Name: "start_time", Label: "Start time", Widget: view.WidgetTime, Required: true},
			{Name: "end_date", Label: "End date", Widget: view.WidgetDate},
			{Name: "end_time", Label: "End time", Widget: view.WidgetTime},
			{Name: "location", Label: "Location", Widget: view.WidgetText},
			{Name: "attendees", Label: "Attendees", Widget: view.WidgetText},
		},
		RequiredMessage: "Event title and start date/time are required.",
		ID:              func(e models.Event) string { return e.ID },
		Title:           func(e models.Event) string { return e.Title },
		Card:            EventCard,
		Values:          eventValues,
		Payload:         eventPayload,
	}
}

// EventCard renders an event for a list
func EventCard(e models.Event, loc *time.Location) view.Card {
	return view.Card{
		ID:    e.ID,
		Title: e.Title,
		Lines: []view.Line{
			{Label: "From", Value: e.Start.Format(loc, models.DateTimeLayout, notAvailable)},
			{Label: "To", Value: e.End.Format(loc, models.DateTimeLayout, notAvailable)},
			{Label: "Location", Value: textOr(e.Location, notAvailable)},
			{Label: "Attendees", Value: textOr(string(e.Attendees), notAvailable)},
			{Label: "Description", Value: snippet(e.Description)},
		},
		Actions: []string{"edit", "delete"},
	}
}

func eventValues(e models.Event, loc *time.Location) Form {
	startDate, startTime := split(e.Start, loc)
	endDate, endTime := split(e.End, loc)
	return Form{
		"title":       e.Title,
		"description": e.Description,
		"start_date":  startDate,
		"start_time":  startTime,
		"end_date":    endDate,
		"end_time":    endTime,
		"location":    e.Location,
		"attendees":   string(e.Attendees),
	}
}

func eventPayload(f Form, userID string, mode Mode) (any, error) {
	start, err := combineStrict("start_date", "start_time", f)
	if err != nil {
		return nil, err
	}
	end, err := combine("end_date", "end_time", f)
	if err != nil {
		return nil, err
	}
	in := models.EventInput{
		Title:       f.Get("title"),
		Description: f.Get("description"),
		Start:       start,
		End:         end,
		Location:    f.Get("location"),
		Attendees:   f.Get("attendees"),
	}
	if mode == ModeCreate {
		in.UserID = userID
	}
	return in, nil
}
