package models

// TaskInput is the create/update body for a task. Nil timestamps are sent as null.
type TaskInput struct {
	UserID      string  `json:"user_id,omitempty"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Due         *string `json:"due_datetime"`
	Priority    string  `json:"priority" validate:"oneof=low medium high"`
	Status      string  `json:"status" validate:"oneof=pending in-progress completed cancelled"`
	Tags        *string `json:"tags,omitempty"`
}

// EventInput is the create/update body for an event
type EventInput struct {
	UserID      string  `json:"user_id,omitempty"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Start       *string `json:"start_datetime" validate:"required"`
	End         *string `json:"end_datetime"`
	Location    string  `json:"location"`
	Attendees   string  `json:"attendees"`
}

// CourseInput is the create/update body for a course
type CourseInput struct {
	UserID      string  `json:"user_id,omitempty"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Instructor  string  `json:"instructor"`
	Schedule    string  `json:"schedule"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// UserRef is the body for actions that only identify the user
type UserRef struct {
	UserID string `json:"user_id"`
}
