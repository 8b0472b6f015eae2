package models

// Task represents a to-do item owned by the configured user
type Task struct {
	ID          string    `json:"task_id"`
	UserID      string    `json:"user_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Due         Timestamp `json:"due_datetime"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Tags        FreeText  `json:"tags"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
	ArchivedAt  Timestamp `json:"archived_at"` // only set on archived tasks
}

// Event represents a calendar entry
type Event struct {
	ID          string    `json:"event_id"`
	UserID      string    `json:"user_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       Timestamp `json:"start_datetime"`
	End         Timestamp `json:"end_datetime"`
	Location    string    `json:"location"`
	Attendees   FreeText  `json:"attendees"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// Course represents a course the user is taking
type Course struct {
	ID          string    `json:"course_id"`
	UserID      string    `json:"user_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	Schedule    string    `json:"schedule"`
	StartDate   Date      `json:"start_date"`
	EndDate     Date      `json:"end_date"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// Task priorities and statuses accepted by the service
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Priorities lists the task priorities in display order
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Statuses lists the task statuses in display order
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// ChatRequest is the body posted to the chat endpoint
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	Style   string `json:"kairo_style"`
}

// ParsedAction is the action the chat backend inferred from a message.
// Action is an opaque tag such as "create_task".
type ParsedAction struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ChatReply is the chat endpoint's response
type ChatReply struct {
	Response     string        `json:"response"`
	ParsedAction *ParsedAction `json:"parsed_action,omitempty"`
}
