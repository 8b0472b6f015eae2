package view

import "time"

// Model is anything a container can display
type Model interface {
	isModel()
}

// State of a list or dashboard container
type State int

const (
	StateLoading State = iota
	StateError
	StateEmpty
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Tone hints how a badge should be colored
type Tone int

const (
	ToneNeutral Tone = iota
	ToneLow
	ToneMedium
	ToneHigh
	ToneSuccess
	ToneMuted
)

// Badge is a short colored label on a card
type Badge struct {
	Text string
	Tone Tone
}

// Line is one labelled value on a card
type Line struct {
	Label string
	Value string
}

// Card is one rendered record
type Card struct {
	ID      string
	Title   string
	Badges  []Badge
	Lines   []Line
	Actions []string
}

// ListView is the content of an entity list container
type ListView struct {
	Kind    string
	State   State
	Message string
	Cards   []Card
}

// Widget is the input kind of a form field
type Widget int

const (
	WidgetText Widget = iota
	WidgetTextArea
	WidgetDate
	WidgetTime
	WidgetSelect
)

// Field is one form input and its current value
type Field struct {
	Name     string
	Label    string
	Widget   Widget
	Options  []string
	Value    string
	Required bool
}

// FormView is the content of a create form container
type FormView struct {
	Kind   string
	Fields []Field
}

// ModalView is an open edit dialog
type ModalView struct {
	Kind    string
	ID      string
	Heading string
	Fields  []Field
	Error   string
}

// Stats are the dashboard counters
type Stats struct {
	TotalTasks     int
	PendingTasks   int
	UpcomingEvents int
	ActiveCourses  int
}

// Activity is one recent-activity row
type Activity struct {
	Kind  string
	Title string
	When  string
	Text  string
}

// DashboardView is the content of the dashboard container
type DashboardView struct {
	State   State
	Message string
	Stats   Stats
	Recent  []Activity
	// Placeholder is shown instead of Recent when it is empty
	Placeholder string
}

// Sender identifies who wrote a chat entry
type Sender int

const (
	SenderUser Sender = iota
	SenderAssistant
	SenderSystem
)

// ChatEntry is one transcript line
type ChatEntry struct {
	Sender Sender
	Text   string
	At     time.Time
}

// ChatView is the content of the chat container
type ChatView struct {
	Entries []ChatEntry
	Busy    bool
	Style   string
}

// Level of a notice
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notice is a transient status message
type Notice struct {
	Level Level
	Text  string
}

func (ListView) isModel()      {}
func (FormView) isModel()      {}
func (ModalView) isModel()     {}
func (DashboardView) isModel() {}
func (ChatView) isModel()      {}
func (Notice) isModel()        {}
