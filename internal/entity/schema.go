// Package entity implements the list/create/edit/delete controller shared
// by tasks, events and courses. Each kind is described by a Schema.
package entity

import (
	"context"
	"strings"
	"time"

	"github.com/tgienger/kairo/internal/view"
)

// Kind names an entity family
type Kind string

const (
	KindTask   Kind = "task"
	KindEvent  Kind = "event"
	KindCourse Kind = "course"
)

// Mode tells a payload builder which request it is building
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// FieldSpec describes one form input
type FieldSpec struct {
	Name     string
	Label    string
	Widget   view.Widget
	Options  []string
	Default  string
	Required bool
	EditOnly bool // only shown in the edit dialog
}

// Action is an extra per-record operation posted as {user_id}
type Action struct {
	Name    string
	Label   string
	Path    func(id string) string
	Success string
}

// Schema describes one entity kind as data
type Schema[T any] struct {
	Kind     Kind
	Singular string
	Plural   string
	Path     string
	ListKey  string
	Fields   []FieldSpec

	// RequiredMessage is shown when a required field is missing
	RequiredMessage string
	// DeleteWarning is appended to the delete confirmation
	DeleteWarning string

	ID      func(T) string
	Title   func(T) string
	Card    func(T, *time.Location) view.Card
	Values  func(T, *time.Location) Form
	Payload func(f Form, userID string, mode Mode) (any, error)
	Actions []Action
}

func (s Schema[T]) label() string {
	return strings.ToUpper(s.Singular[:1]) + s.Singular[1:]
}

// fields returns the view fields for a create form (edit=false) or the
// edit dialog, filled from values or from defaults when values is nil
func (s Schema[T]) fields(edit bool, values Form) []view.Field {
	out := make([]view.Field, 0, len(s.Fields))
	for _, fs := range s.Fields {
		if fs.EditOnly && !edit {
			continue
		}
		value := fs.Default
		if values != nil {
			value = values[fs.Name]
		}
		out = append(out, view.Field{
			Name:     fs.Name,
			Label:    fs.Label,
			Widget:   fs.Widget,
			Options:  fs.Options,
			Value:    value,
			Required: fs.Required,
		})
	}
	return out
}

func (s Schema[T]) action(name string) (Action, bool) {
	for _, a := range s.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Refresher is implemented by the dashboard
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Loader re-fetches and re-renders one list
type Loader interface {
	Load(ctx context.Context) error
}
