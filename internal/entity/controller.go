package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tgienger/kairo/internal/logger"
	"github.com/tgienger/kairo/internal/models"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/view"
)

// ErrNotFound is returned by Edit when the record is no longer listed
var ErrNotFound = errors.New("record not found")

// Options configures a Controller
type Options struct {
	Clock     models.Clock
	Validate  *validator.Validate
	Logger    *logger.Logger
	Dashboard Refresher
}

// Controller loads, renders and mutates one entity kind
type Controller[T any] struct {
	schema   Schema[T]
	client   *remote.Client
	surface  view.Surface
	validate *validator.Validate
	clock    models.Clock
	log      *logger.Logger
	dash     Refresher
}

// NewController creates a controller for schema
func NewController[T any](schema Schema[T], client *remote.Client, surface view.Surface, opts Options) *Controller[T] {
	if opts.Validate == nil {
		opts.Validate = validator.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Controller[T]{
		schema:   schema,
		client:   client,
		surface:  surface,
		validate: opts.Validate,
		clock:    opts.Clock,
		log:      opts.Logger.WithComponent(string(schema.Kind)),
		dash:     opts.Dashboard,
	}
}

// SetDashboard sets what is refreshed after every successful mutation
func (c *Controller[T]) SetDashboard(r Refresher) {
	c.dash = r
}

// Kind returns the entity kind this controller manages
func (c *Controller[T]) Kind() Kind { return c.schema.Kind }

// Plural returns the display name of the collection
func (c *Controller[T]) Plural() string { return c.schema.Plural }

// Fields returns the inputs of the create form, or of the edit dialog
func (c *Controller[T]) Fields(edit bool) []view.Field {
	return c.schema.fields(edit, nil)
}

// Actions returns the names of the extra per-record actions
func (c *Controller[T]) Actions() []string {
	names := make([]string, 0, len(c.schema.Actions))
	for _, a := range c.schema.Actions {
		names = append(names, a.Name)
	}
	return names
}

// Load fetches the collection and renders it into the list container
func (c *Controller[T]) Load(ctx context.Context) error {
	container := view.ListContainer(string(c.schema.Kind))
	kind := string(c.schema.Kind)

	c.render(container, view.ListView{Kind: kind, State: view.StateLoading, Message: "Loading " + c.schema.Plural + "..."})

	items, err := c.list(ctx)
	if err != nil {
		c.log.WithError(err).Warnw("Failed to load collection")
		c.render(container, view.ListView{
			Kind:    kind,
			State:   view.StateError,
			Message: fmt.Sprintf("Failed to load %s: %s. %s", c.schema.Plural, err, c.hint()),
		})
		return err
	}

	c.render(container, c.List(items))
	return nil
}

// List renders items as a list view without touching the surface
func (c *Controller[T]) List(items []T) view.ListView {
	kind := string(c.schema.Kind)
	if len(items) == 0 {
		return view.ListView{
			Kind:    kind,
			State:   view.StateEmpty,
			Message: fmt.Sprintf("No %s found. Add a new %s above or chat with Kairo!", c.schema.Plural, c.schema.Singular),
		}
	}
	cards := make([]view.Card, 0, len(items))
	for _, item := range items {
		cards = append(cards, c.schema.Card(item, c.clock.Loc()))
	}
	return view.ListView{Kind: kind, State: view.StateReady, Cards: cards}
}

// Fetch returns the current collection
func (c *Controller[T]) Fetch(ctx context.Context) ([]T, error) {
	return c.list(ctx)
}

// ResetForm renders the create form with default values
func (c *Controller[T]) ResetForm() {
	c.render(view.FormContainer(string(c.schema.Kind)), view.FormView{
		Kind:   string(c.schema.Kind),
		Fields: c.schema.fields(false, nil),
	})
}

// Create validates form and posts a new record
func (c *Controller[T]) Create(ctx context.Context, form Form) error {
	payload, err := c.payload(form, ModeCreate)
	if err != nil {
		c.notify(view.LevelError, err.Error())
		return err
	}

	msg, err := c.client.Create(ctx, c.schema.Path, payload)
	if err != nil {
		c.log.WithError(err).Warnw("Failed to create")
		c.notify(view.LevelError, fmt.Sprintf("Error: %s. %s", err, c.hint()))
		return err
	}

	c.notify(view.LevelSuccess, orDefault(msg, c.schema.label()+" added successfully!"))
	c.ResetForm()
	c.afterMutation(ctx)
	return nil
}

// Edit opens the edit dialog for id with its current values
func (c *Controller[T]) Edit(ctx context.Context, id string) error {
	items, err := c.list(ctx)
	if err != nil {
		c.log.WithError(err).Warnw("Failed to load record for editing", "id", id)
		c.notify(view.LevelError, fmt.Sprintf("Could not load %s details for editing. %s", c.schema.Singular, c.hint()))
		return err
	}

	item, ok := c.find(items, id)
	if !ok {
		c.notify(view.LevelError, c.schema.label()+" not found.")
		return fmt.Errorf("%s %s: %w", c.schema.Singular, id, ErrNotFound)
	}

	container := view.ModalContainer(string(c.schema.Kind))
	c.surface.Mount(container)
	c.render(container, view.ModalView{
		Kind:    string(c.schema.Kind),
		ID:      id,
		Heading: "Edit " + c.schema.label(),
		Fields:  c.schema.fields(true, c.schema.Values(item, c.clock.Loc())),
	})
	return nil
}

// CloseModal dismisses the edit dialog without saving
func (c *Controller[T]) CloseModal() {
	c.surface.Unmount(view.ModalContainer(string(c.schema.Kind)))
}

// SaveEdit validates form and updates id
func (c *Controller[T]) SaveEdit(ctx context.Context, id string, form Form) error {
	container := view.ModalContainer(string(c.schema.Kind))

	payload, err := c.payload(form, ModeUpdate)
	if err == nil {
		_, err = c.update(ctx, id, payload)
	}
	if err != nil {
		c.log.WithError(err).Warnw("Failed to update", "id", id)
		text := err.Error()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			text = fmt.Sprintf("Error: %s. %s", err, c.hint())
		}
		c.render(container, view.ModalView{
			Kind:    string(c.schema.Kind),
			ID:      id,
			Heading: "Edit " + c.schema.label(),
			Fields:  c.schema.fields(true, form),
			Error:   text,
		})
		c.notify(view.LevelError, text)
		return err
	}

	return nil
}

func (c *Controller[T]) update(ctx context.Context, id string, payload any) (string, error) {
	msg, err := c.client.Update(ctx, c.schema.Path, id, payload)
	if err != nil {
		return "", err
	}
	c.notify(view.LevelSuccess, orDefault(msg, c.schema.label()+" updated successfully!"))
	c.surface.Unmount(view.ModalContainer(string(c.schema.Kind)))
	c.afterMutation(ctx)
	return msg, nil
}

// DeletePrompt is the question asked before removing a record
func (c *Controller[T]) DeletePrompt() string {
	prompt := fmt.Sprintf("Are you sure you want to delete this %s?", c.schema.Singular)
	if c.schema.DeleteWarning != "" {
		prompt += " " + c.schema.DeleteWarning
	}
	return prompt
}

// Remove deletes id once confirm agrees
func (c *Controller[T]) Remove(ctx context.Context, id string, confirm view.Confirmer) error {
	if !confirm.Confirm(c.DeletePrompt()) {
		return nil
	}

	msg, err := c.client.Delete(ctx, c.schema.Path, id)
	if err != nil {
		c.log.WithError(err).Warnw("Failed to delete", "id", id)
		c.notify(view.LevelError, fmt.Sprintf("Error: %s. %s", err, c.hint()))
		return err
	}

	c.notify(view.LevelSuccess, orDefault(msg, c.schema.label()+" deleted successfully!"))
	c.afterMutation(ctx)
	return nil
}

// Invoke runs a schema action such as "complete" on id
func (c *Controller[T]) Invoke(ctx context.Context, name, id string) error {
	action, ok := c.schema.action(name)
	if !ok {
		return fmt.Errorf("%s: unknown action %q", c.schema.Singular, name)
	}

	msg, err := c.client.Post(ctx, action.Path(id), models.UserRef{UserID: c.client.UserID()})
	if err != nil {
		c.log.WithError(err).Warnw("Action failed", "action", name, "id", id)
		c.notify(view.LevelError, fmt.Sprintf("Error: %s. %s", err, c.hint()))
		return err
	}

	c.notify(view.LevelSuccess, orDefault(msg, action.Success))
	c.afterMutation(ctx)
	return nil
}

// afterMutation re-fetches the list and refreshes the dashboard, once each
func (c *Controller[T]) afterMutation(ctx context.Context) {
	_ = c.Load(ctx)
	if c.dash != nil {
		if err := c.dash.Refresh(ctx); err != nil {
			c.log.WithError(err).Debugw("Dashboard refresh failed")
		}
	}
}

func (c *Controller[T]) list(ctx context.Context) ([]T, error) {
	return remote.ListOf[T](ctx, c.client, c.schema.Path, c.schema.ListKey)
}

func (c *Controller[T]) find(items []T, id string) (T, bool) {
	for _, item := range items {
		if c.schema.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// payload builds and validates the request body for form
func (c *Controller[T]) payload(form Form, mode Mode) (any, error) {
	payload, err := c.schema.Payload(form, c.client.UserID(), mode)
	if err != nil {
		return nil, err
	}
	if err := c.validate.Struct(payload); err != nil {
		return nil, c.validationError(err)
	}
	return payload, nil
}

func (c *Controller[T]) validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Message: c.schema.RequiredMessage}
	case "oneof":
		return &ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("Invalid %s %q, expected one of %s.", strings.ToLower(fe.Field()), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", ")),
		}
	}
	return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("Invalid %s.", strings.ToLower(fe.Field()))}
}

// render draws into container unless it has been unmounted in the meantime
func (c *Controller[T]) render(container string, m view.Model) {
	if !c.surface.Mounted(container) {
		c.log.Debugw("Dropped render into unmounted container", "container", container)
		return
	}
	c.surface.Render(container, m)
}

func (c *Controller[T]) notify(level view.Level, text string) {
	c.surface.Render(view.NoticeContainer, view.Notice{Level: level, Text: text})
}

func (c *Controller[T]) hint() string {
	return fmt.Sprintf("Please ensure your backend server is running and accessible at %s.", c.client.BaseURL())
}

// Snapshot returns the records as JSON, for CLI output
func (c *Controller[T]) Snapshot(ctx context.Context) ([]byte, error) {
	items, err := c.list(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(items, "", "  ")
}
