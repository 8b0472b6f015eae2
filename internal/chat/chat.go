// Package chat is the conversational side-channel: it keeps the
// transcript, talks to the assistant endpoint and reloads whatever lists
// the assistant says it changed.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tgienger/kairo/internal/entity"
	"github.com/tgienger/kairo/internal/logger"
	"github.com/tgienger/kairo/internal/prefs"
	"github.com/tgienger/kairo/internal/remote"
	"github.com/tgienger/kairo/internal/view"
)

var (
	// ErrEmptyMessage is returned for blank input; nothing is sent
	ErrEmptyMessage = errors.New("chat: empty message")
	// ErrBusy is returned while a previous message is still in flight
	ErrBusy = errors.New("chat: a message is already in flight")
)

// route sends parsed actions containing any keyword to loader
type route struct {
	keywords []string
	loader   entity.Loader
}

func (r route) matches(action string) bool {
	action = strings.ToLower(action)
	for _, k := range r.keywords {
		if k != "" && strings.Contains(action, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Channel is the chat side-channel
type Channel struct {
	client   *remote.Client
	surface  view.Surface
	settings *prefs.Settings
	dash     entity.Refresher
	log      *logger.Logger
	now      func() time.Time

	mu         sync.Mutex
	routes     []route
	busy       bool
	transcript []view.ChatEntry
}

// New creates a channel. dash may be nil.
func New(client *remote.Client, surface view.Surface, settings *prefs.Settings, dash entity.Refresher, log *logger.Logger) *Channel {
	if log == nil {
		log = logger.NewNop()
	}
	return &Channel{
		client:   client,
		surface:  surface,
		settings: settings,
		dash:     dash,
		log:      log.WithComponent("chat"),
		now:      time.Now,
	}
}

// Route registers loader to be reloaded when a parsed action contains
// any of keywords
func (c *Channel) Route(keywords []string, loader entity.Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, route{keywords: keywords, loader: loader})
}

// Send posts message to the assistant and records both sides of the
// exchange. Failures are reported in the transcript; the returned error
// is informational.
func (c *Channel) Send(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.appendLocked(view.SenderUser, message)
	c.mu.Unlock()
	c.render()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
		c.render()
	}()

	reply, err := c.client.Chat(ctx, message, c.settings.ChatStyle())
	if err != nil {
		c.log.WithError(err).Warnw("Chat request failed")
		c.append(view.SenderAssistant, fmt.Sprintf(
			"I'm sorry, I encountered an error: %s. Please try again. Ensure your backend server is running and accessible at %s.",
			err, c.client.BaseURL()))
		return err
	}

	c.append(view.SenderAssistant, reply.Response)

	if reply.ParsedAction != nil && reply.ParsedAction.Action != "" {
		c.log.Debugw("Assistant performed an action", "action", reply.ParsedAction.Action)
		for _, l := range c.loadersFor(reply.ParsedAction.Action) {
			_ = l.Load(ctx)
		}
	}
	if c.dash != nil {
		if err := c.dash.Refresh(ctx); err != nil {
			c.log.WithError(err).Debugw("Dashboard refresh failed")
		}
	}
	return nil
}

func (c *Channel) loadersFor(action string) []entity.Loader {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []entity.Loader
	for _, r := range c.routes {
		if r.matches(action) {
			out = append(out, r.loader)
		}
	}
	return out
}

// SetStyle persists the assistant response style and notes it in the transcript
func (c *Channel) SetStyle(style string) error {
	if err := c.settings.SetChatStyle(style); err != nil {
		return err
	}
	c.append(view.SenderAssistant, fmt.Sprintf("My response style has been set to %q.", style))
	c.render()
	return nil
}

// Style returns the current response style
func (c *Channel) Style() string {
	return c.settings.ChatStyle()
}

// Busy reports whether a message is in flight
func (c *Channel) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Transcript returns a copy of the conversation so far
func (c *Channel) Transcript() []view.ChatEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]view.ChatEntry(nil), c.transcript...)
}

// Render draws the current transcript
func (c *Channel) Render() { c.render() }

func (c *Channel) append(sender view.Sender, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendLocked(sender, text)
}

func (c *Channel) appendLocked(sender view.Sender, text string) {
	c.transcript = append(c.transcript, view.ChatEntry{Sender: sender, Text: text, At: c.now()})
}

func (c *Channel) render() {
	if !c.surface.Mounted(view.ChatContainer) {
		return
	}
	c.mu.Lock()
	cv := view.ChatView{
		Entries: append([]view.ChatEntry(nil), c.transcript...),
		Busy:    c.busy,
		Style:   c.settings.ChatStyle(),
	}
	c.mu.Unlock()
	c.surface.Render(view.ChatContainer, cv)
}
