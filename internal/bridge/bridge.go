// Package bridge is the message channel between the UI side and the
// host side of the shell. Only whitelisted channels pass.
package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/tgienger/kairo/internal/logger"
)

// Outbound channels, UI to host
const (
	Command         = "command"
	GetTasks        = "getTasks"
	GetDailyTasks   = "getDailyTasks"
	GetWeeklyTasks  = "getWeeklyTasks"
	GetMonthlyTasks = "getMonthlyTasks"
)

// Inbound channels, host to UI
const (
	TasksResponse   = "tasksResponse"
	CommandResponse = "commandResponse"
	Error           = "error"
)

// ErrChannelNotAllowed marks a channel outside the whitelist
var ErrChannelNotAllowed = errors.New("bridge: channel not allowed")

var (
	outbound = map[string]bool{Command: true, GetTasks: true, GetDailyTasks: true, GetWeeklyTasks: true, GetMonthlyTasks: true}
	inbound  = map[string]bool{TasksResponse: true, CommandResponse: true, Error: true}
)

// CheckOutbound returns ErrChannelNotAllowed unless channel may be sent on
func CheckOutbound(channel string) error {
	if !outbound[channel] {
		return ErrChannelNotAllowed
	}
	return nil
}

// CheckInbound returns ErrChannelNotAllowed unless channel may be received on
func CheckInbound(channel string) error {
	if !inbound[channel] {
		return ErrChannelNotAllowed
	}
	return nil
}

// Reply delivers a host answer on an inbound channel
type Reply func(channel string, payload any)

// Host handles outbound messages
type Host interface {
	Handle(ctx context.Context, channel string, payload any, reply Reply)
}

// Handler receives inbound payloads
type Handler func(payload any)

// Bridge connects the UI side to a Host
type Bridge struct {
	host Host
	log  *logger.Logger

	mu        sync.RWMutex
	listeners map[string][]Handler
}

// New creates a bridge in front of host
func New(host Host, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.NewNop()
	}
	return &Bridge{host: host, log: log.WithComponent("bridge"), listeners: map[string][]Handler{}}
}

// Send passes payload to the host. Channels outside the whitelist are
// dropped. The host's replies are delivered before Send returns.
func (b *Bridge) Send(ctx context.Context, channel string, payload any) {
	if err := CheckOutbound(channel); err != nil {
		b.log.Debugw("Dropped outbound message", "channel", channel)
		return
	}
	b.host.Handle(ctx, channel, payload, b.emit)
}

// Receive registers fn for an inbound channel. Channels outside the
// whitelist register nothing.
func (b *Bridge) Receive(channel string, fn Handler) {
	if err := CheckInbound(channel); err != nil {
		b.log.Debugw("Ignored listener for channel", "channel", channel)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[channel] = append(b.listeners[channel], fn)
}

func (b *Bridge) emit(channel string, payload any) {
	if err := CheckInbound(channel); err != nil {
		b.log.Warnw("Host replied on a channel outside the whitelist", "channel", channel)
		return
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.listeners[channel]...)
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn(payload)
	}
}
