// Package prefs holds the client-local preferences: UI theme and
// assistant response style.
package prefs

import (
	"fmt"
	"sync"
)

// Keys under which preferences are persisted
const (
	ThemeKey = "theme"
	StyleKey = "kairo_style"
)

// Themes
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Store persists string settings. Get returns "" for unknown keys.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Defaults apply when nothing has been stored yet
type Defaults struct {
	Theme string
	Style string
}

// Settings is the preference state, read once at startup
type Settings struct {
	store Store

	mu    sync.RWMutex
	theme string
	style string
}

// Load reads the stored preferences
func Load(store Store, defaults Defaults) (*Settings, error) {
	theme, err := store.Get(ThemeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ThemeKey, err)
	}
	style, err := store.Get(StyleKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", StyleKey, err)
	}

	if theme != ThemeDark && theme != ThemeLight {
		theme = defaults.Theme
	}
	if style == "" {
		style = defaults.Style
	}
	return &Settings{store: store, theme: theme, style: style}, nil
}

// Theme returns "dark" or "light"
func (s *Settings) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme persists theme
func (s *Settings) SetTheme(theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("unknown theme %q", theme)
	}
	if err := s.store.Set(ThemeKey, theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	return nil
}

// ToggleTheme switches between dark and light and returns the new theme
func (s *Settings) ToggleTheme() (string, error) {
	next := ThemeLight
	if s.Theme() == ThemeLight {
		next = ThemeDark
	}
	return next, s.SetTheme(next)
}

// ChatStyle returns the assistant response style
func (s *Settings) ChatStyle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// SetChatStyle persists style
func (s *Settings) SetChatStyle(style string) error {
	if style == "" {
		return fmt.Errorf("style must not be empty")
	}
	if err := s.store.Set(StyleKey, style); err != nil {
		return fmt.Errorf("failed to save style: %w", err)
	}
	s.mu.Lock()
	s.style = style
	s.mu.Unlock()
	return nil
}

// Memory is a Store kept in memory
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory creates a Memory store seeded with values
func NewMemory(values map[string]string) *Memory {
	m := &Memory{values: map[string]string{}}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
