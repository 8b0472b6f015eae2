package prefs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Get(string) (string, error) { return "", errors.New("disk on fire") }
func (brokenStore) Set(string, string) error   { return errors.New("disk on fire") }

func TestLoadDefaults(t *testing.T) {
	s, err := Load(NewMemory(nil), Defaults{Theme: ThemeDark, Style: "friendly"})
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, s.Theme())
	assert.Equal(t, "friendly", s.ChatStyle())
}

func TestLoadStored(t *testing.T) {
	store := NewMemory(map[string]string{ThemeKey: ThemeLight, StyleKey: "concise"})
	s, err := Load(store, Defaults{Theme: ThemeDark, Style: "friendly"})
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, s.Theme())
	assert.Equal(t, "concise", s.ChatStyle())
}

func TestLoadIgnoresUnknownTheme(t *testing.T) {
	s, err := Load(NewMemory(map[string]string{ThemeKey: "neon"}), Defaults{Theme: ThemeDark, Style: "friendly"})
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, s.Theme())
}

func TestToggleAndPersist(t *testing.T) {
	store := NewMemory(nil)
	s, err := Load(store, Defaults{Theme: ThemeDark, Style: "friendly"})
	require.NoError(t, err)

	next, err := s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)
	stored, _ := store.Get(ThemeKey)
	assert.Equal(t, ThemeLight, stored)

	require.NoError(t, s.SetChatStyle("professional"))
	stored, _ = store.Get(StyleKey)
	assert.Equal(t, "professional", stored)

	assert.Error(t, s.SetTheme("neon"))
	assert.Error(t, s.SetChatStyle(""))
}

func TestStoreErrors(t *testing.T) {
	_, err := Load(brokenStore{}, Defaults{})
	assert.ErrorContains(t, err, "disk on fire")

	s := &Settings{store: brokenStore{}, theme: ThemeDark}
	assert.Error(t, s.SetTheme(ThemeLight))
	assert.Equal(t, ThemeDark, s.Theme())
}
