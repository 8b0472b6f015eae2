package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kairo/internal/prefs"
)

var _ prefs.Store = (*DB)(nil)

func TestSettings(t *testing.T) {
	dir := t.TempDir()
	database, err := New(dir)
	require.NoError(t, err)

	v, err := database.Get(prefs.ThemeKey)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, database.Set(prefs.ThemeKey, prefs.ThemeLight))
	require.NoError(t, database.Set(prefs.ThemeKey, prefs.ThemeDark))
	require.NoError(t, database.Close())

	// values survive a reopen
	database, err = New(dir)
	require.NoError(t, err)
	defer database.Close()

	v, err = database.Get(prefs.ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeDark, v)

	s, err := prefs.Load(database, prefs.Defaults{Theme: prefs.ThemeLight, Style: "friendly"})
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeDark, s.Theme())
	require.NoError(t, s.SetChatStyle("concise"))

	v, err = database.Get(prefs.StyleKey)
	require.NoError(t, err)
	assert.Equal(t, "concise", v)
}
