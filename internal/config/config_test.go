package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000", cfg.API.BaseURL)
	assert.Equal(t, "user123", cfg.API.UserID)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Backend.ReadyTimeout)
	assert.Equal(t, "dark", cfg.UI.DefaultTheme)
	assert.Equal(t, "friendly", cfg.Chat.DefaultStyle)
	assert.Equal(t, []string{"task"}, cfg.Chat.ActionKeywords["task"])
	assert.Equal(t, filepath.Join(data, AppName), cfg.Data.Dir)
	assert.Equal(t, filepath.Join(data, AppName, "kairo.log"), cfg.Logger.Filename)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KAIRO_API_BASE_URL", "http://localhost:9999")
	t.Setenv("KAIRO_API_USER_ID", "someone")
	t.Setenv("KAIRO_BACKEND_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.API.BaseURL)
	assert.Equal(t, "someone", cfg.API.UserID)
	assert.False(t, cfg.Backend.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kairo.yaml")
	body := "api:\n  base_url: http://10.0.0.2:8000/\n  timeout: 3s\nui:\n  default_theme: light\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.2:8000", cfg.API.TrimmedBaseURL())
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "light", cfg.UI.DefaultTheme)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:     APIConfig{BaseURL: "http://127.0.0.1:5000", UserID: "user123"},
			Backend: BackendConfig{Enabled: false},
			UI:      UIConfig{DefaultTheme: "dark"},
			Chat:    ChatConfig{DefaultStyle: "friendly", Styles: []string{"friendly"}},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.API.BaseURL = "localhost:5000/api" }},
		{"blank user", func(c *Config) { c.API.UserID = "  " }},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }},
		{"backend without command", func(c *Config) { c.Backend.Enabled = true }},
		{"unknown theme", func(c *Config) { c.UI.DefaultTheme = "solarized" }},
		{"style not offered", func(c *Config) { c.Chat.DefaultStyle = "pirate" }},
	}

	require.NoError(t, valid().Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
