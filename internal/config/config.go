package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppName names the config directory, data directory and env prefix
const AppName = "kairo"

// Config holds all configuration for the application
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Backend BackendConfig `mapstructure:"backend"`
	UI      UIConfig      `mapstructure:"ui"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Data    DataConfig    `mapstructure:"data"`
}

// APIConfig locates the Remote Data Service
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	UserID  string        `mapstructure:"user_id"`
	Timeout time.Duration `mapstructure:"timeout"` // zero means no timeout
}

// BackendConfig describes the companion process the shell supervises
type BackendConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Command      string        `mapstructure:"command"`
	Args         []string      `mapstructure:"args"`
	Dir          string        `mapstructure:"dir"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
	StopTimeout  time.Duration `mapstructure:"stop_timeout"`
}

// UIConfig holds terminal UI defaults
type UIConfig struct {
	DefaultTheme string `mapstructure:"default_theme"`
}

// ChatConfig holds assistant defaults. ActionKeywords maps an entity kind
// to the substrings that route a parsed action tag to that kind's list.
type ChatConfig struct {
	DefaultStyle   string              `mapstructure:"default_style"`
	Styles         []string            `mapstructure:"styles"`
	ActionKeywords map[string][]string `mapstructure:"action_keywords"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// DataConfig locates client-local state
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads .env, an optional config file, KAIRO_* environment variables
// and defaults. An empty path searches the user config directory for
// config.{yaml,toml,json}.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Logger.Filename == "" {
		cfg.Logger.Filename = filepath.Join(cfg.Data.Dir, AppName+".log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", "http://127.0.0.1:5000")
	v.SetDefault("api.user_id", "user123")
	v.SetDefault("api.timeout", "0s")

	// Backend defaults
	v.SetDefault("backend.enabled", true)
	v.SetDefault("backend.command", "python")
	v.SetDefault("backend.args", []string{"app.py"})
	v.SetDefault("backend.dir", "backend")
	v.SetDefault("backend.ready_timeout", "15s")
	v.SetDefault("backend.stop_timeout", "5s")

	// UI defaults
	v.SetDefault("ui.default_theme", "dark")

	// Chat defaults
	v.SetDefault("chat.default_style", "friendly")
	v.SetDefault("chat.styles", []string{"friendly", "professional", "concise", "humorous"})
	v.SetDefault("chat.action_keywords", map[string][]string{
		"task":   {"task"},
		"event":  {"event"},
		"course": {"course"},
	})

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "file")
	v.SetDefault("logger.filename", "")

	// Data defaults
	v.SetDefault("data.dir", defaultDataDir())
}

// defaultDataDir follows XDG and falls back to ~/.local/share
func defaultDataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return AppName
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, AppName)
}

// Validate checks the values the shell cannot start without
func (cfg *Config) Validate() error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute http url", cfg.API.BaseURL)
	}

	if strings.TrimSpace(cfg.API.UserID) == "" {
		return fmt.Errorf("api user id is required")
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}

	if cfg.Backend.Enabled && cfg.Backend.Command == "" {
		return fmt.Errorf("backend command is required when the backend is enabled")
	}

	switch cfg.UI.DefaultTheme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui default theme must be dark or light, got %q", cfg.UI.DefaultTheme)
	}

	if !slices.Contains(cfg.Chat.Styles, cfg.Chat.DefaultStyle) {
		return fmt.Errorf("chat default style %q is not one of %v", cfg.Chat.DefaultStyle, cfg.Chat.Styles)
	}

	return nil
}

// TrimmedBaseURL returns the service base URL without a trailing slash
func (cfg *APIConfig) TrimmedBaseURL() string {
	return strings.TrimRight(cfg.BaseURL, "/")
}
