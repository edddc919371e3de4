package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pders01/sift/internal/validation"
)

const (
	AppName   = "sift"
	EnvPrefix = "SIFT"
)

type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Opener  OpenerConfig  `mapstructure:"opener"`
	Keys    KeyConfig     `mapstructure:"keys"`
	Log     LogConfig     `mapstructure:"log"`
}

type BackendConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	UserAgent        string        `mapstructure:"user_agent"`
	CancelSuperseded bool          `mapstructure:"cancel_superseded"`
}

type StorageConfig struct {
	Path         string        `mapstructure:"path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	HistoryLimit int           `mapstructure:"history_limit"`
}

type UIConfig struct {
	Colors    UIColors        `mapstructure:"colors"`
	Results   ResultsConfig   `mapstructure:"results"`
	Relevance RelevanceConfig `mapstructure:"relevance"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
	Warning    string `mapstructure:"warning"`
}

type ResultsConfig struct {
	SnippetLength    int `mapstructure:"snippet_length"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

// RelevanceConfig holds the score cut-offs for the relevance badge colors.
type RelevanceConfig struct {
	High   float64 `mapstructure:"high"`
	Medium float64 `mapstructure:"medium"`
}

type OpenerConfig struct {
	Darwin        []string `mapstructure:"darwin"`
	Linux         []string `mapstructure:"linux"`
	Windows       []string `mapstructure:"windows"`
	DefaultOpener string   `mapstructure:"default_opener"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit      string `mapstructure:"quit"`
	Open      string `mapstructure:"open"`
	Bookmark  string `mapstructure:"bookmark"`
	History   string `mapstructure:"history"`
	Bookmarks string `mapstructure:"bookmarks"`
	Delete    string `mapstructure:"delete"`
	Back      string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Backend: BackendConfig{
			BaseURL:          "http://localhost:8080",
			Timeout:          10 * time.Second,
			UserAgent:        "sift/1.0 (https://github.com/pders01/sift)",
			CancelSuperseded: true,
		},
		Storage: StorageConfig{
			Path:         filepath.Join(homeDir, ".sift.db"),
			Timeout:      1 * time.Second,
			HistoryLimit: 100,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
				Warning:    "#FFE66D",
			},
			Results: ResultsConfig{
				SnippetLength:    160,
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
			Relevance: RelevanceConfig{
				High:   0.8,
				Medium: 0.5,
			},
		},
		Opener: OpenerConfig{
			Darwin:        []string{"open"},
			Linux:         []string{"firefox", "chromium", "google-chrome", "xdg-open"},
			Windows:       []string{"start"},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:      "q",
				Open:      "o",
				Bookmark:  "b",
				History:   "r",
				Bookmarks: "l",
				Delete:    "x",
				Back:      "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".sift", "sift.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// DefaultPath is where Load looks first and where `config generate` writes.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName, "config.toml")
}

// setDefaults registers every leaf key so that SIFT_* environment overrides
// resolve for nested settings too.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("backend.base_url", cfg.Backend.BaseURL)
	v.SetDefault("backend.timeout", cfg.Backend.Timeout)
	v.SetDefault("backend.user_agent", cfg.Backend.UserAgent)
	v.SetDefault("backend.cancel_superseded", cfg.Backend.CancelSuperseded)

	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.timeout", cfg.Storage.Timeout)
	v.SetDefault("storage.history_limit", cfg.Storage.HistoryLimit)

	c := cfg.UI.Colors
	v.SetDefault("ui.colors.primary", c.Primary)
	v.SetDefault("ui.colors.secondary", c.Secondary)
	v.SetDefault("ui.colors.accent", c.Accent)
	v.SetDefault("ui.colors.background", c.Background)
	v.SetDefault("ui.colors.surface", c.Surface)
	v.SetDefault("ui.colors.text", c.Text)
	v.SetDefault("ui.colors.muted", c.Muted)
	v.SetDefault("ui.colors.error", c.Error)
	v.SetDefault("ui.colors.success", c.Success)
	v.SetDefault("ui.colors.warning", c.Warning)
	v.SetDefault("ui.results.snippet_length", cfg.UI.Results.SnippetLength)
	v.SetDefault("ui.results.word_wrap_max_width", cfg.UI.Results.WordWrapMaxWidth)
	v.SetDefault("ui.results.word_wrap_min_width", cfg.UI.Results.WordWrapMinWidth)
	v.SetDefault("ui.relevance.high", cfg.UI.Relevance.High)
	v.SetDefault("ui.relevance.medium", cfg.UI.Relevance.Medium)

	v.SetDefault("opener.darwin", cfg.Opener.Darwin)
	v.SetDefault("opener.linux", cfg.Opener.Linux)
	v.SetDefault("opener.windows", cfg.Opener.Windows)
	v.SetDefault("opener.default_opener", cfg.Opener.DefaultOpener)

	b := cfg.Keys.Bindings
	v.SetDefault("keys.modifier", cfg.Keys.Modifier)
	v.SetDefault("keys.bindings.quit", b.Quit)
	v.SetDefault("keys.bindings.open", b.Open)
	v.SetDefault("keys.bindings.bookmark", b.Bookmark)
	v.SetDefault("keys.bindings.history", b.History)
	v.SetDefault("keys.bindings.bookmarks", b.Bookmarks)
	v.SetDefault("keys.bindings.delete", b.Delete)
	v.SetDefault("keys.bindings.back", b.Back)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	// SIFT_BACKEND_BASE_URL, SIFT_LOG_LEVEL, ...
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	if _, err := validation.NewBackendURLValidator().ValidateAndNormalize(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	if c.Storage.HistoryLimit < 0 {
		return fmt.Errorf("storage.history_limit must not be negative")
	}
	if c.UI.Relevance.Medium > c.UI.Relevance.High {
		return fmt.Errorf("ui.relevance.medium (%.2f) must not exceed ui.relevance.high (%.2f)",
			c.UI.Relevance.Medium, c.UI.Relevance.High)
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings keep the TOML readable.
	v.Set("backend", map[string]interface{}{
		"base_url":          config.Backend.BaseURL,
		"timeout":           config.Backend.Timeout.String(),
		"user_agent":        config.Backend.UserAgent,
		"cancel_superseded": config.Backend.CancelSuperseded,
	})
	v.Set("storage", map[string]interface{}{
		"path":          config.Storage.Path,
		"timeout":       config.Storage.Timeout.String(),
		"history_limit": config.Storage.HistoryLimit,
	})

	c := config.UI.Colors
	v.Set("ui", map[string]interface{}{
		"colors": map[string]interface{}{
			"primary":    c.Primary,
			"secondary":  c.Secondary,
			"accent":     c.Accent,
			"background": c.Background,
			"surface":    c.Surface,
			"text":       c.Text,
			"muted":      c.Muted,
			"error":      c.Error,
			"success":    c.Success,
			"warning":    c.Warning,
		},
		"results": map[string]interface{}{
			"snippet_length":      config.UI.Results.SnippetLength,
			"word_wrap_max_width": config.UI.Results.WordWrapMaxWidth,
			"word_wrap_min_width": config.UI.Results.WordWrapMinWidth,
		},
		"relevance": map[string]interface{}{
			"high":   config.UI.Relevance.High,
			"medium": config.UI.Relevance.Medium,
		},
	})
	v.Set("opener", map[string]interface{}{
		"darwin":         config.Opener.Darwin,
		"linux":          config.Opener.Linux,
		"windows":        config.Opener.Windows,
		"default_opener": config.Opener.DefaultOpener,
	})

	b := config.Keys.Bindings
	v.Set("keys", map[string]interface{}{
		"modifier": config.Keys.Modifier,
		"bindings": map[string]interface{}{
			"quit":      b.Quit,
			"open":      b.Open,
			"bookmark":  b.Bookmark,
			"history":   b.History,
			"bookmarks": b.Bookmarks,
			"delete":    b.Delete,
			"back":      b.Back,
		},
	})
	v.Set("log", map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
