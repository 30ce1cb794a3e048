package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	UI       UIConfig       `mapstructure:"ui"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type FetchConfig struct {
	StoryLimit  int           `mapstructure:"story_limit"`
	FanOut      int           `mapstructure:"fan_out"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

type UIConfig struct {
	Colors UIColors    `mapstructure:"colors"`
	Story  StoryConfig `mapstructure:"story"`
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
}

type StoryConfig struct {
	MaxTitleLength   int `mapstructure:"max_title_length"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

// BrowserConfig overrides the platform opener; when Command is empty the
// launcher picks from its built-in per-OS candidates.
type BrowserConfig struct {
	Command string `mapstructure:"command"`
}

type KeyConfig struct {
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit    string `mapstructure:"quit"`
	Refresh string `mapstructure:"refresh"`
	Search  string `mapstructure:"search"`
	Details string `mapstructure:"details"`
	Open    string `mapstructure:"open"`
	Back    string `mapstructure:"back"`
	Help    string `mapstructure:"help"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".hkrnws", "hkrnws.db")

	return &Config{
		Database: DatabaseConfig{
			Path:    dbPath,
			Timeout: 1 * time.Second,
		},
		Fetch: FetchConfig{
			StoryLimit:  30,
			FanOut:      10,
			HTTPTimeout: 10 * time.Second,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6600",
				Secondary:  "#FFB067",
				Accent:     "#4ECDC4",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Story: StoryConfig{
				MaxTitleLength:   100,
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
		},
		Browser: BrowserConfig{
			Command: "",
		},
		Keys: KeyConfig{
			Bindings: KeyBindings{
				Quit:    "q",
				Refresh: "r",
				Search:  "/",
				Details: "d",
				Open:    "enter",
				Back:    "esc",
				Help:    "?",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
			Path:  "",
		},
	}
}

// sectionMaps renders cfg section by section with the lowercase leaf
// keys of the TOML schema. Durations become strings so the TOML encoder
// and the duration decode hook both handle them unambiguously.
func sectionMaps(cfg *Config) map[string]map[string]any {
	return map[string]map[string]any{
		"database": {
			"path":    cfg.Database.Path,
			"timeout": cfg.Database.Timeout.String(),
		},
		"fetch": {
			"story_limit":  cfg.Fetch.StoryLimit,
			"fan_out":      cfg.Fetch.FanOut,
			"http_timeout": cfg.Fetch.HTTPTimeout.String(),
		},
		"ui": {
			"colors": map[string]any{
				"primary":    cfg.UI.Colors.Primary,
				"secondary":  cfg.UI.Colors.Secondary,
				"accent":     cfg.UI.Colors.Accent,
				"background": cfg.UI.Colors.Background,
				"surface":    cfg.UI.Colors.Surface,
				"text":       cfg.UI.Colors.Text,
				"muted":      cfg.UI.Colors.Muted,
				"error":      cfg.UI.Colors.Error,
				"success":    cfg.UI.Colors.Success,
			},
			"story": map[string]any{
				"max_title_length":    cfg.UI.Story.MaxTitleLength,
				"word_wrap_max_width": cfg.UI.Story.WordWrapMaxWidth,
				"word_wrap_min_width": cfg.UI.Story.WordWrapMinWidth,
			},
		},
		"browser": {
			"command": cfg.Browser.Command,
		},
		"keys": {
			"bindings": map[string]any{
				"quit":    cfg.Keys.Bindings.Quit,
				"refresh": cfg.Keys.Bindings.Refresh,
				"search":  cfg.Keys.Bindings.Search,
				"details": cfg.Keys.Bindings.Details,
				"open":    cfg.Keys.Bindings.Open,
				"back":    cfg.Keys.Bindings.Back,
				"help":    cfg.Keys.Bindings.Help,
			},
		},
		"logging": {
			"level": cfg.Logging.Level,
			"path":  cfg.Logging.Path,
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults are registered leaf by leaf so a partial config section
	// merges with them instead of replacing the whole section, and so
	// HKRNWS_* env overrides are visible to Unmarshal.
	for section, values := range sectionMaps(defaultConfig()) {
		v.SetDefault(section, values)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "hkrnws")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HKRNWS")
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

	// Expand paths after loading
	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand tilde
	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	// Convert to absolute path if not already absolute
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// expandPaths expands all paths in the config
func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Logging.Path = expandPath(cfg.Logging.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	for section, values := range sectionMaps(config) {
		v.Set(section, values)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
