package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Filter   FilterConfig   `mapstructure:"filter"`
	UI       UIConfig       `mapstructure:"ui"`
	Database DatabaseConfig `mapstructure:"database"`
	History  HistoryConfig  `mapstructure:"history"`
	Saved    SavedConfig    `mapstructure:"saved"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// FilterConfig describes what the filter builder offers
type FilterConfig struct {
	Fields       []string          `mapstructure:"fields"`
	Operators    []string          `mapstructure:"operators"`
	ConditionMap map[string]string `mapstructure:"condition_map"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
	Width        int    `mapstructure:"width"`
	Height       int    `mapstructure:"height"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	Schema       string `mapstructure:"schema"`
	Table        string `mapstructure:"table"`
	DefaultLimit int    `mapstructure:"default_limit"`
	QueryTimeout int    `mapstructure:"query_timeout"` // milliseconds
	MaxConns     int32  `mapstructure:"max_conns"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type SavedConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	ValidateInput bool   `mapstructure:"validate_input"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Filter: FilterConfig{
			Fields: []string{"field1", "field2", "field3", "field4"},
			Operators: []string{
				"is equal to",
				"is not equal to",
				"is greater than",
				"is less than",
				"contains",
			},
			ConditionMap: map[string]string{
				"is equal to":     "=",
				"is not equal to": "!=",
			},
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: false,
			Width:        100,
			Height:       30,
		},
		Database: DatabaseConfig{
			Schema:       "public",
			DefaultLimit: 100,
			QueryTimeout: 30000,
			MaxConns:     5,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			ValidateInput: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from files. An explicit path wins over the
// search path; a missing file in the search path is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MULTIFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := GetDefaults()
	v.SetDefault("filter.fields", defaults.Filter.Fields)
	v.SetDefault("filter.operators", defaults.Filter.Operators)
	v.SetDefault("filter.condition_map", defaults.Filter.ConditionMap)
	v.SetDefault("ui.theme", defaults.UI.Theme)
	v.SetDefault("ui.mouse_enabled", defaults.UI.MouseEnabled)
	v.SetDefault("ui.width", defaults.UI.Width)
	v.SetDefault("ui.height", defaults.UI.Height)
	v.SetDefault("database.url", "")
	v.SetDefault("database.schema", defaults.Database.Schema)
	v.SetDefault("database.table", "")
	v.SetDefault("database.default_limit", defaults.Database.DefaultLimit)
	v.SetDefault("database.query_timeout", defaults.Database.QueryTimeout)
	v.SetDefault("database.max_conns", defaults.Database.MaxConns)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.path", "")
	v.SetDefault("history.max_entries", defaults.History.MaxEntries)
	v.SetDefault("saved.path", "")
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.validate_input", defaults.Server.ValidateInput)
	v.SetDefault("log.level", defaults.Log.Level)

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "multifilter"), nil
}

// HistoryPath returns the configured history database path, defaulting to
// the user config directory
func (c *Config) HistoryPath() (string, error) {
	return c.fileIn(c.History.Path, "history.db")
}

// SavedPath returns the configured saved filter file, defaulting to the
// user config directory
func (c *Config) SavedPath() (string, error) {
	return c.fileIn(c.Saved.Path, "filters.yaml")
}

func (c *Config) fileIn(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// LogLevel parses the configured log level, defaulting to info
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger builds the application logger writing text records to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: c.LogLevel(),
	})
	return slog.New(handler)
}
