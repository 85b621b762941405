package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/noelzubin/smart_search/search"
	"github.com/spf13/viper"
)

// Config is the configuration for the application
type Config struct {
	Workspace         string          `mapstructure:"workspace"`          // JSON file holding the searchable sources
	Editor            string          `mapstructure:"editor"`             // Editor to open the workspace with
	DataDir           string          `mapstructure:"data_dir"`           // Where the search history is stored
	HighlightDuration time.Duration   `mapstructure:"highlight_duration"` // How long an activated item stays highlighted
	Semantic          bool            `mapstructure:"semantic"`           // Run the semantic pass after each search
	Filters           map[string]bool `mapstructure:"filters"`            // Category name -> enabled
	LogLevel          string          `mapstructure:"log_level"`          // zap level name
}

// DefaultConfigPath is where NewConfig looks for the config file.
func DefaultConfigPath() string {
	homedir, _ := os.UserHomeDir()
	return path.Join(homedir, "/.config/smart_search/config.yaml")
}

// defaultDataDir returns where the history and logs are kept.
func defaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return path.Join(dir, "/smart_search")
}

// NewConfig reads the config file at configPath. A missing file leaves
// every setting at its default.
func NewConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	v.SetDefault("workspace", path.Join(defaultDataDir(), "/workspace.json"))
	v.SetDefault("editor", os.Getenv("EDITOR"))
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("highlight_duration", "2s")
	v.SetDefault("semantic", false)
	v.SetDefault("filters", map[string]bool{})
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to parse the config file: %w", err)
	}
	if config.Editor == "" {
		config.Editor = "vi"
	}

	return config, nil
}

// SearchFilters builds the initial filter set from the config.
func (c *Config) SearchFilters() search.Filters {
	f := search.FiltersFromMap(c.Filters)
	if c.Semantic {
		f.Set(search.Semantic, true)
	}
	return f
}

// HistoryPath is the key-value store holding the search history.
func (c *Config) HistoryPath() string {
	return path.Join(c.DataDir, "/preferences.json")
}

// LogPath is the debug log file.
func (c *Config) LogPath() string {
	return path.Join(c.DataDir, "/debug.log")
}
