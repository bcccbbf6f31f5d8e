package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. USERDESK_API_BASE_URL.
const EnvPrefix = "USERDESK"

// Config is the persistent application configuration
type Config struct {
	// Remote users API
	API APIConfig `json:"api" split_words:"true"`

	// Listing behaviour
	List ListConfig `json:"list" split_words:"true"`

	// Local mutation journal
	Journal JournalConfig `json:"journal" split_words:"true"`

	// debug, info, warn or error
	LogLevel string `json:"log_level" split_words:"true"`
}

// APIConfig locates and throttles the users API
type APIConfig struct {
	BaseURL           string  `json:"base_url" split_words:"true"`
	TimeoutSeconds    int     `json:"timeout_seconds" split_words:"true"`
	RequestsPerSecond float64 `json:"requests_per_second" split_words:"true"` // 0 = unlimited
	Burst             int     `json:"burst" split_words:"true"`
}

// ListConfig holds listing preferences
type ListConfig struct {
	DebounceMs      int   `json:"debounce_ms" split_words:"true"`
	PageSize        int   `json:"page_size" split_words:"true"`
	PageSizeOptions []int `json:"page_size_options" split_words:"true"`
}

// JournalConfig controls the mutation journal
type JournalConfig struct {
	Enabled bool   `json:"enabled" split_words:"true"`
	Path    string `json:"path,omitempty" split_words:"true"` // empty = <data dir>/journal.db
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8090",
			TimeoutSeconds:    10,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		List: ListConfig{
			DebounceMs:      400,
			PageSize:        5,
			PageSizeOptions: []int{5, 10, 25, 50},
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		LogLevel: "info",
	}
}

// DataDir returns the directory holding config, logs, events and journal.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".userdesk")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Load reads the config file at path (defaults when it does not exist),
// applies USERDESK_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must not be negative, got %g", c.API.RequestsPerSecond)
	}
	if c.List.DebounceMs <= 0 {
		return fmt.Errorf("list.debounce_ms must be positive, got %d", c.List.DebounceMs)
	}
	if len(c.List.PageSizeOptions) == 0 {
		return errors.New("list.page_size_options must not be empty")
	}
	for _, n := range c.List.PageSizeOptions {
		if n <= 0 {
			return fmt.Errorf("list.page_size_options: %d is not a positive size", n)
		}
	}
	if !slices.Contains(c.List.PageSizeOptions, c.List.PageSize) {
		return fmt.Errorf("list.page_size %d is not one of %v", c.List.PageSize, c.List.PageSizeOptions)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// Timeout is the per-request API timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Debounce is the quiet period for text filters.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.List.DebounceMs) * time.Millisecond
}

// JournalPath resolves the journal location inside dataDir when unset.
func (c *Config) JournalPath(dataDir string) string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(dataDir, "journal.db")
}
