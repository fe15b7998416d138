package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"chatsearch/internal/eventbus"
)

// Duration is a time.Duration written as a human string ("100ms") in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Config represents the application configuration
type Config struct {
	Version  int            `toml:"version"`
	Database string         `toml:"database"`
	Search   SearchSettings `toml:"search"`
	Log      LogSettings    `toml:"log"`
	UI       UISettings     `toml:"ui"`
}

// SearchSettings tunes the search session manager
type SearchSettings struct {
	Debounce       Duration `toml:"debounce"`
	PageSize       int      `toml:"page_size"`
	LocateMaxPages int      `toml:"locate_max_pages"`
	CacheTTL       Duration `toml:"cache_ttl"` // 0 disables the page cache
}

// LogSettings configures the log file
type LogSettings struct {
	File  string `toml:"file"`
	Debug bool   `toml:"debug"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowAuthors bool `toml:"show_authors"`
	ShowDates   bool `toml:"show_dates"`
}

// Service handles configuration management
type Service interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// service is the concrete implementation
type service struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the config file location under the user config dir
func DefaultPath() string {
	return filepath.Join(appDir(), "config.toml")
}

func appDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "chatsearch")
}

// NewService creates a config service for path; an empty path means DefaultPath
func NewService(path string) Service {
	if path == "" {
		path = DefaultPath()
	}
	return &service{filePath: path}
}

// NewServiceWithBus creates a config service with event bus support
func NewServiceWithBus(path string, bus eventbus.EventBus) Service {
	s := NewService(path).(*service)
	s.bus = bus
	return s
}

func (s *service) Path() string {
	return s.filePath
}

// Load loads the configuration file, falling back to defaults when it does
// not exist yet
func (s *service) Load() (*Config, error) {
	cfg, err := s.LoadFromPath(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:     s.filePath,
			Database: cfg.Database,
		})
	}
	return cfg, nil
}

// Save saves the configuration to the service's file
func (s *service) Save(config *Config) error {
	if err := s.SaveToPath(config, s.filePath); err != nil {
		return err
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.ConfigSavedEvent{Path: s.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (s *service) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (s *service) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects settings the search manager cannot run with
func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.New("database path is empty")
	}
	if c.Search.Debounce.Duration < 0 {
		return fmt.Errorf("search.debounce must not be negative, got %s", c.Search.Debounce)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be positive, got %d", c.Search.PageSize)
	}
	if c.Search.LocateMaxPages < 0 {
		return fmt.Errorf("search.locate_max_pages must not be negative, got %d", c.Search.LocateMaxPages)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Database: filepath.Join(appDir(), "messages.db"),
		Search: SearchSettings{
			Debounce:       Duration{100 * time.Millisecond},
			PageSize:       20,
			LocateMaxPages: 10,
			CacheTTL:       Duration{30 * time.Second},
		},
		Log: LogSettings{
			File: filepath.Join(appDir(), "chatsearch.log"),
		},
		UI: UISettings{
			ShowAuthors: true,
			ShowDates:   true,
		},
	}
}
