package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Tracker configuration
	Tracker TrackerConfig `yaml:"tracker"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Web server configuration
	Web WebConfig `yaml:"web"`
}

// DatabaseConfig holds transition-history database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database file
}

// TrackerConfig holds polling and suspend-decision configuration
type TrackerConfig struct {
	PollInterval     time.Duration `yaml:"poll_interval"`     // How often to run a cycle
	MinPollInterval  time.Duration `yaml:"-"`                 // Minimum allowed poll interval
	MaxPollInterval  time.Duration `yaml:"-"`                 // Maximum allowed poll interval
	CycleTimeout     time.Duration `yaml:"cycle_timeout"`     // Bound on one cycle's external queries
	DebounceCycles   int           `yaml:"debounce_cycles"`   // Hidden cycles before a stop commits
	CheckClipboard   bool          `yaml:"check_clipboard"`   // Enable the clipboard guard
	ClipboardTimeout time.Duration `yaml:"clipboard_timeout"` // Bound on one clipboard read
	Targets          []string      `yaml:"targets"`           // Process names to manage; empty = all
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file"` // Path to PID file for daemon management
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Empty means stderr
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `yaml:"host"` // Host to bind web server to
	Port int    `yaml:"port"` // Port for web server
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/winsuspend/winsuspend.db
		},
		Tracker: TrackerConfig{
			PollInterval:     2 * time.Second,
			MinPollInterval:  500 * time.Millisecond,
			MaxPollInterval:  300 * time.Second,
			CycleTimeout:     5 * time.Second,
			DebounceCycles:   3,
			CheckClipboard:   false,
			ClipboardTimeout: 100 * time.Millisecond,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/winsuspend-%d.pid", os.Getuid()),
		},
		Log: LogConfig{
			Level: "info",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10100 + os.Getuid(),
		},
	}
}

// DefaultFilePath returns the default config file location.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "winsuspend", "config.yaml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.DebounceCycles < 1 {
		return fmt.Errorf("debounce cycles must be at least 1, got %d", c.Tracker.DebounceCycles)
	}

	if c.Tracker.CycleTimeout <= 0 {
		return fmt.Errorf("cycle timeout must be positive, got %v", c.Tracker.CycleTimeout)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", c.Log.Level)
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// String returns a human-readable summary of the configuration
func (c *Config) String() string {
	targets := "all windowed applications"
	if len(c.Tracker.Targets) > 0 {
		targets = strings.Join(c.Tracker.Targets, ", ")
	}
	return fmt.Sprintf(
		"  poll interval:   %v\n"+
			"  debounce cycles: %d\n"+
			"  clipboard guard: %v\n"+
			"  targets:         %s\n"+
			"  database:        %s\n"+
			"  pid file:        %s",
		c.Tracker.PollInterval,
		c.Tracker.DebounceCycles,
		c.Tracker.CheckClipboard,
		targets,
		c.Database.Path,
		c.Daemon.PIDFile,
	)
}
