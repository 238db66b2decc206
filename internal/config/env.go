package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	if dbPath := os.Getenv("WINSUSPEND_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if pollInterval := os.Getenv("WINSUSPEND_POLL_INTERVAL"); pollInterval != "" {
		if d, err := time.ParseDuration(pollInterval); err == nil && d > 0 {
			cfg.Tracker.PollInterval = d
		}
	}

	if debounce := os.Getenv("WINSUSPEND_DEBOUNCE_CYCLES"); debounce != "" {
		if n, err := strconv.Atoi(debounce); err == nil && n > 0 {
			cfg.Tracker.DebounceCycles = n
		}
	}

	if checkClipboard := os.Getenv("WINSUSPEND_CHECK_CLIPBOARD"); checkClipboard != "" {
		if val, err := strconv.ParseBool(checkClipboard); err == nil {
			cfg.Tracker.CheckClipboard = val
		}
	}

	if targets := os.Getenv("WINSUSPEND_TARGETS"); targets != "" {
		var list []string
		for _, t := range strings.Split(targets, ",") {
			if t = strings.TrimSpace(t); t != "" {
				list = append(list, t)
			}
		}
		cfg.Tracker.Targets = list
	}

	if pidFile := os.Getenv("WINSUSPEND_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if level := os.Getenv("WINSUSPEND_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if logFile := os.Getenv("WINSUSPEND_LOG_FILE"); logFile != "" {
		cfg.Log.File = logFile
	}

	if webHost := os.Getenv("WINSUSPEND_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("WINSUSPEND_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
