package cli

import (
	"time"

	"github.com/winsuspend/winsuspend/internal/config"
)

// loadConfig builds the effective configuration from file, environment
// and the flags given on the command line. Flags win.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if pollInterval != "" {
		d, err := time.ParseDuration(pollInterval)
		if err != nil {
			return nil, err
		}
		if err := cfg.SetPollInterval(d); err != nil {
			return nil, err
		}
	}
	if debounceCycles > 0 {
		cfg.Tracker.DebounceCycles = debounceCycles
	}
	if rootCmd.PersistentFlags().Changed("check-clipboard") {
		cfg.Tracker.CheckClipboard = checkClipboard
	}

	return cfg, cfg.Validate()
}
