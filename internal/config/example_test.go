package config_test

import (
	"fmt"
	"time"

	"github.com/winsuspend/winsuspend/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Poll Interval:", cfg.Tracker.PollInterval)
	fmt.Println("Debounce Cycles:", cfg.Tracker.DebounceCycles)
	// Output:
	// Poll Interval: 2s
	// Debounce Cycles: 3
}

// Example of creating configuration with environment variables
func ExampleNew() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	fmt.Println("Configuration loaded successfully")
	// Output:
	// Configuration loaded successfully
}

// Example of setting poll interval with validation
func ExampleConfig_SetPollInterval() {
	cfg := config.Default()

	// Valid interval
	if err := cfg.SetPollInterval(10 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Poll interval set to:", cfg.Tracker.PollInterval)
	}

	// Invalid interval (too low)
	if err := cfg.SetPollInterval(100 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Poll interval set to: 10s
	// Error: poll interval cannot be less than 500ms
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Configuration is valid
}
