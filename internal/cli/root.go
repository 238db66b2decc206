package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile     string
	logLevel       string
	pollInterval   string
	debounceCycles int
	checkClipboard bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "winsuspend",
	Short: "Suspend GUI applications whose windows are not on a visible workspace",
	Long: `Winsuspend is a daemon that watches the window system and stops the
process groups of applications none of whose windows are on a visible
workspace, resuming them the moment a window becomes visible again.
Suspended applications consume no CPU while keeping their full state.

Supports sway, i3 and plain X11 window managers.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.config/winsuspend/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&pollInterval, "interval", "", "poll interval, e.g. 2s")
	rootCmd.PersistentFlags().IntVar(&debounceCycles, "debounce", 0, "hidden cycles before an application is suspended")
	rootCmd.PersistentFlags().BoolVar(&checkClipboard, "check-clipboard", false, "defer a suspend once when the clipboard changed recently")

	rootCmd.AddCommand(
		newStartCmd(),
		newStopCmd(),
		newStatusCmd(),
		newReportCmd(),
		newClearCmd(),
		newVersionCmd(),
	)
}
