package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winsuspend/winsuspend/internal/daemon"
)

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the suspend daemon",
		Long: `Stop the daemon with SIGTERM. The daemon resumes every suspended
application before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}
			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
			if err := dm.Stop(); err != nil {
				return err
			}
			fmt.Println("Daemon stopped")
			return nil
		},
	}
}
