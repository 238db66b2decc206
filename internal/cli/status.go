package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/winsuspend/winsuspend/internal/daemon"
	"github.com/winsuspend/winsuspend/internal/database"
	"github.com/winsuspend/winsuspend/pkg/inventory"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and recent activity",
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

			if running {
				fmt.Printf("Status:  running (PID: %d)\n", pid)
			} else {
				fmt.Println("Status:  not running")
			}
			fmt.Printf("Backend: %s\n", inventory.DetectBackend())
			fmt.Printf("Configuration:\n%s\n", cfg.String())

			db, err := database.Connect(cfg.Database.Path)
			if err != nil {
				return nil
			}
			defer db.Close()
			if err := db.Initialize(); err != nil {
				return nil
			}

			repo := database.NewRepository(db)
			latest, err := repo.GetLatest()
			if err != nil || latest == nil {
				return nil
			}

			fmt.Printf("\nLast transition:\n")
			fmt.Printf("  %s: %s -> %s (%s ago)\n",
				latest.AppName, latest.FromState, latest.ToState,
				time.Since(latest.Timestamp).Round(time.Second))
			if latest.SuspendedFor > 0 {
				fmt.Printf("  suspended for %ds\n", latest.SuspendedFor)
			}
			return nil
		},
	}
}
