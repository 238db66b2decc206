package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winsuspend/winsuspend/internal/database"
)

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the recorded transition history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Print("This will delete the entire transition history. Are you sure? (yes/no): ")
				var response string
				fmt.Scanln(&response)
				if response != "yes" && response != "y" {
					fmt.Println("Operation cancelled")
					return nil
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			if err := db.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			if err := database.NewRepository(db).Clear(); err != nil {
				return err
			}
			fmt.Println("History cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
