package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winsuspend/winsuspend/internal/database"
	"github.com/winsuspend/winsuspend/internal/reporter"
)

func newReportCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:       "report [day|week|month]",
		Short:     "Report time applications spent suspended",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			periodType := "day"
			if len(args) > 0 {
				periodType = args[0]
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

			rep := reporter.New(database.NewRepository(db))
			report, err := rep.GenerateReport(periodType)
			if err != nil {
				return err
			}

			if jsonOutput {
				out, err := rep.FormatReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}
			fmt.Println(rep.FormatReportText(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
