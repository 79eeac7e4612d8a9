package cmd

import (
	"fmt"

	"smartbudget/database"
	"smartbudget/service"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute total_spent for every budget from its expenses",
	Long: "Recompute budgets.total_spent as the sum of each user's expenses.\n" +
		"Use after rows were changed outside the API.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(&cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close(db)

		n, err := service.NewLedger(db).ReconcileAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("reconciled %d budgets before failing: %w", n, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reconciled %d budgets\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
