package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "flatfin",
	Short: "shared-household expense ledger",
	Long:  `flatfin tracks flatmates' expenses: shared cost splitting, balances, budgets, bill reminders and spend reports`,
}

func init() {
	RootCmd.AddCommand(serverCommand())
	RootCmd.AddCommand(migrateCommand())
	RootCmd.AddCommand(reportCmd())
}
