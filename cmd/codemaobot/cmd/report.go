package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"codemaobot/services/report"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Prints how the account's engagement counters changed since the last run.",
	Run: func(cmd *cobra.Command, args []string) {
		engine := report.NewEngine(client, cache.Root())
		err := engine.Run(cmd.Context(), os.Stdout, config.AccountID)
		if err != nil {
			log.Fatal(err)
		}
	},
}
