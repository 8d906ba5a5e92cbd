package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"codemaobot/services/report"
)

func init() {
	rootCmd.AddCommand(relationsCmd)
}

var relationsCmd = &cobra.Command{
	Use:   "relations",
	Short: "Prints the account's fan and follow lists and who followed or unfollowed since the last run.",
	Run: func(cmd *cobra.Command, args []string) {
		engine := report.NewEngine(client, cache.Root())
		err := engine.Relations(cmd.Context(), os.Stdout, config.AccountID)
		if err != nil {
			log.Fatal(err)
		}
	},
}
