package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"codemaobot/lib/codemao"
	"codemaobot/services/inbox"
)

var readAllSource string

func init() {
	readAllCmd.Flags().StringVar(&readAllSource, "source", "web", "inbox to clear: web or nemo")
	rootCmd.AddCommand(readAllCmd)
}

var readAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Marks every message of the selected inbox as read.",
	Run: func(cmd *cobra.Command, args []string) {
		source, err := codemao.ParseSource(readAllSource)
		if err != nil {
			log.Fatal(err)
		}

		engine := inbox.NewEngine(client)
		if !engine.MarkAllRead(cmd.Context(), source) {
			os.Exit(1)
		}
	},
}
