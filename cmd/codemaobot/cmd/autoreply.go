package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"codemaobot/services/autoreply"
)

var autoReplyLimit int

func init() {
	autoReplyCmd.Flags().IntVar(&autoReplyLimit, "limit", 0, "max notifications to answer, 0 = current unread count")
	rootCmd.AddCommand(autoReplyCmd)
}

var autoReplyCmd = &cobra.Command{
	Use:   "auto-reply",
	Short: "Answers pending comment/reply notifications with keyword-matched templates.",
	Run: func(cmd *cobra.Command, args []string) {
		ledger := openLedger(cmd.Context())
		if ledger != nil {
			defer ledger.Close()
		}

		engine := autoreply.NewEngine(client, userData(), accountInfo(), ledger)
		if !engine.ProcessPending(cmd.Context(), autoReplyLimit) {
			os.Exit(1)
		}
	},
}
