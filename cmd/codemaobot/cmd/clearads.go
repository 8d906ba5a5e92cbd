package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"codemaobot/services/moderation"
)

func init() {
	rootCmd.AddCommand(clearAdsCmd)
}

var clearAdsCmd = &cobra.Command{
	Use:   "clear-ads",
	Short: "Scans comments on the account's works and deletes ads and blacklisted authors after confirmation.",
	Run: func(cmd *cobra.Command, args []string) {
		engine := moderation.NewEngine(client, userData(), config.AccountID)

		ads, blacklist, err := engine.Scan(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}
		if len(ads) == 0 && len(blacklist) == 0 {
			fmt.Println("nothing to delete")
			return
		}

		moderation.RenderMatches(os.Stdout, append(ads, blacklist...))

		ok := engine.Apply(cmd.Context(), ads, stdinConfirmer{})
		ok = engine.Apply(cmd.Context(), blacklist, stdinConfirmer{}) && ok
		if !ok {
			os.Exit(1)
		}
	},
}
