package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"codemaobot/lib/jsonpath"
)

func init() {
	rootCmd.AddCommand(likeAllCmd)
}

var likeAllCmd = &cobra.Command{
	Use:   "like-all <user-id>",
	Short: "Likes every work published by the given user.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		works, err := client.UserWorks(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}

		liked := 0
		for _, work := range works {
			workID := int64(jsonpath.Int(work, "id"))
			if workID == 0 {
				continue
			}
			if !client.LikeWork(cmd.Context(), workID) {
				fmt.Fprintf(os.Stderr, "failed to like work %d\n", workID)
				os.Exit(1)
			}
			liked++
		}
		fmt.Printf("liked %d works\n", liked)
	},
}
