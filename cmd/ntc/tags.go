package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tagsCmd)
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Tags",
	Long:  `List the tags of the target forum.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, client := currentClient()
		tags, err := client.FetchTags(cmd.Context())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		for _, tag := range tags {
			fmt.Println(tag.Name)
		}

		canCreate, err := client.CanCreateTags(cmd.Context())
		if err == nil && !canCreate {
			fmt.Println("\nNote: this forum does not allow creating new tags.")
		}
	},
}
