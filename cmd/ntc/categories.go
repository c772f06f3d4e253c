package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Categories",
	Long:  `List the categories of the target forum.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, client := currentClient()
		categories, err := client.FetchCategories(cmd.Context())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		for _, category := range categories {
			fmt.Printf("%4d  %s\n", category.ID, category.Name)
		}
	},
}
