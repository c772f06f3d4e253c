package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/notecourier/notecourier/internal/forum"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check",
	Long:  `Verify the API key of the target forum.`,
	Run: func(cmd *cobra.Command, args []string) {
		forumConfig, client := currentClient()
		if err := client.TestKey(cmd.Context()); err != nil {
			fmt.Printf("%s %s: %v\n", color.RedString("✗"), forum.DisplayName(forumConfig.BaseURL), err)
			os.Exit(1)
		}
		fmt.Printf("%s %s: API key valid for %s\n", color.GreenString("✓"),
			forum.DisplayName(forumConfig.BaseURL), forumConfig.Username)
	},
}
