package main

import (
	"fmt"

	"github.com/notecourier/notecourier/internal/expand"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(expandCmd)
}

var expandCmd = &cobra.Command{
	Use:   "expand <note>",
	Short: "Expand",
	Long:  `Print a note with all embedded notes inlined, as it would be published.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := currentVault()
		file := resolveTarget(v, args[0])
		fmt.Print(expand.NewExpander(v).Expand(file).String())
	},
}
