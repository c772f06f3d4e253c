package main

import (
	"fmt"
	"os"

	"github.com/notecourier/notecourier/internal/core"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [note]",
	Short: "History",
	Long:  `Show past publications, most recent first.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		file := ""
		if len(args) == 1 {
			file = resolveTarget(currentVault(), args[0]).RelativePath
		}

		history, err := core.OpenHistory(core.CurrentConfig().HistoryPath())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer history.Close()

		entries, err := history.List(file, historyLimit)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Println("No publication yet.")
			return
		}
		for _, entry := range entries {
			fmt.Printf("%s  %-7s  %-12s  %s\n",
				entry.PublishedAt.Format("2006-01-02 15:04"), entry.Action, entry.ForumKey, entry.File)
		}
	},
}
