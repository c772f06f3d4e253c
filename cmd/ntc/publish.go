package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/notecourier/notecourier/internal/core"
	"github.com/notecourier/notecourier/internal/forum"
	"github.com/notecourier/notecourier/internal/publish"
	"github.com/notecourier/notecourier/internal/vault"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish <note>",
	Short: "Publish",
	Long:  `Create or update the forum post of a note.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			// Fail fast, before any network call
			fmt.Println("No note to publish. Usage: ntc publish <note>")
			os.Exit(1)
		}
		v := currentVault()
		file := resolveTarget(v, args[0])
		forumConfig, client := currentClient()

		publisher := publish.NewPublisher(v, client, forumConfig.BaseURL, publishOptions()).
			OnNotify(func(message string) {
				fmt.Println(color.YellowString("%s", message))
			}).
			OnCategoryConflict(ChooseCategory)

		result, err := publisher.Publish(cmd.Context(), file)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		recordPublication(file, forumConfig, result)
		fmt.Printf("%s %s %q\n", color.GreenString("✓"), result.Action, result.Title)
		fmt.Println(result.URL)
	},
}

// recordPublication appends the outcome to the local history. The history is
// informational only, a failure must not fail the publish.
func recordPublication(file *vault.File, forumConfig *core.ConfigForum, result *publish.Result) {
	history, err := core.OpenHistory(core.CurrentConfig().HistoryPath())
	if err != nil {
		core.CurrentLogger().Warnf("Unable to open history: %v", err)
		return
	}
	defer history.Close()
	err = history.Append(core.HistoryEntry{
		File:     file.RelativePath,
		ForumKey: forum.DeriveKey(forumConfig.BaseURL),
		PostID:   result.PostID,
		TopicID:  result.TopicID,
		Action:   result.Action,
		URL:      result.URL,
	})
	if err != nil {
		core.CurrentLogger().Warnf("Unable to record publication: %v", err)
	}
}
