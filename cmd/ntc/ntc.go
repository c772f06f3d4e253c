package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notecourier/notecourier/internal/core"
	"github.com/notecourier/notecourier/internal/discourse"
	"github.com/notecourier/notecourier/internal/publish"
	"github.com/notecourier/notecourier/internal/vault"
)

var verboseInfo bool
var verboseDebug bool
var verboseTrace bool

var forumName string

var rootCmd = &cobra.Command{
	Use:   "ntc",
	Short: "NoteCourier publishes Markdown notes to Discourse forums",
	Long: `Publish Markdown notes to Discourse forums: embedded notes are inlined,
images are uploaded, and forum identifiers are written back into the front
matter so the next publish becomes an update instead of a duplicate.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Enable verbose output. The most verbose level wins when multiple flags are passed.
		if verboseInfo {
			core.CurrentLogger().SetVerboseLevel(core.VerboseInfo)
		}
		if verboseDebug {
			core.CurrentLogger().SetVerboseLevel(core.VerboseDebug)
		}
		if verboseTrace {
			core.CurrentLogger().SetVerboseLevel(core.VerboseTrace)
		}
	},
}

func init() {
	// Use PersistentFlags to make flags accessible to sub-commands
	rootCmd.PersistentFlags().BoolVarP(&verboseInfo, "v", "", false, "enable verbose info output")
	rootCmd.PersistentFlags().BoolVarP(&verboseDebug, "vv", "", false, "enable verbose debug output")
	rootCmd.PersistentFlags().BoolVarP(&verboseTrace, "vvv", "", false, "enable verbose trace output")
	rootCmd.PersistentFlags().StringVarP(&forumName, "forum", "f", "", "name of the target forum (default: the first configured forum)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

/*
 * Helpers shared by sub-commands
 */

func currentVault() *vault.Vault {
	v, err := vault.Open(core.CurrentConfig().RootDirectory)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return v
}

func currentForum() *core.ConfigForum {
	forum, err := core.CurrentConfig().ActiveForum(forumName)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return forum
}

func currentClient() (*core.ConfigForum, *discourse.Client) {
	forum := currentForum()
	if forum.APIKey() == "" {
		env := forum.APIKeyEnv
		if env == "" {
			env = "DISCOURSE_API_KEY"
		}
		fmt.Printf("No API key for forum %q (set $%s or add it to .env)\n", forum.Name, env)
		os.Exit(1)
	}
	return forum, discourse.NewClient(forum.BaseURL, forum.APIKey(), forum.Username)
}

func publishOptions() publish.Options {
	options := core.CurrentConfig().ConfigFile.Publish
	return publish.Options{
		DefaultCategory:    options.DefaultCategory,
		DefaultTags:        options.DefaultTags,
		UseRemoteURL:       options.UseRemoteURL,
		RewriteMediaLinks:  options.RewriteMediaLinks,
		ConvertHighlights:  options.ConvertHighlights,
		RemoveTopHeadings:  options.RemoveTopHeadings,
		IgnoredHeadings:    options.IgnoredHeadings,
		ForceFilenameTitle: options.ForceFilenameTitle,
	}
}

// resolveTarget accepts a vault-relative path or a wiki-link-style name.
func resolveTarget(v *vault.Vault, name string) *vault.File {
	file := v.Get(name)
	if file == nil {
		file = v.Resolve(name, "")
	}
	if file == nil {
		fmt.Printf("No note found for %q\n", name)
		os.Exit(1)
	}
	return file
}
