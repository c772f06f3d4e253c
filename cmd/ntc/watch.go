package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/notecourier/notecourier/internal/core"
	"github.com/notecourier/notecourier/internal/forum"
	"github.com/notecourier/notecourier/internal/publish"
	"github.com/spf13/cobra"
)

// Editors fire several events per save, wait for the burst to settle.
const watchDebounce = 500 * time.Millisecond

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch",
	Long:  `Watch the vault and republish already-published notes when they change.`,
	Run: func(cmd *cobra.Command, args []string) {
		forumConfig, client := currentClient()
		root := core.CurrentConfig().RootDirectory

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer watcher.Close()

		if err := watchDirsRecursive(watcher, root); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Watching %s (Ctrl+C to stop)\n", root)

		// Pending notes keyed by absolute path, republished once the burst settles
		pending := make(map[string]bool)
		timer := time.NewTimer(watchDebounce)
		timer.Stop()

		for {
			select {
			case <-cmd.Context().Done():
				return

			case <-timer.C:
				for path := range pending {
					republish(cmd.Context(), path, forumConfig, client)
				}
				pending = make(map[string]bool)

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watchDirsRecursive(watcher, event.Name)
						continue
					}
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !strings.HasSuffix(event.Name, ".md") || ignoredPath(root, event.Name) {
					continue
				}
				pending[event.Name] = true
				timer.Reset(watchDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				core.CurrentLogger().Warnf("Watcher error: %v", err)
			}
		}
	},
}

// republish publishes a changed note, only if it was already published once to
// the target forum. New notes stay local until an explicit publish.
func republish(ctx context.Context, absPath string, forumConfig *core.ConfigForum, client publish.API) {
	// Reopen the vault on every change to pick up new or renamed files
	v := currentVault()

	relPath, err := filepath.Rel(core.CurrentConfig().RootDirectory, absPath)
	if err != nil {
		return
	}
	file := v.Get(filepath.ToSlash(relPath))
	if file == nil {
		return
	}
	content, err := v.ReadText(file)
	if err != nil {
		return
	}
	record := forum.ReadRecord(content, forumConfig.BaseURL)
	if record == nil || !record.Published() {
		return
	}

	publisher := publish.NewPublisher(v, client, forumConfig.BaseURL, publishOptions())
	result, err := publisher.Publish(ctx, file)
	if err != nil {
		core.CurrentLogger().Warnf("Unable to republish %q: %v", file, err)
		return
	}
	recordPublication(file, forumConfig, result)
	fmt.Printf("%s %q\n", result.Action, file.RelativePath)
}

func watchDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		switch d.Name() {
		case ".git", ".ntc", ".obsidian":
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func ignoredPath(root, absPath string) bool {
	relPath, err := filepath.Rel(root, absPath)
	if err != nil {
		return true
	}
	for _, segment := range strings.Split(filepath.ToSlash(relPath), "/") {
		switch segment {
		case ".git", ".ntc", ".obsidian":
			return true
		}
	}
	return false
}
