package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/notecourier/notecourier/internal/expand"
	"github.com/notecourier/notecourier/internal/markdown"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
)

var previewStdout bool

func init() {
	previewCmd.Flags().BoolVarP(&previewStdout, "stdout", "o", false, "print the HTML instead of opening a browser")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <note>",
	Short: "Preview",
	Long:  `Render the expanded note as HTML and open it in the default browser.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v := currentVault()
		file := resolveTarget(v, args[0])

		expanded := expand.NewExpander(v).Expand(file)
		_, body := markdown.SplitFrontMatter(expanded.String())

		// Preview what would be published, transforms included
		body = body.MustTransform(publishOptions().Transformers()...)

		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(body), &buf); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if previewStdout {
			fmt.Print(buf.String())
			return
		}

		page := fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head><meta charset=%q><title>%s</title></head>\n<body>\n%s</body>\n</html>\n",
			"utf-8", file.Title(), buf.String())
		path := filepath.Join(os.TempDir(), "ntc-preview-"+file.Title()+".html")
		if err := os.WriteFile(path, []byte(page), 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := browser.OpenFile(path); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}
