package publish_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/notecourier/notecourier/internal/discourse"
	"github.com/notecourier/notecourier/internal/markdown"
	"github.com/notecourier/notecourier/internal/publish"
	"github.com/notecourier/notecourier/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setUpVault(t *testing.T, files map[string]string) *vault.Vault {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		abspath := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(abspath), 0755))
		require.NoError(t, os.WriteFile(abspath, []byte(content), 0644))
	}
	v, err := vault.Open(root)
	require.NoError(t, err)
	return v
}

type fakeUploader struct {
	err      error
	uploaded []string
}

func (f *fakeUploader) UploadMedia(ctx context.Context, filename string, data []byte) (*discourse.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploaded = append(f.uploaded, filename)
	return &discourse.Upload{
		ShortURL: "upload://" + filename,
		FullURL:  "https://forum.example.com/uploads/" + filename,
	}, nil
}

func TestExtractEmbedReferences(t *testing.T) {
	body := markdown.Document("![[a.png]] text ![alt](b.png)\n" +
		"![ext](https://cdn.example.com/c.png) ![done](upload://d.png)\n" +
		"![[Note#Section|alias]]\n")

	references := publish.ExtractEmbedReferences(body)
	assert.Equal(t, []string{"a.png", "b.png", "Note#Section|alias"}, references)
}

func TestProcessEmbeds(t *testing.T) {
	v := setUpVault(t, map[string]string{
		"img.png":  "PNG",
		"doc.pdf":  "PDF",
		"notes.md": "Text\n",
	})
	api := &fakeUploader{}
	handler := publish.NewMediaHandler(v, api)

	t.Run("Positional alignment", func(t *testing.T) {
		urls := handler.ProcessEmbeds(context.Background(),
			[]string{"img.png", "doc.pdf", "missing.png", "notes"}, "index.md", false)
		// Only images are uploaded. PDFs, notes, and unresolved targets yield
		// an empty slot without aborting the batch.
		assert.Equal(t, []string{"upload://img.png", "", "", ""}, urls)
		assert.Equal(t, []string{"img.png"}, api.uploaded)
	})

	t.Run("Remote URL", func(t *testing.T) {
		urls := handler.ProcessEmbeds(context.Background(), []string{"img.png"}, "index.md", true)
		assert.Equal(t, []string{"https://forum.example.com/uploads/img.png"}, urls)
	})

	t.Run("Upload failure", func(t *testing.T) {
		failing := publish.NewMediaHandler(v, &fakeUploader{err: fmt.Errorf("boom")})
		urls := failing.ProcessEmbeds(context.Background(), []string{"img.png"}, "index.md", false)
		assert.Equal(t, []string{""}, urls)
	})
}

func TestReplaceEmbedReferences(t *testing.T) {
	body := markdown.Document("![[img.png|300]]\n![screenshot](shots/img2.png)\n![[broken.png]]\n")
	references := []string{"img.png|300", "shots/img2.png", "broken.png"}
	urls := []string{"upload://img.png", "upload://img2.png", ""}

	result := publish.ReplaceEmbedReferences(body, references, urls)

	// Wiki embeds become canonical Markdown links, Markdown embeds keep their
	// alt text, and a reference without a URL is left untouched.
	assert.Equal(t, "![img.png](upload://img.png)\n![screenshot](upload://img2.png)\n![[broken.png]]\n", result.String())
}
