package publish

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/notecourier/notecourier/internal/core"
	"github.com/notecourier/notecourier/internal/discourse"
	"github.com/notecourier/notecourier/internal/markdown"
	"github.com/notecourier/notecourier/internal/medias"
	"github.com/notecourier/notecourier/internal/vault"
)

// Discourse serves already-uploaded assets under this pseudo-protocol.
const uploadScheme = "upload://"

// ExtractEmbedReferences collects the embed targets present in an
// already-expanded body, in document order. Markdown-style links pointing at
// network URLs or already-uploaded assets are skipped.
func ExtractEmbedReferences(body markdown.Document) []string {
	var embeds []markdown.Embed
	embeds = append(embeds, body.WikiEmbeds()...)
	for _, embed := range body.MarkdownEmbeds() {
		if strings.HasPrefix(embed.Target, "http://") ||
			strings.HasPrefix(embed.Target, "https://") ||
			strings.HasPrefix(embed.Target, uploadScheme) {
			continue
		}
		embeds = append(embeds, embed)
	}
	sort.SliceStable(embeds, func(i, j int) bool {
		return embeds[i].Start < embeds[j].Start
	})

	references := make([]string, len(embeds))
	for i, embed := range embeds {
		references[i] = embed.Target
	}
	return references
}

// Uploader is the single API operation the media handler depends on.
type Uploader interface {
	UploadMedia(ctx context.Context, filename string, data []byte) (*discourse.Upload, error)
}

// MediaHandler uploads the images referenced by a body and computes their
// remote URLs.
type MediaHandler struct {
	vault *vault.Vault
	api   Uploader
}

func NewMediaHandler(v *vault.Vault, api Uploader) *MediaHandler {
	return &MediaHandler{
		vault: v,
		api:   api,
	}
}

// ProcessEmbeds uploads every reference resolving to an image and returns one
// URL per reference, positionally aligned with the input. A reference that
// cannot be uploaded yields an empty string so a single broken asset never
// aborts the batch. PDFs are preserved during expansion but never uploaded.
func (h *MediaHandler) ProcessEmbeds(ctx context.Context, references []string, contextPath string, useRemoteURL bool) []string {
	urls := make([]string, len(references))
	for i, reference := range references {
		filePart, _, _ := markdown.SplitEmbedTarget(reference)
		file := h.vault.Resolve(filePart, contextPath)
		if file == nil || !medias.IsImage(file.Extension()) {
			continue
		}
		data, err := h.vault.ReadBinary(file)
		if err != nil {
			core.CurrentLogger().Warnf("Unable to read %q: %v", file, err)
			continue
		}
		upload, err := h.api.UploadMedia(ctx, file.Name(), data)
		if err != nil {
			core.CurrentLogger().Warnf("Unable to upload %q: %v", file, err)
			continue
		}
		switch {
		case useRemoteURL && upload.FullURL != "":
			urls[i] = upload.FullURL
		case upload.ShortURL != "":
			urls[i] = upload.ShortURL
		default:
			urls[i] = upload.FullURL
		}
	}
	return urls
}

// ReplaceEmbedReferences rewrites every reference with a non-empty paired URL
// into a Markdown image link. References with an empty URL are left untouched
// so a failed upload does not destroy the original embed.
func ReplaceEmbedReferences(body markdown.Document, references, urls []string) markdown.Document {
	result := string(body)
	for i, reference := range references {
		if i >= len(urls) || urls[i] == "" {
			continue
		}
		filePart, _, _ := markdown.SplitEmbedTarget(reference)
		link := fmt.Sprintf("![%s](%s)", path.Base(filePart), urls[i])
		result = strings.ReplaceAll(result, "![["+reference+"]]", link)
		result = strings.ReplaceAll(result, "]("+reference+")", "]("+urls[i]+")")
	}
	return markdown.Document(result)
}
