// Package expand inlines embedded references (`![[note]]`, `![[note#Section]]`)
// recursively, producing a single flattened document.
//
// The same (file, subpath) pair may be embedded multiple times in a note;
// only reuse inside the active recursion chain is treated as a cycle and
// dropped, so expansion always terminates.
package expand

import (
	"strings"

	"github.com/notecourier/notecourier/internal/markdown"
	"github.com/notecourier/notecourier/internal/medias"
	"github.com/notecourier/notecourier/internal/vault"
)

// Sentinel subpath for a whole-file expansion
const entireFile = "<entireFile>"

// stack tracks the embeds currently being expanded in the active call chain.
type stack struct {
	keys []string
}

func (s *stack) contains(key string) bool {
	for _, active := range s.keys {
		if active == key {
			return true
		}
	}
	return false
}

// enter pushes a key and returns the matching release function,
// so every exit path pops exactly once.
func (s *stack) enter(key string) func() {
	s.keys = append(s.keys, key)
	return func() {
		s.keys = s.keys[:len(s.keys)-1]
	}
}

// Expander inlines embedded references against a vault.
type Expander struct {
	vault *vault.Vault
}

func NewExpander(v *vault.Vault) *Expander {
	return &Expander{vault: v}
}

// Expand returns the file's content with every embedded reference inlined.
// Unresolved targets, unknown headings/blocks and cycles all degrade to an
// empty substitution: a broken embed never aborts the expansion.
func (e *Expander) Expand(file *vault.File) markdown.Document {
	return markdown.Document(e.expand(file, &stack{}, ""))
}

func (e *Expander) expand(file *vault.File, active *stack, subpath string) string {
	key := file.RelativePath + "::" + subpathKey(subpath)
	if active.contains(key) {
		return "" // embedding a file within itself, drop the recursive occurrence
	}
	release := active.enter(key)
	defer release()

	raw, err := e.vault.ReadText(file)
	if err != nil {
		return ""
	}

	// Replacements are computed against the original match offsets, then
	// spliced back-to-front so pending offsets stay valid.
	embeds := markdown.Document(raw).WikiEmbeds()
	expanded := raw
	for i := len(embeds) - 1; i >= 0; i-- {
		embed := embeds[i]
		expanded = expanded[:embed.Start] + e.replacement(embed, file, active) + expanded[embed.End:]
	}

	if subpath != "" {
		// Offsets come from the file's own structural index; the slice is
		// taken on the expanded text, clamped to its length.
		index := markdown.BuildIndex(raw)
		sliced := index.Slice(expanded, subpath)
		return quoteFrontMatter(sliced)
	}
	return expanded
}

func (e *Expander) replacement(embed markdown.Embed, context *vault.File, active *stack) string {
	pathPart, section, _ := markdown.SplitEmbedTarget(embed.Target)

	target := e.vault.Resolve(pathPart, context.RelativePath)
	if target == nil {
		return "" // the file doesn't exist
	}

	// Images and PDFs are left as links, never recursed into
	if medias.IsBinaryAsset(target.Extension()) {
		return embed.Raw
	}

	expanded := e.expand(target, active, section)

	// A nested note's metadata block must not be misread as the parent's own
	return quoteFrontMatter(expanded)
}

func quoteFrontMatter(content string) string {
	return markdown.Document(content).MustTransform(markdown.QuoteFrontMatter()).String()
}

func subpathKey(subpath string) string {
	if strings.TrimSpace(subpath) == "" {
		return entireFile
	}
	return subpath
}
