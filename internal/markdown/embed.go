package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// Regexes to match embedded references.
// `![[image.png]]` is the wiki form, `![alt](image.png)` the Markdown form.
var (
	regexWikiEmbed     = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)
	regexMarkdownEmbed = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
)

// Embed is a parsed occurrence of an embedded reference inside a body.
type Embed struct {
	Raw    string // the full matched text
	Target string // the raw target between the brackets
	Start  int    // byte offset of the match
	End    int    // byte offset past the match
}

// Path returns the file part of the target, without the optional
// section and alias suffixes.
func (e Embed) Path() string {
	path, _, _ := SplitEmbedTarget(e.Target)
	return path
}

// Section returns the heading or block part of the target (text after `#`).
func (e Embed) Section() string {
	_, section, _ := SplitEmbedTarget(e.Target)
	return section
}

func (e Embed) String() string {
	return fmt.Sprintf("![[%s]]", e.Target)
}

// SplitEmbedTarget splits a raw embed target into its file part, the optional
// section after `#`, and the optional display alias after `|`.
func SplitEmbedTarget(target string) (path, section, alias string) {
	path = target
	if i := strings.Index(path, "|"); i >= 0 {
		alias = strings.TrimSpace(path[i+1:])
		path = path[:i]
	}
	if i := strings.Index(path, "#"); i >= 0 {
		section = strings.TrimSpace(path[i+1:])
		path = path[:i]
	}
	return strings.TrimSpace(path), section, alias
}

/*
 * Document
 */

// WikiEmbeds searches for wiki-style embedded references (`![[...]]`).
// Matches are returned in left-to-right order with their original offsets.
func (m Document) WikiEmbeds() []Embed {
	var results []Embed
	content := string(m)
	for _, match := range regexWikiEmbed.FindAllStringSubmatchIndex(content, -1) {
		results = append(results, Embed{
			Raw:    content[match[0]:match[1]],
			Target: content[match[2]:match[3]],
			Start:  match[0],
			End:    match[1],
		})
	}
	return results
}

// MarkdownEmbeds searches for Markdown-style embedded references (`![...](path)`).
// The Target is the link path.
func (m Document) MarkdownEmbeds() []Embed {
	var results []Embed
	content := string(m)
	for _, match := range regexMarkdownEmbed.FindAllStringSubmatchIndex(content, -1) {
		results = append(results, Embed{
			Raw:    content[match[0]:match[1]],
			Target: content[match[4]:match[5]],
			Start:  match[0],
			End:    match[1],
		})
	}
	return results
}
