package markdown

import (
	"regexp"
	"sort"
	"strings"

	"github.com/notecourier/notecourier/pkg/text"
)

// Transformer applies changes on a Markdown document
type Transformer func(document Document) (Document, error)

// Transform applies transformers successively to create a new Markdown document
func (m Document) Transform(transformers ...Transformer) (Document, error) {
	result := m
	for _, transformer := range transformers {
		resultTransformed, err := transformer(result)
		if err != nil {
			return m, err
		}
		result = resultTransformed
	}
	return result, nil
}

// MustTransform is similar to Transform but does not expect an error
func (m Document) MustTransform(transformers ...Transformer) Document {
	result, err := m.Transform(transformers...)
	if err != nil {
		panic(err)
	}
	return result
}

/*
 * Transformers
 */

var regexHighlight = regexp.MustCompile(`==([^=\n]+)==`)

// ConvertHighlights rewrites `==text==` highlights using bold emphasis,
// which Discourse renders natively.
func ConvertHighlights() Transformer {
	return func(document Document) (Document, error) {
		return Document(regexHighlight.ReplaceAllString(string(document), "**$1**")), nil
	}
}

// StripTopHeadings deletes every level-1 heading line (including its trailing newline).
func StripTopHeadings() Transformer {
	return func(document Document) (Document, error) {
		var newLines []string
		for _, line := range document.Lines() {
			if ok, _, level := IsHeading(line); ok && level == 1 {
				continue
			}
			newLines = append(newLines, line)
		}
		return Document(strings.Join(newLines, "\n")), nil
	}
}

// RemoveSections deletes the whole subtree of every heading whose text matches
// one of the given names (case-insensitive): from the heading line to the start
// of the next heading at the same or shallower level. Overlapping ranges are
// merged before deletion.
func RemoveSections(names []string) Transformer {
	return func(document Document) (Document, error) {
		if len(names) == 0 {
			return document, nil
		}
		ignored := make(map[string]bool)
		for _, name := range names {
			ignored[strings.ToLower(strings.TrimSpace(name))] = true
		}

		content := string(document)
		index := BuildIndex(content)

		type span struct{ start, end int }
		var spans []span
		for i, heading := range index.Headings {
			if !ignored[strings.ToLower(heading.Text)] {
				continue
			}
			end := len(content)
			for _, next := range index.Headings[i+1:] {
				if next.Level <= heading.Level {
					end = next.StartOffset
					break
				}
			}
			spans = append(spans, span{heading.StartOffset, end})
		}
		if len(spans) == 0 {
			return document, nil
		}

		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
		var merged []span
		for _, s := range spans {
			if len(merged) > 0 && s.start <= merged[len(merged)-1].end {
				if s.end > merged[len(merged)-1].end {
					merged[len(merged)-1].end = s.end
				}
				continue
			}
			merged = append(merged, s)
		}

		var sb strings.Builder
		last := 0
		for _, s := range merged {
			sb.WriteString(content[last:s.start])
			last = s.end
		}
		sb.WriteString(content[last:])
		return Document(sb.String()), nil
	}
}

// QuoteFrontMatter converts a leading Front Matter block into a blockquote
// rendering, so a nested note's metadata is not misread as the parent's own
// block after inlining.
func QuoteFrontMatter() Transformer {
	return func(document Document) (Document, error) {
		content := string(document)
		loc := regexFrontMatter.FindStringSubmatchIndex(content)
		if loc == nil {
			return document, nil
		}
		quoted := text.PrefixLines(content[loc[2]:loc[3]], "> ")
		return Document(quoted + "\n\n" + content[loc[1]:]), nil
	}
}

// SquashBlankLines removes blank lines when multiple successive blank lines are present
func SquashBlankLines() Transformer {
	return func(document Document) (Document, error) {
		return Document(text.SquashBlankLines(string(document))), nil
	}
}
