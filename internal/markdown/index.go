package markdown

import (
	"regexp"
	"strings"

	"github.com/notecourier/notecourier/pkg/text"
)

// Heading is an entry of the structural index.
type Heading struct {
	Text        string
	Level       int
	StartOffset int // byte offset of the heading line
}

// Block is a `^id`-addressable range of a document.
type Block struct {
	StartOffset int
	EndOffset   int // -1 when the block runs to the end of the document
}

// Index is the structural index of a document: headings and `^id` blocks
// with their character offsets.
type Index struct {
	Headings []Heading
	Blocks   map[string]Block
}

var regexBlockID = regexp.MustCompile(`(?:^|\s)\^([A-Za-z0-9-]+)\s*$`)

// BuildIndex scans a document and records every heading and `^id` block.
// A block covers the contiguous run of non-blank lines containing its marker.
func BuildIndex(content string) *Index {
	index := &Index{
		Blocks: make(map[string]Block),
	}

	lines := strings.Split(content, "\n")

	// Byte offset of each line start
	offsets := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		offsets[i] = offset
		offset += len(line) + 1 // +1 for the newline
	}

	// Headings (ignore possible '#' lines in code blocks)
	insideCodeBlock := false
	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			insideCodeBlock = !insideCodeBlock
			continue
		}
		if insideCodeBlock {
			continue
		}
		if ok, headingText, headingLevel := IsHeading(line); ok {
			index.Headings = append(index.Headings, Heading{
				Text:        headingText,
				Level:       headingLevel,
				StartOffset: offsets[i],
			})
		}
	}

	// Blocks: group lines into runs of contiguous non-blank lines
	runStart := -1
	for i := 0; i <= len(lines); i++ {
		blank := i == len(lines) || text.IsBlank(lines[i])
		if !blank && runStart == -1 {
			runStart = i
		}
		if blank && runStart != -1 {
			runEnd := i - 1 // last line of the run
			for j := runStart; j <= runEnd; j++ {
				match := regexBlockID.FindStringSubmatch(lines[j])
				if match == nil {
					continue
				}
				end := offsets[runEnd] + len(lines[runEnd])
				if end >= len(content) {
					end = -1 // the block runs to the end of the document
				}
				index.Blocks[match[1]] = Block{
					StartOffset: offsets[runStart],
					EndOffset:   end,
				}
			}
			runStart = -1
		}
	}

	return index
}

// Slice extracts the portion of a content referenced by a subpath: a block
// reference when the subpath starts with `^`, a heading reference otherwise.
// Unknown blocks and unmatched headings degrade to an empty string.
func (idx *Index) Slice(content string, subpath string) string {
	if strings.HasPrefix(subpath, "^") {
		return idx.sliceBlock(content, strings.TrimPrefix(subpath, "^"))
	}
	return idx.sliceHeading(content, subpath)
}

func (idx *Index) sliceBlock(content string, blockID string) string {
	block, ok := idx.Blocks[blockID]
	if !ok {
		return ""
	}
	start := clamp(block.StartOffset, len(content))
	if block.EndOffset < 0 {
		return content[start:]
	}
	return content[start:clamp(block.EndOffset, len(content))]
}

// sliceHeading finds a heading by case-insensitive exact match and returns
// everything until the next heading of the same or shallower level.
func (idx *Index) sliceHeading(content string, headingName string) string {
	target := strings.ToLower(strings.TrimSpace(headingName))

	found := -1
	for i, heading := range idx.Headings {
		if strings.ToLower(heading.Text) == target {
			found = i
			break
		}
	}
	if found == -1 {
		return "" // no heading matched
	}

	heading := idx.Headings[found]
	endOffset := len(content)
	for _, next := range idx.Headings[found+1:] {
		if next.Level <= heading.Level {
			endOffset = next.StartOffset
			break
		}
	}

	start := clamp(heading.StartOffset, len(content))
	end := clamp(endOffset, len(content))
	return strings.TrimSpace(content[start:end])
}

func clamp(offset, max int) int {
	if offset > max {
		return max
	}
	if offset < 0 {
		return 0
	}
	return offset
}
