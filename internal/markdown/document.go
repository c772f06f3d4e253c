package markdown

import (
	"strings"

	"github.com/notecourier/notecourier/pkg/text"
)

// Document represents a Markdown document (can be a whole file, or just a snippet)
type Document string

// Lines returns the lines present in the Markdown document
func (m Document) Lines() []string {
	return strings.Split(string(m), "\n")
}

func (m Document) IsBlank() bool {
	return text.IsBlank(string(m))
}

func (m Document) String() string {
	return string(m)
}

/*
 * Helpers
 */

// IsHeading returns if a given line is a Markdown heading and its level.
func IsHeading(line string) (bool, string, int) {
	if !strings.HasPrefix(line, "#") {
		return false, "", 0
	}
	if strings.HasPrefix(line, "###### ") {
		return true, strings.TrimPrefix(line, "###### "), 6
	} else if strings.HasPrefix(line, "##### ") {
		return true, strings.TrimPrefix(line, "##### "), 5
	} else if strings.HasPrefix(line, "#### ") {
		return true, strings.TrimPrefix(line, "#### "), 4
	} else if strings.HasPrefix(line, "### ") {
		return true, strings.TrimPrefix(line, "### "), 3
	} else if strings.HasPrefix(line, "## ") {
		return true, strings.TrimPrefix(line, "## "), 2
	} else if strings.HasPrefix(line, "# ") {
		return true, strings.TrimPrefix(line, "# "), 1
	}

	return false, "", 0
}
