package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/notecourier/notecourier/pkg/text"
	"gopkg.in/yaml.v3"
)

// Default indentation in front matter
const Indent int = 2

// A Front Matter block occupies the leading contiguous span `---\n<data>\n---\n`.
var regexFrontMatter = regexp.MustCompile(`(?s)\A---\n(.*?)\n---(?:\n|\z)`)

// FrontMatter represents the raw YAML content of a Front Matter block
// (without the `---` fences).
type FrontMatter string

// SplitFrontMatter separates the leading Front Matter block from the body.
// The returned FrontMatter is empty when no block is present.
func SplitFrontMatter(content string) (FrontMatter, Document) {
	loc := regexFrontMatter.FindStringSubmatchIndex(content)
	if loc == nil {
		return FrontMatter(""), Document(content)
	}
	return FrontMatter(content[loc[2]:loc[3]]), Document(content[loc[1]:])
}

// HasFrontMatter returns if a document starts with a Front Matter block.
func HasFrontMatter(content string) bool {
	return regexFrontMatter.MatchString(content)
}

func (f FrontMatter) IsBlank() bool {
	return text.IsBlank(string(f))
}

// AsMap deserializes the Front Matter as a flat mapping.
// Malformed YAML is reported as an error; callers commonly treat it as "no metadata".
func (f FrontMatter) AsMap() (map[string]any, error) {
	var attributes = make(map[string]any)
	if err := yaml.Unmarshal([]byte(f), attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

// AsNode deserializes the Front Matter as a YAML node, preserving the key order.
func (f FrontMatter) AsNode() (*yaml.Node, error) {
	var frontMatter = new(yaml.Node)
	if err := yaml.Unmarshal([]byte(f), frontMatter); err != nil {
		return nil, err
	}
	if frontMatter.Kind > 0 { // Happen when no Front Matter is present
		frontMatter = frontMatter.Content[0]
	}
	return frontMatter, nil
}

// MarshalNode serializes a YAML mapping node back to Front Matter content.
func MarshalNode(node *yaml.Node) (FrontMatter, error) {
	var buf bytes.Buffer
	bufEncoder := yaml.NewEncoder(&buf)
	bufEncoder.SetIndent(Indent)
	if err := bufEncoder.Encode(node); err != nil {
		return "", err
	}
	if err := bufEncoder.Close(); err != nil {
		return "", err
	}
	return FrontMatter(CompactYAML(strings.TrimSuffix(buf.String(), "\n"))), nil
}

// Prepend returns the document with this Front Matter reattached at the top.
func (f FrontMatter) Prepend(body Document) string {
	if f.IsBlank() {
		return string(body)
	}
	return "---\n" + strings.TrimSuffix(string(f), "\n") + "\n---\n" + string(body)
}

// CompactYAML removes leading spaces in front of sequences.
//
// Ex:
//
//	doc:
//	    - toto: tata
//
// Becomes
//
//	doc:
//	- toto: tata
func CompactYAML(doc string) string {
	// Identing sequences using zero-space (compact form) is not supported:
	// https://github.com/go-yaml/yaml/issues/661
	var buf bytes.Buffer
	r := regexp.MustCompile(`^(\s*)  (- .*)$`)
	insideSequence := false
	var leadingSpaces string // the spaces prefix for successive lines in the sequence
	for _, line := range strings.Split(strings.TrimSuffix(doc, "\n"), "\n") {
		if r.MatchString(line) {
			rs := r.FindStringSubmatch(line)
			buf.WriteString(rs[1] + rs[2])
			buf.WriteString("\n")
			insideSequence = true
			leadingSpaces = rs[1] + "    "
		} else if insideSequence && strings.HasPrefix(line, leadingSpaces) {
			buf.WriteString(line[Indent:])
			buf.WriteString("\n")
		} else {
			buf.WriteString(line)
			buf.WriteString("\n")
			insideSequence = false
			leadingSpaces = ""
		}
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
