package forum

import (
	"fmt"

	"github.com/notecourier/notecourier/internal/markdown"
	"gopkg.in/yaml.v3"
)

// Record is the publication metadata stored in a note for one forum.
// The URL is persisted under a sibling `<key>_url` entry to keep the
// serialized block flat and diff-friendly.
type Record struct {
	PostID     int      `yaml:"post_id"`
	TopicID    int      `yaml:"topic_id"`
	CategoryID int      `yaml:"category_id"`
	Tags       []string `yaml:"tags"`
	URL        string   `yaml:"-"`
}

// Published returns if the record addresses an existing remote post.
func (r *Record) Published() bool {
	return r != nil && r.PostID > 0 && r.TopicID > 0
}

// ReadRecord extracts the publication metadata for the given forum from a
// note's front matter. Missing or malformed metadata returns nil, never an error.
func ReadRecord(content string, baseURL string) *Record {
	frontMatter, _ := markdown.SplitFrontMatter(content)
	if frontMatter.IsBlank() {
		return nil
	}
	attributes, err := frontMatter.AsMap()
	if err != nil {
		return nil // malformed metadata is treated as no metadata
	}

	key := DeriveKey(baseURL)
	raw, ok := attributes[key]
	if !ok {
		return nil
	}

	// Decode the loosely-typed submap through YAML to keep a single codec
	encoded, err := yaml.Marshal(raw)
	if err != nil {
		return nil
	}
	var record Record
	if err := yaml.Unmarshal(encoded, &record); err != nil {
		return nil
	}

	if url, ok := attributes[key+"_url"].(string); ok {
		record.URL = url
	}
	return &record
}

// WriteRecord merges the publication metadata for the given forum into the
// note's front matter, creating the block if absent. Other forums' records and
// unrelated keys are preserved untouched, in their original order.
func WriteRecord(content string, baseURL string, record Record) (string, error) {
	frontMatter, body := markdown.SplitFrontMatter(content)

	mapping, err := frontMatter.AsNode()
	if err != nil || mapping.Kind != yaml.MappingNode {
		// Malformed or absent: start a fresh block (self-healing on next publish)
		mapping = &yaml.Node{Kind: yaml.MappingNode}
	}

	key := DeriveKey(baseURL)

	var recordNode yaml.Node
	if err := recordNode.Encode(record); err != nil {
		return "", fmt.Errorf("unable to encode metadata for %q: %w", key, err)
	}
	upsert(mapping, key, &recordNode)

	var urlNode yaml.Node
	if err := urlNode.Encode(record.URL); err != nil {
		return "", fmt.Errorf("unable to encode topic URL for %q: %w", key, err)
	}
	upsert(mapping, key+"_url", &urlNode)

	merged, err := markdown.MarshalNode(mapping)
	if err != nil {
		return "", fmt.Errorf("unable to serialize metadata: %w", err)
	}
	return merged.Prepend(body), nil
}

// upsert replaces the value of a top-level key in a mapping node,
// or appends the pair when the key is absent.
func upsert(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value)
}
