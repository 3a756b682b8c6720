// Package frontmatter serializes ticket header blocks through a YAML encoder.
//
// It is the structured counterpart of the line-preserving header model in
// package ticket: entries go in, canonical YAML lines come out. Entries
// decoded by Unmarshal carry their value node, so lists and scalar styles are
// written back as they were. Other entries are scalars: quoted ones are
// double-quoted, unquoted ones are written plain when YAML allows it and
// quoted otherwise.
//
//	id: TKT-007
//	title: "Fix: retry uploads"
//	status: open
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Errors returned by Marshal and Unmarshal.
var (
	ErrEmptyKey = errors.New("empty key")
	ErrAlias    = errors.New("aliases are not supported")
)

// Entry is one key/value pair of a header block.
type Entry struct {
	Key    string // Key is the header key, written as a plain YAML scalar.
	Value  string // Value is the unquoted value of a scalar.
	Quoted bool   // Quoted forces double-quoted output.

	// Node is the decoded value. When set, Marshal writes it instead of
	// Value so lists, mappings and scalar styles survive a round trip.
	Node *yaml.Node
}

// MarshalOptions configures frontmatter serialization.
type MarshalOptions struct {
	IncludeDelimiters bool     // IncludeDelimiters writes --- fence lines before and after.
	KeyOrder          []string // KeyOrder lists keys that are written first, in this order.
}

// MarshalOption mutates MarshalOptions.
type MarshalOption func(*MarshalOptions)

// WithYAMLDelimiters toggles whether Marshal includes --- delimiters.
// The default is true to match the on-disk ticket format.
func WithYAMLDelimiters(include bool) MarshalOption {
	return func(opts *MarshalOptions) {
		opts.IncludeDelimiters = include
	}
}

// WithKeyOrder moves the listed keys to the front in the given order.
// Entries whose keys are not listed follow in input order; listed keys with no
// entry are skipped.
func WithKeyOrder(keys []string) MarshalOption {
	return func(opts *MarshalOptions) {
		opts.KeyOrder = keys
	}
}

// Marshal renders entries as a YAML mapping. Entries without a Node are
// written as one "key: value" line. When a key occurs more than once only the first entry is written.
func Marshal(entries []Entry, opts ...MarshalOption) (string, error) {
	options := MarshalOptions{IncludeDelimiters: true}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(&options)
	}

	ordered, err := orderEntries(entries, options.KeyOrder)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	if options.IncludeDelimiters {
		builder.WriteString(frontmatterDelimiter + "\n")
	}

	if len(ordered) > 0 {
		body, err := encodeMapping(ordered)
		if err != nil {
			return "", err
		}

		builder.WriteString(body)
	}

	if options.IncludeDelimiters {
		builder.WriteString(frontmatterDelimiter + "\n")
	}

	return builder.String(), nil
}

func orderEntries(entries []Entry, keyOrder []string) ([]Entry, error) {
	byKey := make(map[string]Entry, len(entries))
	inputOrder := make([]string, 0, len(entries))

	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) == "" {
			return nil, fmt.Errorf("marshal frontmatter: %w", ErrEmptyKey)
		}

		if _, dup := byKey[entry.Key]; dup {
			continue
		}

		byKey[entry.Key] = entry
		inputOrder = append(inputOrder, entry.Key)
	}

	ordered := make([]Entry, 0, len(byKey))
	written := make(map[string]bool, len(byKey))

	for _, key := range append(append([]string(nil), keyOrder...), inputOrder...) {
		entry, ok := byKey[key]
		if !ok || written[key] {
			continue
		}

		written[key] = true
		ordered = append(ordered, entry)
	}

	return ordered, nil
}

func encodeMapping(entries []Entry) (string, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}

	for _, entry := range entries {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.Key},
			valueNode(entry),
		)
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}})
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	return buf.String(), nil
}

// valueNode leaves the tag empty for unquoted values so the encoder keeps
// timestamps, numbers and bare words plain instead of quoting them as strings.
func valueNode(entry Entry) *yaml.Node {
	if entry.Node != nil {
		return entry.Node
	}

	node := &yaml.Node{Kind: yaml.ScalarNode, Value: entry.Value}
	if entry.Quoted {
		node.Tag = "!!str"
		node.Style = yaml.DoubleQuotedStyle
	}

	return node
}

// Unmarshal decodes a header block (without delimiters) into entries in file
// order. Every entry keeps its value node; scalars also fill Value and Quoted.
func Unmarshal(data []byte) ([]Entry, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("unmarshal frontmatter: %w", err)
	}

	if len(doc.Content) == 0 {
		return nil, nil
	}

	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("unmarshal frontmatter: line %d: expected mapping", mapping.Line)
	}

	entries := make([]Entry, 0, len(mapping.Content)/2)

	for idx := 0; idx+1 < len(mapping.Content); idx += 2 {
		key, value := mapping.Content[idx], mapping.Content[idx+1]

		if key.Kind != yaml.ScalarNode || strings.TrimSpace(key.Value) == "" {
			return nil, fmt.Errorf("unmarshal frontmatter: line %d: %w", key.Line, ErrEmptyKey)
		}

		if containsAlias(key) || containsAlias(value) {
			return nil, fmt.Errorf("unmarshal frontmatter: line %d: %w", value.Line, ErrAlias)
		}

		entry := Entry{Key: key.Value, Node: value}
		if value.Kind == yaml.ScalarNode {
			entry.Value = value.Value
			entry.Quoted = value.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// containsAlias reports whether node or any node below it is an alias or an
// anchor. Reordering keys could move an alias above its anchor.
func containsAlias(node *yaml.Node) bool {
	if node.Kind == yaml.AliasNode || node.Anchor != "" {
		return true
	}

	for _, child := range node.Content {
		if containsAlias(child) {
			return true
		}
	}

	return false
}
