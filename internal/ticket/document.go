// Package ticket implements the ticket document model: parsing a ticket file
// into header lines and body lines without losing the author's formatting,
// targeted field and section mutation, validation against a template, the
// auto-fixer, and resolution of loose ticket identifiers.
//
// A ticket file looks like:
//
//	---
//	id: TKT-007
//	title: Add retry to uploader
//	status: open
//	---
//	## Description
//	Uploads fail on flaky networks.
//
// The header block is parsed line by line rather than through a YAML decoder
// so key order, quoting and unknown lines survive every read-modify-write.
package ticket

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Conventional header keys.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldSlug      = "slug"
	FieldStatus    = "status"
	FieldPriority  = "priority"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// HeaderLine is one line of the header block. Lines that split into a
// non-empty key at the first ':' are recognized. Blank lines, "#" comments
// and malformed lines are kept verbatim in Raw with an empty Key.
type HeaderLine struct {
	Key   string // Key is empty for unparsed lines.
	Value string // Value is the trimmed raw value, quotes intact.
	Raw   string // Raw is the line exactly as it is written to disk.
}

// Recognized reports whether the line parsed as "key: value".
func (l HeaderLine) Recognized() bool {
	return l.Key != ""
}

// Document is the parsed form of one ticket file. It is built fresh on every
// read and never shared between operations.
type Document struct {
	Path   string
	Header []HeaderLine
	Body   []string

	// Original is the text the document was parsed from.
	Original []byte

	// Checksum is the digest of the file content the document was read from,
	// set by the store that loaded or last wrote it.
	Checksum []byte

	// Warnings collects non-fatal parse problems (unparsed header lines,
	// missing id or title).
	Warnings []string

	openDelim  string
	closeDelim string
}

// Parse splits raw ticket text into header lines and body lines.
//
// The first line must be exactly "---" and a later line must be exactly
// "---"; anything else is a *FormatError. A trailing "\r" on a delimiter line
// is accepted and written back unchanged. Malformed header lines are kept and
// reported as warnings.
func Parse(path string, raw []byte) (*Document, error) {
	lines := strings.Split(string(raw), "\n")
	if len(lines) < 3 {
		return nil, &FormatError{Path: path, Err: ErrTooFewLines}
	}

	if !isDelimiter(lines[0]) {
		return nil, &FormatError{Path: path, Err: ErrMissingOpenDelimiter}
	}

	closeIdx := -1

	for idx := 1; idx < len(lines); idx++ {
		if isDelimiter(lines[idx]) {
			closeIdx = idx

			break
		}
	}

	if closeIdx == -1 {
		return nil, &FormatError{Path: path, Err: ErrMissingCloseDelimiter}
	}

	doc := &Document{
		Path:       path,
		Header:     make([]HeaderLine, 0, closeIdx-1),
		Body:       append([]string(nil), lines[closeIdx+1:]...),
		Original:   raw,
		openDelim:  lines[0],
		closeDelim: lines[closeIdx],
	}

	for idx := 1; idx < closeIdx; idx++ {
		line, warning := parseHeaderLine(lines[idx])
		if warning != "" {
			// idx is 0-based over the whole file, so idx+1 is the line number.
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("line %d: %s", idx+1, warning))
		}

		doc.Header = append(doc.Header, line)
	}

	if _, ok := doc.Field(FieldID); !ok {
		doc.Warnings = append(doc.Warnings, "missing id field")
	}

	if _, ok := doc.Field(FieldTitle); !ok {
		doc.Warnings = append(doc.Warnings, "missing title field")
	}

	return doc, nil
}

func isDelimiter(line string) bool {
	return strings.TrimSuffix(line, "\r") == frontmatterDelimiter
}

func parseHeaderLine(raw string) (HeaderLine, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return HeaderLine{Raw: raw}, ""
	}

	keyRaw, valueRaw, ok := strings.Cut(raw, ":")
	if !ok {
		return HeaderLine{Raw: raw}, fmt.Sprintf("unparsed header line %q (missing ':')", trimmed)
	}

	key := strings.TrimSpace(keyRaw)
	if key == "" {
		return HeaderLine{Raw: raw}, fmt.Sprintf("unparsed header line %q (empty key)", trimmed)
	}

	return HeaderLine{Key: key, Value: strings.TrimSpace(valueRaw), Raw: raw}, ""
}

// Filename returns the base name of the document's path.
func (d *Document) Filename() string {
	return filepath.Base(d.Path)
}

// Field returns the raw value of the first header line with the given key.
func (d *Document) Field(key string) (string, bool) {
	for _, line := range d.Header {
		if line.Key == key {
			return line.Value, true
		}
	}

	return "", false
}

// Value returns the field value with surrounding quotes removed.
func (d *Document) Value(key string) (string, bool) {
	raw, ok := d.Field(key)
	if !ok {
		return "", false
	}

	return Unquote(raw), true
}

// Keys returns the recognized header keys in file order. Duplicates are
// reported once, at their first position.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.Header))
	seen := make(map[string]bool, len(d.Header))

	for _, line := range d.Header {
		if !line.Recognized() || seen[line.Key] {
			continue
		}

		seen[line.Key] = true
		keys = append(keys, line.Key)
	}

	return keys
}

// SetField replaces the first line with the given key, or appends a new line
// at the end of the header block. Other lines keep their position and text.
func (d *Document) SetField(key, value string) {
	line := HeaderLine{Key: key, Value: value, Raw: key + ": " + value}

	for idx := range d.Header {
		if d.Header[idx].Key == key {
			d.Header[idx] = line

			return
		}
	}

	d.Header = append(d.Header, line)
}

// Bytes reconstructs the ticket text from the header and body lines.
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}

func (d *Document) String() string {
	openDelim, closeDelim := d.openDelim, d.closeDelim
	if openDelim == "" {
		openDelim = frontmatterDelimiter
	}

	if closeDelim == "" {
		closeDelim = frontmatterDelimiter
	}

	lines := make([]string, 0, len(d.Header)+len(d.Body)+2)
	lines = append(lines, openDelim)

	for _, line := range d.Header {
		lines = append(lines, line.Raw)
	}

	lines = append(lines, closeDelim)
	lines = append(lines, d.Body...)

	return strings.Join(lines, "\n")
}

// Clone returns a deep copy that can be mutated independently.
func (d *Document) Clone() *Document {
	clone := *d
	clone.Header = append([]HeaderLine(nil), d.Header...)
	clone.Body = append([]string(nil), d.Body...)
	clone.Warnings = append([]string(nil), d.Warnings...)

	return &clone
}

// Unquote strips one level of matching single or double quotes from a raw
// header value. Double-quoted values have their backslash escapes decoded.
func Unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}

	switch {
	case raw[0] == '"' && raw[len(raw)-1] == '"':
		if unquoted, err := strconv.Unquote(raw); err == nil {
			return unquoted
		}

		return raw[1 : len(raw)-1]
	case raw[0] == '\'' && raw[len(raw)-1] == '\'':
		return strings.ReplaceAll(raw[1:len(raw)-1], "''", "'")
	}

	return raw
}

// IsQuoted reports whether a raw header value is wrapped in quotes.
func IsQuoted(raw string) bool {
	if len(raw) < 2 {
		return false
	}

	first, last := raw[0], raw[len(raw)-1]

	return (first == '"' && last == '"') || (first == '\'' && last == '\'')
}
