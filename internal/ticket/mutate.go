package ticket

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form written to created_at and updated_at.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrEmptySlug is returned when a slug update contains no usable characters.
var ErrEmptySlug = errors.New("slug is empty after normalization")

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// UpdateResult is the outcome of ApplyFieldUpdates.
type UpdateResult struct {
	// Document is the updated copy; the input document is not modified.
	Document *Document

	// RenameRequired is set when a slug update changes the file name.
	RenameRequired bool

	// NewPath is the path the document must be written to when
	// RenameRequired is set. Otherwise it equals the current path.
	NewPath string
}

// ApplyFieldUpdates sets header fields on a copy of doc.
//
// Existing lines are rewritten in place and new keys are appended at the end
// of the header block in sorted key order. updated_at is always refreshed to
// now unless the caller supplies it. Keys that are empty, padded, start with
// '#' or contain ':' or a line break, and values with line breaks, are
// rejected with a *FieldError before anything changes. Titles are quoted when needed and slugs
// are stored as "<id>-<slug>".
func ApplyFieldUpdates(doc *Document, updates map[string]string, now time.Time) (UpdateResult, error) {
	out := doc.Clone()

	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		err := checkFieldUpdate(key, strings.TrimSpace(updates[key]))
		if err != nil {
			return UpdateResult{}, err
		}
	}

	renameRequired := false
	newPath := doc.Path

	for _, key := range keys {
		value := strings.TrimSpace(updates[key])

		switch key {
		case FieldTitle:
			value = QuoteTitle(value)
		case FieldSlug:
			id := documentID(out)
			if id == "" {
				return UpdateResult{}, fmt.Errorf("setting slug on %s: %w", doc.Filename(), ErrMissingID)
			}

			if Slugify(value) == "" {
				return UpdateResult{}, fmt.Errorf("setting slug %q: %w", value, ErrEmptySlug)
			}

			value = PrefixedSlug(id, value)

			filename := value + ".md"
			if filename != doc.Filename() {
				renameRequired = true
				newPath = filepath.Join(filepath.Dir(doc.Path), filename)
			}
		}

		out.SetField(key, value)
	}

	if _, explicit := updates[FieldUpdatedAt]; !explicit {
		out.SetField(FieldUpdatedAt, FormatTimestamp(now))
	}

	out.Path = newPath

	return UpdateResult{Document: out, RenameRequired: renameRequired, NewPath: newPath}, nil
}

// documentID returns the ticket's id field, falling back to the id encoded in
// its file name.
func documentID(doc *Document) string {
	if id, ok := doc.Value(FieldID); ok && id != "" {
		return id
	}

	return IDFromFilename(doc.Filename())
}

func checkFieldUpdate(key, value string) error {
	switch {
	case key == "":
		return &FieldError{Key: key, Reason: "key is empty", Err: ErrInvalidFieldKey}
	case strings.TrimSpace(key) != key:
		return &FieldError{Key: key, Reason: "key has leading or trailing spaces", Err: ErrInvalidFieldKey}
	case strings.HasPrefix(key, "#"):
		return &FieldError{Key: key, Reason: "key starts with '#'", Err: ErrInvalidFieldKey}
	case strings.ContainsAny(key, ":\r\n"):
		return &FieldError{Key: key, Reason: "key contains ':' or a line break", Err: ErrInvalidFieldKey}
	case strings.ContainsAny(value, "\r\n"):
		return &FieldError{Key: key, Reason: "value contains a line break", Err: ErrInvalidFieldValue}
	}

	return nil
}
