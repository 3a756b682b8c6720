package ticket

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// idDigits is the zero-padded width of the numeric part of an ID.
const idDigits = 3

// Identity is a resolved ticket file.
type Identity struct {
	ID       string
	Filename string
	Path     string
}

// DirReader lists a directory. [os.ReadDir] and the filesystem in
// internal/fs both satisfy it.
type DirReader interface {
	ReadDir(path string) ([]os.DirEntry, error)
}

// CanonicalID turns "7", "007", "TKT-007" or "tkt-007" into "TKT-007".
//
// Input is trimmed and upper-cased first. Empty input returns "" and no error.
// Anything that is not a number, optionally prefixed with "TKT-", is a
// *FormatError wrapping ErrInvalidTicketID.
func CanonicalID(input string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	if normalized == "" {
		return "", nil
	}

	digits := strings.TrimPrefix(normalized, IDPrefix)
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return "", &FormatError{Input: input, Err: ErrInvalidTicketID}
	}

	if len(digits) < idDigits {
		digits = strings.Repeat("0", idDigits-len(digits)) + digits
	}

	return IDPrefix + digits, nil
}

// Resolve maps a loose identifier to a ticket file in dir.
//
// Files are matched by "name starts with the canonical id" in sorted name
// order, so the result does not depend on directory listing order. Only
// regular "*.md" files are considered.
//
// A nil Identity with a nil error means "no such ticket": empty input, a
// missing directory and no matching file all land there. Malformed input is a
// *FormatError and other listing failures are an *IOError.
func Resolve(fsys DirReader, dir, input string) (*Identity, error) {
	id, err := CanonicalID(input)
	if err != nil || id == "" {
		return nil, err
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, NewIOError("list", dir, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		names = append(names, entry.Name())
	}

	slices.Sort(names)

	for _, name := range names {
		if matchesID(name, id) {
			return &Identity{ID: id, Filename: name, Path: filepath.Join(dir, name)}, nil
		}
	}

	return nil, nil
}

// matchesID reports whether name starts with id. "TKT-0071.md" does not
// match "TKT-007": the id must not run on into another digit.
func matchesID(name, id string) bool {
	if !strings.HasPrefix(strings.ToUpper(name), id) {
		return false
	}

	rest := name[len(id):]

	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

// ResolveOrError is Resolve with "not found" turned into an error, for callers
// that cannot proceed without a ticket.
func ResolveOrError(fsys DirReader, dir, input string) (*Identity, error) {
	identity, err := Resolve(fsys, dir, input)
	if err != nil {
		return nil, err
	}

	if identity == nil {
		return nil, fmt.Errorf("ticket %q: %w", strings.TrimSpace(input), ErrTicketNotFound)
	}

	return identity, nil
}
