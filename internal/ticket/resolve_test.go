package ticket_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tkt/internal/ticket"
)

type osDir struct{}

func (osDir) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }

// reversedDir lists entries in reverse name order.
type reversedDir struct{}

func (reversedDir) ReadDir(path string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(path)
	slices.Reverse(entries)

	return entries, err
}

type failingDir struct{ err error }

func (f failingDir) ReadDir(string) ([]os.DirEntry, error) { return nil, f.err }

func ticketDir(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("---\n---\n"), 0o644))
	}

	return dir
}

func Test_CanonicalID(t *testing.T) {
	t.Parallel()

	valid := map[string]string{
		"7":          "TKT-007",
		"007":        "TKT-007",
		"TKT-007":    "TKT-007",
		" tkt-007 ":  "TKT-007",
		"TKT-7":      "TKT-007",
		"1234":       "TKT-1234",
		"tkt-000042": "TKT-000042",
	}

	for input, want := range valid {
		got, err := ticket.CanonicalID(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"abc", "TKT-", "12a", "-7", "TKT-x7", "BUG-007", "7 8"} {
		_, err := ticket.CanonicalID(input)
		require.ErrorIs(t, err, ticket.ErrInvalidTicketID, input)
	}

	got, err := ticket.CanonicalID("   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_Resolve_Returns_Same_Identity_For_All_Spellings(t *testing.T) {
	t.Parallel()

	dir := ticketDir(t, "TKT-006-bar.md", "TKT-007-foo.md", "TKT-070-baz.md")

	want := &ticket.Identity{ID: "TKT-007", Filename: "TKT-007-foo.md", Path: filepath.Join(dir, "TKT-007-foo.md")}

	for _, input := range []string{"7", "007", "TKT-007", "tkt-007"} {
		got, err := ticket.Resolve(osDir{}, dir, input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func Test_Resolve_Returns_Nil_When_ID_Not_Present(t *testing.T) {
	t.Parallel()

	dir := ticketDir(t, "TKT-001-a.md", "TKT-002-b.md", "TKT-003-c.md", "TKT-004-d.md", "TKT-005-e.md")

	got, err := ticket.Resolve(osDir{}, dir, "999")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_Resolve_Returns_FormatError_When_Input_Not_An_ID(t *testing.T) {
	t.Parallel()

	dir := ticketDir(t, "TKT-001-a.md")

	got, err := ticket.Resolve(osDir{}, dir, "abc")
	require.Nil(t, got)
	require.ErrorIs(t, err, ticket.ErrInvalidTicketID)

	var formatErr *ticket.FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "abc", formatErr.Input)
	assert.Equal(t, `invalid ticket ID format: "abc"`, err.Error())
}

func Test_Resolve_Returns_Nil_When_Input_Empty_Or_Dir_Missing(t *testing.T) {
	t.Parallel()

	got, err := ticket.Resolve(osDir{}, t.TempDir(), "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ticket.Resolve(osDir{}, filepath.Join(t.TempDir(), "missing"), "7")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_Resolve_Picks_First_Name_In_Sorted_Order(t *testing.T) {
	t.Parallel()

	dir := ticketDir(t, "TKT-002-a.md", "TKT-002-b.md")

	got, err := ticket.Resolve(reversedDir{}, dir, "2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "TKT-002-a.md", got.Filename)
}

func Test_Resolve_Ignores_Non_Markdown_Files_And_Longer_IDs(t *testing.T) {
	t.Parallel()

	dir := ticketDir(t, "TKT-004.txt", "TKT-0041-other.md")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "TKT-004-dir.md"), 0o755))

	got, err := ticket.Resolve(osDir{}, dir, "4")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_Resolve_Matches_Lower_Case_Filenames(t *testing.T) {
	t.Parallel()

	dir := ticketDir(t, "tkt-009-lower.md")

	got, err := ticket.Resolve(osDir{}, dir, "9")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tkt-009-lower.md", got.Filename)
	assert.Equal(t, "TKT-009", got.ID)
}

func Test_Resolve_Returns_IOError_When_Listing_Fails(t *testing.T) {
	t.Parallel()

	_, err := ticket.Resolve(failingDir{err: os.ErrPermission}, "tickets", "7")

	var ioErr *ticket.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "list tickets: permission denied", err.Error())
}

func Test_ResolveOrError_Returns_NotFound_When_No_Match(t *testing.T) {
	t.Parallel()

	_, err := ticket.ResolveOrError(osDir{}, t.TempDir(), "12")
	require.ErrorIs(t, err, ticket.ErrTicketNotFound)
}
