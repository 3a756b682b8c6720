package frontmatter_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tkt/internal/frontmatter"
)

func Test_Marshal_Returns_Delimited_Output_When_Defaults(t *testing.T) {
	t.Parallel()

	got, err := frontmatter.Marshal([]frontmatter.Entry{
		{Key: "id", Value: "TKT-007"},
		{Key: "status", Value: "open"},
	})
	require.NoError(t, err)

	want := strings.Join([]string{
		"---",
		"id: TKT-007",
		"status: open",
		"---",
		"",
	}, "\n")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func Test_Marshal_Omits_Delimiters_When_Option_Set(t *testing.T) {
	t.Parallel()

	got, err := frontmatter.Marshal(
		[]frontmatter.Entry{{Key: "id", Value: "TKT-007"}},
		frontmatter.WithYAMLDelimiters(false),
	)
	require.NoError(t, err)
	require.Equal(t, "id: TKT-007\n", got)
}

func Test_Marshal_Uses_Key_Order_Then_Input_Order_When_Option_Set(t *testing.T) {
	t.Parallel()

	entries := []frontmatter.Entry{
		{Key: "custom", Value: "x"},
		{Key: "status", Value: "open"},
		{Key: "id", Value: "TKT-001"},
		{Key: "another", Value: "y"},
	}

	got, err := frontmatter.Marshal(entries,
		frontmatter.WithYAMLDelimiters(false),
		frontmatter.WithKeyOrder([]string{"id", "title", "status"}),
	)
	require.NoError(t, err)

	want := strings.Join([]string{
		"id: TKT-001",
		"status: open",
		"custom: x",
		"another: y",
		"",
	}, "\n")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func Test_Marshal_Keeps_Timestamps_Plain_And_Quoted_Values_Quoted(t *testing.T) {
	t.Parallel()

	got, err := frontmatter.Marshal([]frontmatter.Entry{
		{Key: "title", Value: "Fix: retry uploads", Quoted: true},
		{Key: "created_at", Value: "2024-01-02T03:04:05.000Z"},
		{Key: "priority", Value: "2"},
	}, frontmatter.WithYAMLDelimiters(false))
	require.NoError(t, err)

	want := strings.Join([]string{
		`title: "Fix: retry uploads"`,
		"created_at: 2024-01-02T03:04:05.000Z",
		"priority: 2",
		"",
	}, "\n")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func Test_Marshal_Quotes_Unquoted_Value_When_Plain_Is_Not_Valid_YAML(t *testing.T) {
	t.Parallel()

	got, err := frontmatter.Marshal(
		[]frontmatter.Entry{{Key: "title", Value: "Fix: retry"}},
		frontmatter.WithYAMLDelimiters(false),
	)
	require.NoError(t, err)

	entries, err := frontmatter.Unmarshal([]byte(got))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Fix: retry", entries[0].Value)
	require.True(t, entries[0].Quoted, "expected quoted output, got %q", got)
}

func Test_Marshal_Writes_First_Entry_When_Key_Duplicated(t *testing.T) {
	t.Parallel()

	got, err := frontmatter.Marshal([]frontmatter.Entry{
		{Key: "status", Value: "open"},
		{Key: "status", Value: "done"},
	}, frontmatter.WithYAMLDelimiters(false))
	require.NoError(t, err)
	require.Equal(t, "status: open\n", got)
}

func Test_Marshal_Returns_Error_When_Key_Empty(t *testing.T) {
	t.Parallel()

	_, err := frontmatter.Marshal([]frontmatter.Entry{{Key: " ", Value: "x"}})
	require.ErrorIs(t, err, frontmatter.ErrEmptyKey)
}

func Test_Marshal_Writes_Only_Delimiters_When_No_Entries(t *testing.T) {
	t.Parallel()

	got, err := frontmatter.Marshal(nil)
	require.NoError(t, err)
	require.Equal(t, "---\n---\n", got)
}

func Test_Unmarshal_Returns_Entries_In_File_Order(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"id: TKT-003",
		"title: 'Quoted title'",
		"status: open",
	}, "\n")

	got, err := frontmatter.Unmarshal([]byte(src))
	require.NoError(t, err)

	want := []frontmatter.Entry{
		{Key: "id", Value: "TKT-003"},
		{Key: "title", Value: "Quoted title", Quoted: true},
		{Key: "status", Value: "open"},
	}

	if diff := cmp.Diff(want, got, ignoreNode); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func Test_Unmarshal_Keeps_List_Values_When_Marshaled_Again(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"tags:",
		"  - backend",
		"  - urgent",
		"labels: [a, b]",
		"status: open",
	}, "\n")

	entries, err := frontmatter.Unmarshal([]byte(src))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Empty(t, entries[0].Value)
	require.NotNil(t, entries[0].Node)
	require.Equal(t, "open", entries[2].Value)

	got, err := frontmatter.Marshal(entries,
		frontmatter.WithYAMLDelimiters(false),
		frontmatter.WithKeyOrder([]string{"status"}),
	)
	require.NoError(t, err)

	want := strings.Join([]string{
		"status: open",
		"tags:",
		"  - backend",
		"  - urgent",
		"labels: [a, b]",
		"",
	}, "\n")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func Test_Unmarshal_Returns_Error_When_Header_Uses_Aliases(t *testing.T) {
	t.Parallel()

	_, err := frontmatter.Unmarshal([]byte("owner: &who alice\nreviewer: *who\n"))
	require.ErrorIs(t, err, frontmatter.ErrAlias)
}

func Test_Unmarshal_Returns_Error_When_Key_Empty(t *testing.T) {
	t.Parallel()

	_, err := frontmatter.Unmarshal([]byte("\"\": x\n"))
	require.ErrorIs(t, err, frontmatter.ErrEmptyKey)
}

func Test_Marshal_Output_Decodes_To_Same_Entries(t *testing.T) {
	t.Parallel()

	entries := []frontmatter.Entry{
		{Key: "id", Value: "TKT-010"},
		{Key: "title", Value: `Say "hi" [now]`, Quoted: true},
		{Key: "slug", Value: "TKT-010-say-hi-now"},
		{Key: "updated_at", Value: "2024-05-06"},
	}

	out, err := frontmatter.Marshal(entries, frontmatter.WithYAMLDelimiters(false))
	require.NoError(t, err)

	got, err := frontmatter.Unmarshal([]byte(out))
	require.NoError(t, err)

	if diff := cmp.Diff(entries, got, ignoreNode); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s\noutput:\n%s", diff, out)
	}
}

var ignoreNode = cmpopts.IgnoreFields(frontmatter.Entry{}, "Node")
