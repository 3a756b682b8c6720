package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/tkt/internal/lint"
	"github.com/calvinalkan/tkt/internal/ticket"
)

func Test_Report_File_Renders_Plain_Text_Without_Color(t *testing.T) {
	t.Parallel()

	r := lint.NewReport(false)
	r.Dir = "/work/tickets"

	tests := []struct {
		name string
		res  ticket.Result
		want string
	}{
		{
			name: "clean",
			res:  ticket.Result{Path: "/work/tickets/TKT-001-a.md"},
			want: "TKT-001-a.md: ok",
		},
		{
			name: "errors and warnings",
			res: ticket.Result{
				Path:     "/work/tickets/TKT-002-b.md",
				Errors:   []string{"missing required field: slug"},
				Warnings: []string{"missing title field"},
			},
			want: "TKT-002-b.md:\n  error: missing required field: slug\n  warning: missing title field",
		},
		{
			name: "fixed outside dir",
			res:  ticket.Result{Path: "/elsewhere/TKT-003-c.md", Fixed: true},
			want: "/elsewhere/TKT-003-c.md: fixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, r.File(tt.res))
		})
	}
}

func Test_Report_File_Omits_Clean_Results_When_Quiet(t *testing.T) {
	t.Parallel()

	r := lint.NewReport(false)
	r.Quiet = true

	assert.Empty(t, r.File(ticket.Result{Path: "TKT-001-a.md"}))
	assert.Equal(t, "TKT-002-b.md:\n  warning: w", r.File(ticket.Result{Path: "TKT-002-b.md", Warnings: []string{"w"}}))
}

func Test_Report_Summary_Pluralizes_Counts(t *testing.T) {
	t.Parallel()

	r := lint.NewReport(false)

	assert.Equal(t, "1 file, 0 errors, 2 warnings", r.Summary(lint.Summary{Files: 1, Warnings: 2}))
	assert.Equal(t, "3 files, 1 error, 1 warning, 2 fixed", r.Summary(lint.Summary{Files: 3, Errors: 1, Warnings: 1, Fixed: 2, Failed: 1}))
}

func Test_Report_Adds_Escape_Sequences_When_Color_Enabled(t *testing.T) {
	t.Parallel()

	r := lint.NewReport(true)

	assert.Contains(t, r.File(ticket.Result{Path: "TKT-001-a.md"}), "\x1b[")
}
