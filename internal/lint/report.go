package lint

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/calvinalkan/tkt/internal/ticket"
)

// Report renders lint results as text.
type Report struct {
	// Dir is stripped from result paths when they are inside it.
	Dir string

	// Quiet omits files without errors or warnings.
	Quiet bool

	path    lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
	ok      lipgloss.Style
	fixed   lipgloss.Style
}

// NewReport returns a Report. With color false the output carries no escape
// sequences.
func NewReport(color bool) *Report {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}

	renderer := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return &Report{
		path:    renderer.NewStyle().Bold(true),
		err:     renderer.NewStyle().Foreground(lipgloss.Color("9")),
		warning: renderer.NewStyle().Foreground(lipgloss.Color("11")),
		ok:      renderer.NewStyle().Foreground(lipgloss.Color("10")),
		fixed:   renderer.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// File renders one result. It returns "" when Quiet is set and the result has
// nothing to report.
func (r *Report) File(res ticket.Result) string {
	if r.Quiet && res.OK() && len(res.Warnings) == 0 && !res.Fixed {
		return ""
	}

	var b strings.Builder

	b.WriteString(r.path.Render(r.display(res.Path)))
	b.WriteString(":")

	if res.OK() && len(res.Warnings) == 0 && !res.Fixed {
		b.WriteString(" " + r.ok.Render("ok"))

		return b.String()
	}

	if res.Fixed {
		b.WriteString(" " + r.fixed.Render("fixed"))
	}

	for _, msg := range res.Errors {
		b.WriteString("\n  " + r.err.Render("error:") + " " + msg)
	}

	for _, msg := range res.Warnings {
		b.WriteString("\n  " + r.warning.Render("warning:") + " " + msg)
	}

	return b.String()
}

// Summary renders the batch totals.
func (r *Report) Summary(s Summary) string {
	line := fmt.Sprintf("%d %s, %d %s, %d %s",
		s.Files, plural(s.Files, "file"),
		s.Errors, plural(s.Errors, "error"),
		s.Warnings, plural(s.Warnings, "warning"),
	)

	if s.Fixed > 0 {
		line += fmt.Sprintf(", %d fixed", s.Fixed)
	}

	if s.OK() {
		return r.ok.Render(line)
	}

	return r.err.Render(line)
}

func (r *Report) display(path string) string {
	if r.Dir == "" {
		return path
	}

	rel, err := filepath.Rel(r.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return rel
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}

	return word + "s"
}
