package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// SectionCmd returns the section command.
func SectionCmd(a *app) *Command {
	fs := flag.NewFlagSet("section", flag.ContinueOnError)
	fs.StringP("body", "b", "", "New section body (read from stdin when not given)")

	return &Command{
		Flags: fs,
		Usage: "section <id> <name> [flags]",
		Short: "Replace the body of a section",
		Long: `Replace everything between "## <name>" and the next section header.
Other sections are left untouched. updated_at is refreshed.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execSection(o, a, fs, args)
		},
	}
}

func execSection(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return ErrIDRequired
	}

	if len(args) == 1 {
		return ErrSectionRequired
	}

	name := args[1]

	body, _ := fs.GetString("body")
	if !fs.Changed("body") {
		if o.Stdin() == nil {
			return fmt.Errorf("%w: pass --body or pipe the body on stdin", ErrSectionRequired)
		}

		data, err := io.ReadAll(o.Stdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}

		body = string(data)
	}

	doc, err := a.load(args[0])
	if err != nil {
		return err
	}

	if !doc.ReplaceSection(name, body) {
		o.WarnLLM(
			fmt.Sprintf("section %q not found in %s", name, doc.Filename()),
			"run 'tkt sections "+args[0]+"' to list section names, or 'tkt lint --fix' to add missing ones",
		)

		return nil
	}

	outcome, err := a.writer.UpdateFields(doc, nil, a.now())
	if err != nil {
		return err
	}

	o.Println(outcome.Path)

	return nil
}

// SectionsCmd returns the sections command.
func SectionsCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("sections", flag.ContinueOnError),
		Usage: "sections <id>",
		Short: "List section names with line numbers",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execSections(o, a, args)
		},
	}
}

func execSections(o *IO, a *app, args []string) error {
	if len(args) == 0 {
		return ErrIDRequired
	}

	doc, err := a.load(args[0])
	if err != nil {
		return err
	}

	// Body line 0 follows the two delimiters and the header lines.
	offset := len(doc.Header) + 2

	for _, section := range doc.Sections() {
		o.Printf("%d\t%s\n", offset+section.Header+1, section.Name)
	}

	return nil
}
