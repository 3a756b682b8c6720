package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.StringP("section", "s", "", "Print only the body of `name`")

	return &Command{
		Flags: fs,
		Usage: "show <id> [flags]",
		Short: "Show ticket details",
		Long:  "Display the full contents of a ticket, or the body of one section.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execShow(io, a, fs, args)
		},
	}
}

func execShow(io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return ErrIDRequired
	}

	doc, err := a.load(args[0])
	if err != nil {
		return err
	}

	name, _ := fs.GetString("section")
	if name == "" {
		io.Printf("%s", doc.String())

		return nil
	}

	section, ok := doc.Section(name)
	if !ok {
		return fmt.Errorf("%w: %q in %s", ErrSectionNotFound, name, doc.Filename())
	}

	io.Println(section.Content())

	return nil
}
