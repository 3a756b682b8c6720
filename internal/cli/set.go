package cli

import (
	"context"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// SetCmd returns the set command.
func SetCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("set", flag.ContinueOnError),
		Usage: "set <id> key=value...",
		Short: "Set header fields",
		Long: `Set one or more header fields. Existing lines are rewritten in place and
new keys are appended. updated_at is refreshed. Changing the slug renames the
file; the new path is printed.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execSet(io, a, args)
		},
	}
}

func execSet(io *IO, a *app, args []string) error {
	if len(args) == 0 {
		return ErrIDRequired
	}

	if len(args) == 1 {
		return ErrUpdatesRequired
	}

	updates := make(map[string]string, len(args)-1)

	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return fmt.Errorf("%w: %q", ErrInvalidAssignment, arg)
		}

		updates[key] = value
	}

	doc, err := a.load(args[0])
	if err != nil {
		return err
	}

	outcome, err := a.writer.UpdateFields(doc, updates, a.now())
	if err != nil {
		return err
	}

	if outcome.Renamed {
		io.Println("renamed", doc.Path, "->", outcome.Path)

		return nil
	}

	io.Println(outcome.Path)

	return nil
}
