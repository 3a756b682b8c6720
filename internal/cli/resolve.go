package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tkt/internal/ticket"
)

// ResolveCmd returns the resolve command.
func ResolveCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("resolve", flag.ContinueOnError),
		Usage: "resolve <id>",
		Short: "Print the file a ticket ID refers to",
		Long: `Print the path of the ticket file for a loose ID. "7", "007", "TKT-007"
and "tkt-007" all name the same ticket.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execResolve(io, a, args)
		},
	}
}

func execResolve(io *IO, a *app, args []string) error {
	if len(args) == 0 {
		return ErrIDRequired
	}

	identity, err := ticket.ResolveOrError(a.fs, a.cfg.TicketDirAbs, args[0])
	if err != nil {
		return err
	}

	io.Println(identity.Path)

	return nil
}
