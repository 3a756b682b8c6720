package cli

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, a)
		},
	}
}

func execPrintConfig(io *IO, a *app) error {
	cfg := a.cfg

	template := cfg.TemplateAbs
	if _, err := a.fs.Stat(template); errors.Is(err, os.ErrNotExist) {
		template += " (missing, using built-in)"
	}

	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("ticket_dir=" + cfg.TicketDirAbs)
	io.Println("template=" + template)
	io.Println("status_options=" + strings.Join(cfg.StatusOptions, ","))
	io.Println("priority_options=" + strings.Join(cfg.PriorityOptions, ","))
	io.Println("short_section_severity=" + cfg.Severity().String())
	io.Println("header_style=" + cfg.Style().String())
	io.Println("lock=" + strconv.FormatBool(cfg.LockEnabled()))

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			io.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}
