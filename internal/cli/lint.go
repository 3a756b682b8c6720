package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tkt/internal/lint"
	"github.com/calvinalkan/tkt/internal/ticket"
)

// LintCmd returns the lint command.
func LintCmd(a *app) *Command {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.Bool("fix", false, "Add missing fields and sections and rewrite the files")
	fs.Bool("watch", false, "Keep running and lint tickets again when they change")
	fs.BoolP("quiet", "q", false, "Only list tickets with problems")
	fs.Int("workers", 0, "Number of files processed in parallel (default: one per CPU)")

	return &Command{
		Flags: fs,
		Usage: "lint [id...] [flags]",
		Short: "Validate tickets against the template",
		Long: `Validate all tickets, or the given ones, against the template and the
configured status and priority options. Exits 1 when any ticket has errors.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execLint(ctx, io, a, fs, args)
		},
	}
}

func execLint(ctx context.Context, io *IO, a *app, fs *flag.FlagSet, args []string) error {
	fix, _ := fs.GetBool("fix")
	watch, _ := fs.GetBool("watch")
	quiet, _ := fs.GetBool("quiet")
	workers, _ := fs.GetInt("workers")

	rules, err := a.rules()
	if err != nil {
		return err
	}

	linter := &lint.Linter{
		Writer:  a.writer,
		Rules:   rules,
		Fix:     fix,
		Style:   a.cfg.Style(),
		Workers: workers,
		Exclude: []string{a.cfg.TemplateAbs},
		Logger:  a.logger,
		Now:     a.now,
	}

	report := lint.NewReport(a.color)
	report.Dir = a.cfg.TicketDirAbs
	report.Quiet = quiet

	var results []ticket.Result

	if len(args) == 0 {
		results, err = linter.LintDir(ctx, a.cfg.TicketDirAbs)
	} else {
		var paths []string

		paths, err = resolveAll(a, args)
		if err != nil {
			return err
		}

		results, err = linter.LintFiles(ctx, paths)
	}

	if err != nil {
		return err
	}

	printResults(io, report, results)

	summary := lint.Summarize(results)
	io.Println(report.Summary(summary))

	if watch {
		io.ErrPrintln("watching", a.cfg.TicketDirAbs, "(Ctrl+C to stop)")

		return linter.Watch(ctx, a.cfg.TicketDirAbs, func(results []ticket.Result) {
			printResults(io, report, results)
		})
	}

	if !summary.OK() {
		return fmt.Errorf("%w: %d of %d tickets", ErrLintFailed, summary.Failed, summary.Files)
	}

	return nil
}

func printResults(io *IO, report *lint.Report, results []ticket.Result) {
	for _, res := range results {
		if line := report.File(res); line != "" {
			io.Println(line)
		}
	}
}

func resolveAll(a *app, inputs []string) ([]string, error) {
	paths := make([]string, 0, len(inputs))

	for _, input := range inputs {
		identity, err := ticket.ResolveOrError(a.fs, a.cfg.TicketDirAbs, input)
		if err != nil {
			return nil, err
		}

		paths = append(paths, identity.Path)
	}

	return paths, nil
}
