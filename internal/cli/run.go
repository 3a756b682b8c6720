// Package cli implements the tkt command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/calvinalkan/tkt/internal/config"
	"github.com/calvinalkan/tkt/internal/fs"
	"github.com/calvinalkan/tkt/internal/store"
	"github.com/calvinalkan/tkt/internal/ticket"
)

// app is the state shared by all commands of one invocation.
type app struct {
	cfg    config.Config
	fs     fs.FS
	writer *store.Writer
	logger *slog.Logger
	color  bool
	now    func() time.Time
}

func newApp(cfg config.Config, logger *slog.Logger, color bool) *app {
	fsys := fs.NewReal()

	return &app{
		cfg:    cfg,
		fs:     fsys,
		writer: store.NewWriter(fsys, cfg.LockEnabled(), logger),
		logger: logger,
		color:  color,
		now:    time.Now,
	}
}

// rules loads the template and builds the validation rules.
func (a *app) rules() (ticket.Rules, error) {
	template, err := config.LoadTemplate(a.fs, a.cfg)
	if err != nil {
		return ticket.Rules{}, err
	}

	a.logger.Debug("loaded template", "path", template.Path)

	return a.cfg.Rules(template), nil
}

// load resolves input to a ticket file and parses it.
func (a *app) load(input string) (*ticket.Document, error) {
	identity, err := ticket.ResolveOrError(a.fs, a.cfg.TicketDirAbs, input)
	if err != nil {
		return nil, err
	}

	return a.writer.Load(identity.Path)
}

func allCommands(a *app) []*Command {
	return []*Command{
		LintCmd(a),
		ResolveCmd(a),
		ShowCmd(a),
		SetCmd(a),
		SectionCmd(a),
		SectionsCmd(a),
		PrintConfigCmd(a),
	}
}

type globalOptions struct {
	flags     *flag.FlagSet
	cwd       string
	config    string
	ticketDir string
	verbose   bool
	help      bool
}

func newGlobalOptions() *globalOptions {
	opts := &globalOptions{flags: flag.NewFlagSet("tkt", flag.ContinueOnError)}

	opts.flags.SetInterspersed(false)
	opts.flags.SetOutput(&strings.Builder{})
	opts.flags.BoolVarP(&opts.help, "help", "h", false, "Show help")
	opts.flags.StringVarP(&opts.cwd, "cwd", "C", "", "Run as if started in `dir`")
	opts.flags.StringVarP(&opts.config, "config", "c", "", "Use specified config `file`")
	opts.flags.StringVar(&opts.ticketDir, "ticket-dir", "", "Override ticket directory")
	opts.flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log diagnostics to stderr")

	return opts
}

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal received on it cancels the running command.
func Run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	opts := newGlobalOptions()

	if len(args) < 2 {
		printUsage(out, opts, nil)

		return 0
	}

	err := opts.flags.Parse(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, opts, nil)

		return 1
	}

	if opts.help {
		printUsage(out, opts, nil)

		return 0
	}

	rest := opts.flags.Args()
	if len(rest) == 0 {
		fprintln(errOut, "error:", ErrNoCommand)
		fprintln(errOut)
		printUsage(errOut, opts, nil)

		return 1
	}

	input := config.LoadConfigInput{
		WorkDirOverride: opts.cwd,
		ConfigPath:      opts.config,
		Env:             env,
	}

	if opts.flags.Changed("ticket-dir") {
		input.TicketDirOverride = &opts.ticketDir
	}

	cfg, err := config.LoadConfig(input)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, opts, nil)

		return 1
	}

	logger := slog.New(slog.DiscardHandler)
	if opts.verbose {
		logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	a := newApp(cfg, logger, colorEnabled(out, env))
	commands := allCommands(a)

	var cmd *Command

	for _, c := range commands {
		if c.Name() == rest[0] {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, rest[0]))
		fprintln(errOut)
		printUsage(errOut, opts, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				logger.Debug("received signal, cancelling")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(stdin, out, errOut)

	code := cmd.Run(ctx, o, rest[1:])
	if finish := o.Finish(); code == 0 {
		code = finish
	}

	return code
}

// colorEnabled reports whether out is a terminal that accepts color.
func colorEnabled(out io.Writer, env map[string]string) bool {
	if env["NO_COLOR"] != "" {
		return false
	}

	f, ok := out.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, opts *globalOptions, commands []*Command) {
	if commands == nil {
		commands = allCommands(&app{})
	}

	fprintln(w, "tkt - ticket document linter and editor")
	fprintln(w)
	fprintln(w, "Usage: tkt [global flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Global flags:")
	fprintln(w, strings.TrimRight(opts.flags.FlagUsages(), "\n"))
	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}
