package cli_test

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/calvinalkan/tkt/internal/cli"
)

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "lint")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")

	// Should show valid global options
	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--help")
	cli.AssertContains(t, stderr, "--cwd")
	cli.AssertContains(t, stderr, "--config")
	cli.AssertContains(t, stderr, "--ticket-dir")
}

func Test_Empty_Ticket_Dir_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--ticket-dir=", "lint")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "ticket-dir cannot be empty")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Bare_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	// Call Run directly without test helper (which adds --cwd)
	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"tkt"}, nil, nil)

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr.String(), ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout.String(), "tkt - ticket document linter and editor")
	cli.AssertContains(t, stdout.String(), "--cwd")
	cli.AssertContains(t, stdout.String(), "lint [id...]")
}

func Test_Main_Help_When_Invoked(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		args []string
	}{
		{name: "long flag", args: []string{"--help"}},
		{name: "short flag", args: []string{"-h"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			stdout, stderr, exitCode := c.Run(tt.args...)

			if got, want := exitCode, 0; got != want {
				t.Errorf("exitCode=%d, want=%d", got, want)
			}

			if got, want := stderr, ""; got != want {
				t.Errorf("stderr=%q, want=%q", got, want)
			}

			for _, usage := range []string{"lint [id...]", "resolve <id>", "show <id>", "set <id> key=value...", "section <id> <name>", "sections <id>", "print-config"} {
				cli.AssertContains(t, stdout, usage)
			}
		})
	}
}

func Test_No_Command_With_Flags_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--cwd", c.Dir)

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "no command provided")
	cli.AssertContains(t, stderr, "Commands:")
	cli.AssertContains(t, stderr, "lint [id...]")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Invalid_Command_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("show", "--invalid-flag")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	// Should show command usage on stdout
	cli.AssertContains(t, stdout, "Usage: tkt show <id>")
	cli.AssertContains(t, stdout, "Flags:")

	// Should show error message on stderr
	cli.AssertContains(t, stderr, "error:")
	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
}

func Test_Command_Help_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("lint", "--help")

	cli.AssertContains(t, stdout, "Usage: tkt lint [id...] [flags]")
	cli.AssertContains(t, stdout, "--fix")
	cli.AssertContains(t, stdout, "--watch")
}

func Test_Verbose_Flag_Logs_To_Stderr_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteTicket("TKT-001-login-fails.md", validTicket)

	_, stderr, exitCode := c.Run("-v", "lint")

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stderr, "level=DEBUG")
	cli.AssertContains(t, stderr, "loaded template")
}

func Test_Signal_Cancels_Watch_When_Received(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteTicket("TKT-001-login-fails.md", validTicket)

	sigCh := make(chan os.Signal, 1)
	done := make(chan int, 1)

	var stdout, stderr bytes.Buffer

	go func() {
		done <- cli.Run(nil, &stdout, &stderr, []string{"tkt", "--cwd", c.Dir, "lint", "--watch"}, c.Env, sigCh)
	}()

	time.Sleep(100 * time.Millisecond)
	sigCh <- os.Interrupt

	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("exitCode=%d, want=0\nstderr: %s", code, stderr.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("lint --watch did not stop after signal")
	}

	cli.AssertContains(t, stdout.String(), "TKT-001-login-fails.md: ok")
}
