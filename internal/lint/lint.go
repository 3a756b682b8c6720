// Package lint validates, and optionally fixes, every ticket in a directory.
//
// Files are processed independently in a bounded worker pool. A file that
// cannot be read, parsed or written back produces a Result carrying the error
// and the batch carries on with the next file.
package lint

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calvinalkan/tkt/internal/store"
	"github.com/calvinalkan/tkt/internal/ticket"
)

const ticketExt = ".md"

// Linter runs validation over ticket files.
type Linter struct {
	Writer *store.Writer
	Rules  ticket.Rules

	// Fix repairs missing fields and sections and writes the files back.
	Fix   bool
	Style ticket.HeaderStyle

	// Workers bounds how many files are processed at once. Zero or negative
	// means one per CPU.
	Workers int

	// Exclude lists absolute paths that are never linted, such as the
	// template when it lives inside the ticket directory.
	Exclude []string

	// Debounce is how long Watch waits for a burst of events to settle.
	Debounce time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

func (l *Linter) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return l.Logger
}

func (l *Linter) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}

	return l.Now()
}

func (l *Linter) workers() int {
	if l.Workers <= 0 {
		return runtime.NumCPU()
	}

	return l.Workers
}

// ListFiles returns the ticket files in dir, sorted by name. Directories,
// dot-files, non-markdown files and excluded paths are skipped.
func (l *Linter) ListFiles(dir string) ([]string, error) {
	entries, err := l.Writer.FS.ReadDir(dir)
	if err != nil {
		return nil, ticket.NewIOError("list", dir, err)
	}

	paths := make([]string, 0, len(entries))

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() || !l.isTicketFile(path) {
			continue
		}

		paths = append(paths, path)
	}

	slices.Sort(paths)

	return paths, nil
}

func (l *Linter) isTicketFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || filepath.Ext(name) != ticketExt {
		return false
	}

	if slices.Contains(l.Exclude, filepath.Clean(path)) {
		l.logger().Debug("skipping excluded file", "path", path)

		return false
	}

	return true
}

// LintDir lints every ticket file in dir.
func (l *Linter) LintDir(ctx context.Context, dir string) ([]ticket.Result, error) {
	paths, err := l.ListFiles(dir)
	if err != nil {
		return nil, err
	}

	return l.LintFiles(ctx, paths)
}

// LintFiles lints paths concurrently. Results are returned in the order of
// paths. Only cancellation of ctx makes it return an error; files not reached
// before cancellation have a zero Result.
func (l *Linter) LintFiles(ctx context.Context, paths []string) ([]ticket.Result, error) {
	results := make([]ticket.Result, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.workers())

	for idx, path := range paths {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			results[idx] = l.LintFile(path)

			return nil
		})
	}

	err := group.Wait()
	if err == nil {
		err = ctx.Err()
	}

	return results, err
}

// LintFile validates one file and, when l.Fix is set, repairs it.
func (l *Linter) LintFile(path string) ticket.Result {
	doc, err := l.Writer.Load(path)
	if err != nil {
		l.logger().Debug("cannot load ticket", "path", path, "error", err)

		return ticket.Result{Path: path, Errors: []string{describe(err)}}
	}

	res := ticket.Validate(doc, l.Rules)

	if !l.Fix || (len(res.MissingFields) == 0 && len(res.MissingSections) == 0) {
		return res
	}

	fixed, err := l.Writer.Fix(doc, res, l.Rules, ticket.FixOptions{Now: l.now(), Style: l.Style})
	if err != nil {
		l.logger().Warn("fix not written", "path", path, "error", err)
		res.Errors = append(res.Errors, "fix failed: "+describe(err))

		return res
	}

	return fixed
}

// describe drops the path prefix from format errors; the report already
// names the file.
func describe(err error) string {
	var formatErr *ticket.FormatError
	if errors.As(err, &formatErr) && formatErr.Path != "" {
		return formatErr.Err.Error()
	}

	return err.Error()
}

// Summary counts the outcome of a batch.
type Summary struct {
	Files    int
	Failed   int // files with at least one error
	Errors   int
	Warnings int
	Fixed    int
}

// Summarize totals results.
func Summarize(results []ticket.Result) Summary {
	var sum Summary

	for _, res := range results {
		sum.Files++
		sum.Errors += len(res.Errors)
		sum.Warnings += len(res.Warnings)

		if !res.OK() {
			sum.Failed++
		}

		if res.Fixed {
			sum.Fixed++
		}
	}

	return sum
}

// OK reports whether no file has errors.
func (s Summary) OK() bool {
	return s.Errors == 0
}
