package lint

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/calvinalkan/tkt/internal/ticket"
)

const defaultDebounce = 200 * time.Millisecond

// Watch lints ticket files in dir again whenever they are created or
// written, until ctx is done. Events are debounced so an editor's
// save-rename-chmod burst produces one lint per file. Each batch of results
// is passed to report in path order.
//
// Writes made by the fixer trigger one more pass, which finds nothing left to
// fix and settles.
func (l *Linter) Watch(ctx context.Context, dir string, report func([]ticket.Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	err = watcher.Add(dir)
	if err != nil {
		return ticket.NewIOError("watch", dir, err)
	}

	debounce := l.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if !l.isTicketFile(event.Name) {
				continue
			}

			pending[event.Name] = struct{}{}

			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			l.logger().Warn("watch error", "dir", dir, "error", err)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}

			clear(pending)
			slices.Sort(paths)

			results, err := l.LintFiles(ctx, paths)
			if err != nil {
				return nil
			}

			report(results)
		}
	}
}
