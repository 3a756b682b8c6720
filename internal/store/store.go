// Package store persists ticket documents.
//
// Every write goes through [Writer], which takes the per-file lock, checks
// that the file on disk still holds the bytes the document was parsed from,
// and writes atomically. A document parsed from content that has since
// changed is rejected with [ErrStale] instead of overwriting the other
// writer's edit.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/zeebo/blake3"

	"github.com/calvinalkan/tkt/internal/fs"
	"github.com/calvinalkan/tkt/internal/ticket"
)

// ErrStale is returned when a ticket changed on disk after it was read.
var ErrStale = errors.New("ticket changed on disk since it was read")

const filePerms = 0o644

// Writer reads and writes ticket files.
type Writer struct {
	FS fs.FS

	// Lock enables the per-file advisory lock around every write.
	Lock bool

	Logger *slog.Logger
}

// NewWriter returns a Writer over fsys. A nil logger discards output.
func NewWriter(fsys fs.FS, lock bool, logger *slog.Logger) *Writer {
	return &Writer{FS: fsys, Lock: lock, Logger: logger}
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return w.Logger
}

// Load reads and parses the ticket at path. Read failures are *ticket.IOError;
// malformed files are *ticket.FormatError.
func (w *Writer) Load(path string) (*ticket.Document, error) {
	data, err := w.FS.ReadFile(path)
	if err != nil {
		return nil, ticket.NewIOError("read", path, err)
	}

	doc, err := ticket.Parse(path, data)
	if err != nil {
		return nil, err
	}

	doc.Checksum = checksum(data)

	return doc, nil
}

// Save writes doc back to doc.Path.
//
// When doc was read from disk, the current file content must still hash to
// doc.Checksum or Save fails with ErrStale. On success doc.Original and
// doc.Checksum are updated to the written bytes so the document can be saved
// again.
func (w *Writer) Save(doc *ticket.Document) error {
	release, err := w.acquire(doc.Path)
	if err != nil {
		return err
	}
	defer release()

	err = w.checkFresh(doc.Path, doc)
	if err != nil {
		return err
	}

	return w.write(doc)
}

// Rename writes doc to doc.Path and then removes from.
//
// The destination must not exist (*ticket.ConflictError). The source is
// removed only after the new file is written, so a failed write leaves the
// ticket where it was.
func (w *Writer) Rename(doc *ticket.Document, from string) error {
	if from == doc.Path {
		return w.Save(doc)
	}

	release, err := w.acquire(from, doc.Path)
	if err != nil {
		return err
	}
	defer release()

	err = w.checkFresh(from, doc)
	if err != nil {
		return err
	}

	exists, err := w.FS.Exists(doc.Path)
	if err != nil {
		return ticket.NewIOError("stat", doc.Path, err)
	}

	if exists {
		return &ticket.ConflictError{From: from, To: doc.Path}
	}

	err = w.write(doc)
	if err != nil {
		return err
	}

	err = w.FS.Remove(from)
	if err != nil {
		return ticket.NewIOError("remove", from, err)
	}

	w.logger().Debug("renamed ticket", "from", from, "to", doc.Path)

	return nil
}

// UpdateOutcome reports where an updated ticket ended up.
type UpdateOutcome struct {
	Document *ticket.Document
	Path     string
	Renamed  bool
}

// UpdateFields applies updates to doc and persists the result, renaming the
// file when the slug changes. doc is not modified.
func (w *Writer) UpdateFields(doc *ticket.Document, updates map[string]string, now time.Time) (UpdateOutcome, error) {
	res, err := ticket.ApplyFieldUpdates(doc, updates, now)
	if err != nil {
		return UpdateOutcome{}, err
	}

	if res.RenameRequired {
		err = w.Rename(res.Document, doc.Path)
	} else {
		err = w.Save(res.Document)
	}

	if err != nil {
		return UpdateOutcome{}, err
	}

	return UpdateOutcome{Document: res.Document, Path: res.NewPath, Renamed: res.RenameRequired}, nil
}

// Fix repairs what res reports missing and writes the repaired document.
//
// The returned Result has the fixed errors removed and Fixed set. When the
// write fails, res is returned unchanged together with the error.
func (w *Writer) Fix(doc *ticket.Document, res ticket.Result, rules ticket.Rules, opts ticket.FixOptions) (ticket.Result, error) {
	repair, err := ticket.PlanFix(doc, res, rules, opts)
	if err != nil {
		return res, err
	}

	if !repair.Changed() {
		return repair.Resolve(res), nil
	}

	err = w.Save(repair.Document)
	if err != nil {
		return res, err
	}

	w.logger().Info("fixed ticket",
		"path", doc.Path,
		"fields", repair.Fields,
		"sections", repair.Sections,
	)

	return repair.Resolve(res), nil
}

func (w *Writer) write(doc *ticket.Document) error {
	data := doc.Bytes()

	err := w.FS.WriteFileAtomic(doc.Path, data, filePerms)
	if err != nil {
		return ticket.NewIOError("write", doc.Path, err)
	}

	doc.Original = data
	doc.Checksum = checksum(data)

	w.logger().Debug("wrote ticket", "path", doc.Path, "bytes", len(data))

	return nil
}

// checkFresh compares the digest of the file at path with the digest doc
// was read with. Documents parsed outside the store fall back to hashing
// doc.Original; a document with neither was not read from disk.
func (w *Writer) checkFresh(path string, doc *ticket.Document) error {
	want := doc.Checksum
	if want == nil && doc.Original != nil {
		want = checksum(doc.Original)
	}

	if want == nil {
		return nil
	}

	current, err := w.FS.ReadFile(path)
	if err != nil {
		return ticket.NewIOError("read", path, err)
	}

	if !bytes.Equal(checksum(current), want) {
		return fmt.Errorf("%s: %w", path, ErrStale)
	}

	return nil
}

func checksum(data []byte) []byte {
	sum := blake3.Sum256(data)

	return sum[:]
}

// acquire locks paths in sorted order and returns a function releasing them.
func (w *Writer) acquire(paths ...string) (func(), error) {
	if !w.Lock {
		return func() {}, nil
	}

	sorted := slices.Clone(paths)
	slices.Sort(sorted)

	held := make([]fs.Locker, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Close()
		}
	}

	for _, path := range sorted {
		lock, err := w.FS.Lock(path)
		if err != nil {
			release()

			return nil, ticket.NewIOError("lock", path, err)
		}

		held = append(held, lock)
	}

	return release, nil
}
