package ticket

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"syscall"
)

// Frontmatter delimiter.
const frontmatterDelimiter = "---"

// Error variables for ticket operations.
var (
	ErrTooFewLines           = errors.New("ticket has fewer than 3 lines")
	ErrMissingOpenDelimiter  = errors.New("first line must be ---")
	ErrMissingCloseDelimiter = errors.New("missing closing --- delimiter")
	ErrInvalidTicketID       = errors.New("invalid ticket ID format")
	ErrMissingID             = errors.New("ticket has no id")
	ErrTicketFileExists      = errors.New("ticket file already exists")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrInvalidFieldKey       = errors.New("invalid field key")
	ErrInvalidFieldValue     = errors.New("invalid field value")
)

// FieldError reports a header update that cannot be written as a single
// "key: value" line.
type FieldError struct {
	Key    string
	Reason string
	Err    error // ErrInvalidFieldKey or ErrInvalidFieldValue
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v %q: %s", e.Err, e.Key, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// FormatError reports input that cannot be reasoned about safely: a ticket
// with broken delimiters or an identifier that is not a ticket ID.
type FormatError struct {
	Path  string // Path is empty for identifier errors.
	Input string // Input holds the offending identifier, if any.
	Err   error
}

func (e *FormatError) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	case e.Input != "":
		return fmt.Sprintf("%v: %q", e.Err, e.Input)
	default:
		return e.Err.Error()
	}
}

func (e *FormatError) Unwrap() error { return e.Err }

// ConflictError reports a rename whose destination already exists.
type ConflictError struct {
	From string
	To   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot rename %s: %s already exists", e.From, e.To)
}

func (e *ConflictError) Unwrap() error { return ErrTicketFileExists }

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	Op   string // read, write, list, remove, lock
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, describeIOErr(e.Err))
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError wraps err unless it is nil or already an *IOError.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}

	return &IOError{Op: op, Path: path, Err: err}
}

func describeIOErr(err error) string {
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return "timed out waiting for lock"
	case errors.Is(err, iofs.ErrNotExist):
		return "no such file or directory"
	case errors.Is(err, iofs.ErrPermission):
		return "permission denied"
	case errors.Is(err, syscall.ENOSPC):
		return "no space left on device"
	case errors.Is(err, syscall.EROFS):
		return "read-only file system"
	case errors.Is(err, syscall.ENOTDIR):
		return "not a directory"
	default:
		return err.Error()
	}
}
