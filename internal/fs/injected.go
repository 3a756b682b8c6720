package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// Op names a filesystem operation that [Faulty] can fail.
type Op string

// Operations [Faulty] can intercept.
const (
	OpRead    Op = "read"
	OpWrite   Op = "write"
	OpReadDir Op = "readdir"
	OpStat    Op = "stat"
	OpRemove  Op = "remove"
	OpLock    Op = "lock"
)

// InjectedError marks an error as intentionally injected by [Faulty].
//
// It wraps a real *fs.PathError so errors.Is(err, os.ErrPermission) and
// friends keep working.
type InjectedError struct {
	Err error
}

func (e *InjectedError) Error() string {
	return e.Err.Error()
}

func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by [Faulty].
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

type faultKey struct {
	op   Op
	path string
}

// Faulty wraps an [FS] and fails selected operations on selected paths.
//
// Faults are sticky: once set with [Faulty.Fail], every matching call fails
// until [Faulty.Clear]. Paths are compared after [filepath.Clean].
//
// Faulty is safe for concurrent use if the wrapped FS is.
type Faulty struct {
	fs FS

	mu     sync.RWMutex
	faults map[faultKey]syscall.Errno
	calls  map[Op]int
}

// NewFaulty wraps fs with no faults configured.
func NewFaulty(fs FS) *Faulty {
	return &Faulty{
		fs:     fs,
		faults: make(map[faultKey]syscall.Errno),
		calls:  make(map[Op]int),
	}
}

// Fail makes every op on path return errno.
func (f *Faulty) Fail(op Op, path string, errno syscall.Errno) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.faults[faultKey{op: op, path: filepath.Clean(path)}] = errno
}

// Clear removes every configured fault.
func (f *Faulty) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	clear(f.faults)
}

// Calls returns how many times op was invoked, failed or not.
func (f *Faulty) Calls(op Op) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.calls[op]
}

func (f *Faulty) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++

	errno, ok := f.faults[faultKey{op: op, path: filepath.Clean(path)}]
	if !ok {
		return nil
	}

	return &InjectedError{Err: &iofs.PathError{Op: string(op), Path: path, Err: errno}}
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.check(OpRead, path); err != nil {
		return nil, err
	}

	return f.fs.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.check(OpWrite, path); err != nil {
		return err
	}

	return f.fs.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) ReadDir(path string) ([]os.DirEntry, error) {
	if err := f.check(OpReadDir, path); err != nil {
		return nil, err
	}

	return f.fs.ReadDir(path)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.check(OpStat, path); err != nil {
		return nil, err
	}

	return f.fs.Stat(path)
}

func (f *Faulty) Exists(path string) (bool, error) {
	if err := f.check(OpStat, path); err != nil {
		return false, err
	}

	return f.fs.Exists(path)
}

func (f *Faulty) Remove(path string) error {
	if err := f.check(OpRemove, path); err != nil {
		return err
	}

	return f.fs.Remove(path)
}

func (f *Faulty) Lock(path string) (Locker, error) {
	if err := f.check(OpLock, path); err != nil {
		return nil, err
	}

	return f.fs.Lock(path)
}

// Compile-time interface check.
var _ FS = (*Faulty)(nil)
