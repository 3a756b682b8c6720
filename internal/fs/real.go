package fs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// DefaultLockTimeout bounds how long [Real.Lock] waits for a contended lock.
const DefaultLockTimeout = 2 * time.Second

// LocksDir is the directory, next to the locked file, that holds lock files.
const LocksDir = ".locks"

const (
	lockPerms = 0o644
	dirPerms  = 0o755
)

// Real implements [FS] using the real filesystem.
//
// All methods are passthroughs to the [os] package except [Real.Exists],
// [Real.WriteFileAtomic] which uses atomic file writes, and [Real.Lock] which
// uses flock(2) on a lock file.
type Real struct {
	// LockTimeout overrides DefaultLockTimeout when positive.
	LockTimeout time.Duration
}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (r *Real) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	err := atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return err
	}

	return os.Chmod(path, perm)
}

// A passthrough wrapper for [os.ReadDir].
func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// A passthrough wrapper for [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists checks if a file exists using [os.Stat].
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// A passthrough wrapper for [os.Remove].
func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

// realLock holds an exclusive flock on a lock file.
type realLock struct {
	path string
	file *os.File
}

func (l *realLock) Close() error {
	if l.file == nil {
		return nil
	}

	// Unlink before unlocking so a waiter that already opened the old inode
	// notices the replacement and retries.
	_ = os.Remove(l.path)
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)

	err := l.file.Close()
	l.file = nil

	return err
}

// Lock takes an exclusive lock for path using "<dir>/.locks/<base>.lock".
//
// Contended locks are polled with LOCK_NB until the timeout expires, which
// returns [os.ErrDeadlineExceeded].
func (r *Real) Lock(path string) (Locker, error) {
	locksDir := filepath.Join(filepath.Dir(path), LocksDir)
	lockPath := filepath.Join(locksDir, filepath.Base(path)+".lock")

	timeout := r.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	for {
		if err := os.MkdirAll(locksDir, dirPerms); err != nil {
			return nil, err
		}

		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, lockPerms)
		if err != nil {
			return nil, err
		}

		err = flockNonBlocking(file)
		if err == nil {
			if sameInode(file, lockPath) {
				return &realLock{path: lockPath, file: file}, nil
			}

			// The lock file was removed or replaced by the previous holder.
			_ = unix.Flock(int(file.Fd()), unix.LOCK_UN)
			_ = file.Close()

			continue
		}

		_ = file.Close()

		if !errors.Is(err, unix.EWOULDBLOCK) {
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, os.ErrDeadlineExceeded
		}

		time.Sleep(backoff)

		backoff = min(backoff*2, 50*time.Millisecond)
	}
}

func flockNonBlocking(file *os.File) error {
	for {
		err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

func sameInode(file *os.File, path string) bool {
	var opened, current unix.Stat_t

	if err := unix.Fstat(int(file.Fd()), &opened); err != nil {
		return false
	}

	if err := unix.Stat(path, &current); err != nil {
		return false
	}

	return opened.Dev == current.Dev && opened.Ino == current.Ino
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
