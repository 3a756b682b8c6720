// Package fs provides the filesystem abstraction used to read, write and lock
// ticket files.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [Real]: production implementation using [os] and flock(2)
//   - [Faulty]: testing implementation that fails chosen operations on chosen paths
//
// Example usage:
//
//	fsys := fs.NewReal()
//	lock, err := fsys.Lock("tickets/TKT-001-login.md")
//	if err != nil {
//	    return err
//	}
//	defer lock.Close()
//
//	data, err := fsys.ReadFile("tickets/TKT-001-login.md")
package fs

import (
	"io"
	"os"
)

// Locker represents a held file lock.
// Call [Locker.Close] to release the lock.
type Locker interface {
	io.Closer
}

// FS defines the filesystem operations the ticket store and linter need.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename so readers never see a partial ticket.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// Lock acquires an exclusive advisory lock for path.
	// Blocks until the lock is acquired or returns an error on timeout.
	Lock(path string) (Locker, error)
}
