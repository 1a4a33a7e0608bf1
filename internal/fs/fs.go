// Package fs provides filesystem abstractions for testing and fault injection.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the tracker performs
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//   - [Faulty]: testing implementation that fails selected operations
//   - [Locker]: flock(2)-based advisory locking built on an [FS]
//
// Example usage:
//
//	fs := fs.NewReal()
//	data, err := fs.ReadFile("tasks.json")
//	if err != nil {
//	    return err
//	}
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// This interface is satisfied by [os.File] and can be used with all
// standard library functions that accept [io.Reader], [io.Writer],
// [io.Seeker], or [io.Closer].
type File interface {
	// Embedded interfaces from [io] package.
	// These provide Read, Write, Close, and Seek methods.
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor. See [os.File.Fd].
	// Used for low-level operations like flock(2).
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error
}

// FS defines the filesystem operations used by the task store, the config
// loader, and the shell history.
//
// Two implementations are provided:
//   - [Real]: production use, wraps the [os] package
//   - [Faulty]: testing use, fails selected operations with preset errors
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// Create creates or truncates a file for writing. See [os.Create].
	Create(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	// Use this for fine-grained control (append, exclusive create, etc).
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename so a crash mid-write never leaves a torn file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if the file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
