// Package files discovers, reads and transforms the files of a repository.
//
// Paths handed between stages are always relative to the repository root and
// use forward slashes, regardless of the host OS.
package files

import "fmt"

// RawFile is a file as read from disk.
type RawFile struct {
	Path    string
	Content string
}

// ProcessedFile is a file after comment/blank-line removal and numbering.
type ProcessedFile struct {
	Path    string
	Content string
}

// IOError reports a file that could not be read. Collection stops at the
// first one.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
