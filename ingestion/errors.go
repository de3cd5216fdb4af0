package ingestion

import (
	"errors"
	"fmt"
)

// Kind classifies an ingestion failure.
type Kind int

const (
	// KindSourceUnreadable: the source file could not be opened or parsed.
	KindSourceUnreadable Kind = iota + 1
	// KindDirCreate: an output directory could not be created.
	KindDirCreate
	// KindSplit: the dataset could not be partitioned.
	KindSplit
	// KindWrite: an output artifact could not be written.
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindSourceUnreadable:
		return "source unreadable"
	case KindDirCreate:
		return "directory creation failed"
	case KindSplit:
		return "split failed"
	case KindWrite:
		return "write failed"
	}
	return "unknown"
}

// Error is the single error type returned by Splitter.Run. Successful writes
// that happened before the failure are left on disk.
type Error struct {
	Kind Kind
	Op   string // operation in progress, e.g. "read source", "write train"
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("ingestion: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("ingestion: %s %q: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries an ingestion Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ie *Error
	return errors.As(err, &ie) && ie.Kind == kind
}

func wrap(kind Kind, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
