package model

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalArgument is returned for nil, zero or malformed parameters.
	ErrIllegalArgument = errors.New("illegal argument")

	// ErrOutOfBounds is returned when a row, attribute or tuple index is beyond its valid range.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrNoFreeSpace is returned when a fragment or grid is at capacity.
	ErrNoFreeSpace = errors.New("no free space")

	// ErrCorrupted is returned when a structural invariant is violated.
	ErrCorrupted = errors.New("corrupted")

	// ErrUnsupported is returned for layouts, types or variants that are not implemented.
	ErrUnsupported = errors.New("unsupported")

	// ErrInternal guards unreachable states.
	ErrInternal = errors.New("internal error")

	// ErrNotFound is returned when a table, grid or tuple does not exist or was deleted.
	ErrNotFound = errors.New("not found")
)

// CorruptionError reports a violation of exclusive grid coverage: a
// (TupleID, attribute) pair resolved to zero or more than one grid.
//
// It unwraps to ErrCorrupted.
type CorruptionError struct {
	Table    string
	TupleID  TupleID
	Attr     AttrID
	AttrName string
	Matches  int
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupted: table %q tuple %d attribute %d (%s) covered by %d grids, want exactly 1",
		e.Table, e.TupleID, e.Attr, e.AttrName, e.Matches)
}

func (e *CorruptionError) Unwrap() error { return ErrCorrupted }
