package gridstore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/resource"
)

var (
	// ErrIllegalArgument is returned for invalid parameters.
	ErrIllegalArgument = model.ErrIllegalArgument
	// ErrOutOfBounds is returned for TupleIDs or attributes outside the allocated range.
	ErrOutOfBounds = model.ErrOutOfBounds
	// ErrNoFreeSpace is returned when storage cannot hold more rows.
	ErrNoFreeSpace = model.ErrNoFreeSpace
	// ErrCorrupted is returned when index state or an image is inconsistent.
	ErrCorrupted = model.ErrCorrupted
	// ErrUnsupported is returned for unknown types, layouts or image versions.
	ErrUnsupported = model.ErrUnsupported
	// ErrInternal is returned for broken internal invariants.
	ErrInternal = model.ErrInternal
	// ErrNotFound is returned for unknown tables, attributes and deleted tuples.
	ErrNotFound = model.ErrNotFound

	// ErrTableExists is returned when a table name is already taken.
	ErrTableExists = errors.New("table already exists")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// CorruptionError carries the diagnostic context of an exclusive coverage
// violation. It matches ErrCorrupted with errors.Is.
type CorruptionError = model.CorruptionError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// A memory budget refusal means the store has no room for another grid.
	if errors.Is(err, resource.ErrMemoryLimitExceeded) && !errors.Is(err, ErrNoFreeSpace) {
		return fmt.Errorf("%w: %w", ErrNoFreeSpace, err)
	}

	return err
}
