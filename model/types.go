package model

import (
	"fmt"
)

// TupleID is the global, table-scoped identifier of a logical row.
// TupleIDs are allocated densely starting at 0 and are never reused.
type TupleID uint64

// AttrID is a dense, schema-local attribute identifier.
// Insertion order into a schema equals attribute id order.
type AttrID uint32

// GridID identifies a grid within one table.
type GridID uint64

// MaxTupleID is the largest representable TupleID.
const MaxTupleID = ^TupleID(0)

// Interval is a half-open range [Begin, End) of TupleIDs.
// The zero value is the empty interval.
type Interval struct {
	Begin TupleID
	End   TupleID
}

// Span returns the interval [begin, begin+n).
func Span(begin TupleID, n int) Interval {
	return Interval{Begin: begin, End: begin + TupleID(n)}
}

// Point returns the single-element interval [tid, tid+1).
func Point(tid TupleID) Interval {
	return Interval{Begin: tid, End: tid + 1}
}

// Empty reports whether the interval contains no TupleIDs.
func (iv Interval) Empty() bool {
	return iv.End <= iv.Begin
}

// Len returns the number of TupleIDs in the interval.
func (iv Interval) Len() uint64 {
	if iv.Empty() {
		return 0
	}
	return uint64(iv.End - iv.Begin)
}

// Contains reports whether tid lies in [Begin, End).
func (iv Interval) Contains(tid TupleID) bool {
	return iv.Begin <= tid && tid < iv.End
}

// Intersects reports whether two half-open intervals overlap:
// a.Begin < b.End && b.Begin < a.End.
func (iv Interval) Intersects(other Interval) bool {
	return iv.Begin < other.End && other.Begin < iv.End
}

// String returns a string representation of the Interval.
func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Begin, iv.End)
}
