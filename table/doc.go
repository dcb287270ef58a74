// Package table implements the grid table: the entry point for inserting,
// locating, reading and writing the tuples of one logical table.
//
// A table splits its attributes into vertical partitions (by default a single
// partition with every attribute). Each partition fills grids of fixed
// capacity; when the open grid of a partition is full, a new grid is created.
// The vertical index (attribute → grids) and horizontal index (TupleID
// interval → grids) are maintained together with every insert, so that each
// (TupleID, attribute) pair is covered by exactly one grid. A lookup that finds
// zero or several covering grids fails with a *model.CorruptionError.
//
// # Concurrency
//
// Table methods are safe for concurrent use: one RWMutex per table guards
// inserts, deletes, writes and index mutation exclusively and resolve+read
// paths shared. The cursor API (Tuple, TupleField, TupleCursor) is the
// low-level path and is not synchronized; callers must not run it
// concurrently with writers on the same table.
package table
