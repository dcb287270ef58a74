// Package grid binds fragments to table-scoped tuple identifiers.
//
// A Grid owns one fragment holding a vertical slice (a subset of the table's
// attributes) and records, for every occupied fragment row, the TupleID stored
// there. A Cursor is an ordered, dedupable list of grids produced by index
// lookups.
package grid
