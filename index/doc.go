// Package index provides the two grid locators of a table.
//
// VIndex maps attribute ids to the grids storing them. HIndex maps TupleID
// intervals to the grids covering them and keeps the global bounds used to
// prune range queries. Both return caller-owned grid.Cursor values that are
// not deduplicated; call Cursor.Dedup when uniqueness matters.
//
// Neither index is safe for concurrent mutation.
package index
