// Package fragment implements fixed-capacity physical row storage.
//
// A Fragment holds up to Cap() rows of one schema in one of two layouts:
//
//   - NSM (row-major): a single buffer of Cap × RowSize bytes; attribute a of
//     row r lives at r×RowSize + Offset(a).
//   - DSM (column-major): one region per attribute of Cap × Size(a) bytes;
//     attribute a of row r lives at r×Size(a) inside that region.
//
// Rows are addressed with a Tuplet cursor, and the values inside a row with a
// Field cursor. Null markers and deletion tombstones are kept in side bitmaps,
// never as sentinel values inside the row bytes.
//
// Fragments are not safe for concurrent mutation.
package fragment
