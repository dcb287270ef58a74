// Package gridstore provides an embeddable, schema-typed, in-memory tabular
// storage engine for Go.
//
// Tables are described by a schema of typed attributes. Rows are stored in
// fixed-capacity fragments, either row-major (NSM) or column-major (DSM),
// wrapped in grids that map dense TupleIDs onto fragment rows. A vertical
// index maps attributes to grids and a horizontal index maps TupleID
// intervals to grids; every (tuple, attribute) pair is covered by exactly one
// grid.
//
// # Quick Start
//
//	st, _ := gridstore.Open()
//	defer st.Close()
//
//	s := schema.MustNew("users",
//	    schema.Scalar("id", schema.TypeUint64),
//	    schema.Char("name", 16),
//	    schema.Scalar("flag", schema.TypeBool),
//	)
//	st.CreateTable(ctx, s, table.WithCapacity(1024))
//
//	ids, _ := st.Insert(ctx, "users", []any{1, "Hello", true})
//	name, _ := st.Read(ctx, "users", ids[0], "name")
//
// When a grid is full the table opens a new one; no data is moved.
//
// # Lower-level access
//
// The table package exposes the grid table directly, including tuple and
// field cursors, vertical partitioning, melting into a single fragment,
// parallel scans and console dumps. The fragment, grid and index packages
// can be used on their own.
//
// # Images
//
// Export and Import move a table through a portable, checksummed image with
// LZ4 or ZSTD compressed column blocks (see package image).
//
// # Errors
//
// Every error wraps one of ErrIllegalArgument, ErrOutOfBounds,
// ErrNoFreeSpace, ErrCorrupted, ErrUnsupported, ErrInternal or ErrNotFound.
// Exclusive coverage violations are reported as *CorruptionError with the
// table, tuple, attribute and number of matching grids.
package gridstore
