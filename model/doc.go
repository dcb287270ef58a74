// Package model defines core types used throughout gridstore.
//
// # Identity Types
//
//   - TupleID: table-scoped, dense row identifier (uint64)
//   - AttrID: schema-local attribute identifier (uint32)
//   - GridID: table-scoped grid identifier (uint64)
//   - Interval: half-open TupleID range [Begin, End)
//
// # Errors
//
// All packages wrap the sentinel errors declared here, so callers can test
// for a category with errors.Is regardless of which layer failed:
//
//	if errors.Is(err, model.ErrNoFreeSpace) {
//	    // open another grid
//	}
package model
