// Package testutil provides testing utilities for gridstore.
//
// This package is intended for use in tests and benchmarks only.
// It generates reproducible random rows for a schema.
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.Rows(s, 100, 0.1) // 10% nulls
package testutil
