// Package conv provides checked integer conversions for values read from or
// written to table images (block lengths, tuple counts).
//
// Conversions that are safe by construction (loop indices, bounded row
// numbers) use direct casts instead.
package conv
