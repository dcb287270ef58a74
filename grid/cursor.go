package grid

import (
	"iter"
	"slices"
)

// Cursor is an ordered sequence of grid references with its own read position.
// Cursors are owned by the caller; indexes never keep them.
type Cursor struct {
	grids  []*Grid
	pos    int
	closed bool
}

// NewCursor returns a cursor holding the given grids in order.
func NewCursor(grids ...*Grid) *Cursor {
	return &Cursor{grids: slices.Clone(grids)}
}

// Push appends one grid.
func (c *Cursor) Push(g *Grid) {
	if c.closed {
		return
	}
	c.grids = append(c.grids, g)
}

// Append concatenates the contents of other.
func (c *Cursor) Append(other *Cursor) {
	if c.closed || other == nil {
		return
	}
	c.grids = append(c.grids, other.grids...)
}

// Dedup removes repeated grid references, keeping the first occurrence of each.
// The read position is reset.
func (c *Cursor) Dedup() {
	seen := make(map[*Grid]struct{}, len(c.grids))
	out := c.grids[:0]
	for _, g := range c.grids {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	clear(c.grids[len(out):])
	c.grids = out
	c.pos = 0
}

// Next returns the next grid in insertion order, or false when exhausted.
func (c *Cursor) Next() (*Grid, bool) {
	if c.closed || c.pos >= len(c.grids) {
		return nil, false
	}
	g := c.grids[c.pos]
	c.pos++
	return g, true
}

// Rewind resets the read position.
func (c *Cursor) Rewind() { c.pos = 0 }

// Len returns the number of grid references.
func (c *Cursor) Len() int { return len(c.grids) }

// IsEmpty reports whether the cursor holds no grids.
func (c *Cursor) IsEmpty() bool { return len(c.grids) == 0 }

// Grids returns a copy of the grid references.
func (c *Cursor) Grids() []*Grid { return slices.Clone(c.grids) }

// All iterates over all grids independent of the read position.
func (c *Cursor) All() iter.Seq[*Grid] {
	return func(yield func(*Grid) bool) {
		for _, g := range c.grids {
			if !yield(g) {
				return
			}
		}
	}
}

// Close drops the references. A closed cursor is empty.
func (c *Cursor) Close() {
	c.grids = nil
	c.pos = 0
	c.closed = true
}
