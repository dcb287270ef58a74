package index

import (
	"fmt"

	"github.com/google/btree"

	"github.com/hupe1980/gridstore/grid"
	"github.com/hupe1980/gridstore/model"
)

const btreeDegree = 16

// Entry is one interval registration of the horizontal index.
type Entry struct {
	Interval model.Interval
	Grid     *grid.Grid
}

type hEntry struct {
	iv   model.Interval
	grid *grid.Grid
	seq  uint64
}

func hLess(a, b hEntry) bool {
	if a.iv.Begin != b.iv.Begin {
		return a.iv.Begin < b.iv.Begin
	}
	return a.seq < b.seq
}

// HIndex maps half-open TupleID intervals to grids, ordered by interval begin.
//
// Invariant: bounds.Begin <= every entry's Begin and bounds.End >= every
// entry's End; bounds is the empty interval when there are no entries.
type HIndex struct {
	tree   *btree.BTreeG[hEntry]
	seq    uint64
	bounds model.Interval
}

// NewHIndex creates an empty horizontal index.
func NewHIndex() *HIndex {
	return &HIndex{tree: btree.NewG(btreeDegree, hLess)}
}

// Add registers g for iv and widens the bounds.
func (h *HIndex) Add(iv model.Interval, g *grid.Grid) error {
	if iv.Empty() {
		return fmt.Errorf("%w: empty interval %s", model.ErrIllegalArgument, iv)
	}
	if g == nil {
		return fmt.Errorf("%w: nil grid", model.ErrIllegalArgument)
	}
	h.seq++
	h.tree.ReplaceOrInsert(hEntry{iv: iv, grid: g, seq: h.seq})
	h.widen(iv)
	return nil
}

// Extend grows g's entry ending at iv.Begin to cover iv, or adds a new entry
// when g has no adjacent entry.
func (h *HIndex) Extend(iv model.Interval, g *grid.Grid) error {
	if iv.Empty() {
		return fmt.Errorf("%w: empty interval %s", model.ErrIllegalArgument, iv)
	}

	var (
		found hEntry
		ok    bool
	)
	pivot := hEntry{iv: model.Interval{Begin: iv.Begin}, seq: ^uint64(0)}
	h.tree.DescendLessOrEqual(pivot, func(e hEntry) bool {
		if e.grid == g && e.iv.End == iv.Begin {
			found, ok = e, true
			return false
		}
		return true
	})
	if !ok {
		return h.Add(iv, g)
	}

	// Begin and seq are unchanged, so the entry keeps its position.
	found.iv.End = iv.End
	h.tree.ReplaceOrInsert(found)
	h.widen(found.iv)
	return nil
}

func (h *HIndex) widen(iv model.Interval) {
	if h.tree.Len() == 1 {
		h.bounds = iv
		return
	}
	h.bounds.Begin = min(h.bounds.Begin, iv.Begin)
	h.bounds.End = max(h.bounds.End, iv.End)
}

// Query returns every grid whose interval intersects iv, ordered by interval
// begin. A grid with several intersecting entries appears once per entry.
// An empty iv matches nothing.
func (h *HIndex) Query(iv model.Interval) *grid.Cursor {
	c := grid.NewCursor()
	if iv.Empty() || !h.bounds.Intersects(iv) {
		return c
	}
	h.tree.AscendLessThan(hEntry{iv: model.Interval{Begin: iv.End}}, func(e hEntry) bool {
		if e.iv.End > iv.Begin {
			c.Push(e.grid)
		}
		return true
	})
	return c
}

// QueryPoints returns the grids covering any of tids, in argument order.
func (h *HIndex) QueryPoints(tids ...model.TupleID) *grid.Cursor {
	c := grid.NewCursor()
	for _, tid := range tids {
		c.Append(h.Query(model.Point(tid)))
	}
	return c
}

// Contains reports whether any entry covers tid.
func (h *HIndex) Contains(tid model.TupleID) bool {
	return !h.Query(model.Point(tid)).IsEmpty()
}

// RemoveInterval removes every entry whose interval equals iv exactly.
// It returns the number of removed entries.
func (h *HIndex) RemoveInterval(iv model.Interval) int {
	return h.removeIf(func(e hEntry) bool { return e.iv == iv })
}

// RemoveIntersecting removes every entry whose interval contains tid.
// It returns the number of removed entries.
func (h *HIndex) RemoveIntersecting(tid model.TupleID) int {
	return h.removeIf(func(e hEntry) bool { return e.iv.Contains(tid) })
}

// RemoveGrid removes every entry of g. It returns the number of removed entries.
func (h *HIndex) RemoveGrid(g *grid.Grid) int {
	return h.removeIf(func(e hEntry) bool { return e.grid == g })
}

func (h *HIndex) removeIf(match func(hEntry) bool) int {
	var victims []hEntry
	h.tree.Ascend(func(e hEntry) bool {
		if match(e) {
			victims = append(victims, e)
		}
		return true
	})
	for _, e := range victims {
		h.tree.Delete(e)
	}
	if len(victims) > 0 {
		h.recomputeBounds()
	}
	return len(victims)
}

func (h *HIndex) recomputeBounds() {
	h.bounds = model.Interval{}
	first, ok := h.tree.Min()
	if !ok {
		return
	}
	h.bounds = first.iv
	h.tree.Ascend(func(e hEntry) bool {
		h.bounds.End = max(h.bounds.End, e.iv.End)
		return true
	})
}

// Bounds returns [min begin, max end) over all entries, or the empty
// interval when the index is empty.
func (h *HIndex) Bounds() model.Interval { return h.bounds }

// Len returns the number of entries.
func (h *HIndex) Len() int { return h.tree.Len() }

// Entries returns all entries ordered by interval begin, then insertion.
func (h *HIndex) Entries() []Entry {
	out := make([]Entry, 0, h.tree.Len())
	h.tree.Ascend(func(e hEntry) bool {
		out = append(out, Entry{Interval: e.iv, Grid: e.grid})
		return true
	})
	return out
}
