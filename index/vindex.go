package index

import (
	"cmp"
	"slices"

	"github.com/hupe1980/gridstore/grid"
	"github.com/hupe1980/gridstore/model"
)

type registration struct {
	grid *grid.Grid
	seq  uint64
}

type vEntry struct {
	regs []registration
	set  map[*grid.Grid]struct{}
}

// VIndex maps attribute ids to grids.
type VIndex struct {
	entries map[model.AttrID]*vEntry
	seq     uint64
}

// NewVIndex creates an empty vertical index.
func NewVIndex() *VIndex {
	return &VIndex{entries: make(map[model.AttrID]*vEntry)}
}

// Add registers g under attr. Adding the same (attr, grid) pair again is a no-op.
func (v *VIndex) Add(attr model.AttrID, g *grid.Grid) {
	e, ok := v.entries[attr]
	if !ok {
		e = &vEntry{set: make(map[*grid.Grid]struct{})}
		v.entries[attr] = e
	}
	if _, dup := e.set[g]; dup {
		return
	}
	e.set[g] = struct{}{}
	v.seq++
	e.regs = append(e.regs, registration{grid: g, seq: v.seq})
}

// Query returns the grids registered under any of attrs, in registration order.
// Unknown attributes contribute nothing.
func (v *VIndex) Query(attrs ...model.AttrID) *grid.Cursor {
	var regs []registration
	seen := make(map[model.AttrID]struct{}, len(attrs))
	for _, attr := range attrs {
		if _, ok := seen[attr]; ok {
			continue
		}
		seen[attr] = struct{}{}
		if e, ok := v.entries[attr]; ok {
			regs = append(regs, e.regs...)
		}
	}
	return cursorOf(regs)
}

// QueryRange returns the grids registered under any attribute in [from, to),
// in registration order.
func (v *VIndex) QueryRange(from, to model.AttrID) *grid.Cursor {
	var regs []registration
	for attr, e := range v.entries {
		if attr >= from && attr < to {
			regs = append(regs, e.regs...)
		}
	}
	return cursorOf(regs)
}

func cursorOf(regs []registration) *grid.Cursor {
	slices.SortFunc(regs, func(a, b registration) int { return cmp.Compare(a.seq, b.seq) })
	c := grid.NewCursor()
	for _, r := range regs {
		c.Push(r.grid)
	}
	return c
}

// Remove unregisters attr and all its grids. It reports whether attr was present.
func (v *VIndex) Remove(attr model.AttrID) bool {
	if _, ok := v.entries[attr]; !ok {
		return false
	}
	delete(v.entries, attr)
	return true
}

// Unregister removes one grid from attr. The attribute key itself stays registered.
func (v *VIndex) Unregister(attr model.AttrID, g *grid.Grid) bool {
	e, ok := v.entries[attr]
	if !ok {
		return false
	}
	if _, ok := e.set[g]; !ok {
		return false
	}
	delete(e.set, g)
	e.regs = slices.DeleteFunc(e.regs, func(r registration) bool { return r.grid == g })
	return true
}

// Has reports whether g is registered under attr.
func (v *VIndex) Has(attr model.AttrID, g *grid.Grid) bool {
	e, ok := v.entries[attr]
	if !ok {
		return false
	}
	_, ok = e.set[g]
	return ok
}

// Contains reports whether attr is registered.
func (v *VIndex) Contains(attr model.AttrID) bool {
	_, ok := v.entries[attr]
	return ok
}

// Grids returns the grids registered under attr, in registration order.
func (v *VIndex) Grids(attr model.AttrID) []*grid.Grid {
	e, ok := v.entries[attr]
	if !ok {
		return nil
	}
	out := make([]*grid.Grid, len(e.regs))
	for i, r := range e.regs {
		out[i] = r.grid
	}
	return out
}

// Keys returns the registered attribute ids in ascending order.
func (v *VIndex) Keys() []model.AttrID {
	keys := make([]model.AttrID, 0, len(v.entries))
	for attr := range v.entries {
		keys = append(keys, attr)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of registered attributes.
func (v *VIndex) Len() int { return len(v.entries) }
