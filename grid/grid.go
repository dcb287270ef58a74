package grid

import (
	"fmt"
	"slices"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/schema"
)

// Grid is one physical partition of a table.
//
// Invariant: len(CoveredTuples()) == Fragment().Len() <= Fragment().Cap().
type Grid struct {
	id    model.GridID
	frag  fragment.Fragment
	tids  []model.TupleID
	local map[model.TupleID]int

	attrs   []model.AttrID                // grid-local -> table
	attrMap map[model.AttrID]model.AttrID // table -> grid-local
}

// New creates a grid storing the given table attributes. The grid's fragment
// uses a schema holding copies of those attributes, renumbered in the order given.
func New(id model.GridID, table *schema.Schema, attrs []model.AttrID, capacity int, layout fragment.Layout, opts ...fragment.Option) (*Grid, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table schema", model.ErrIllegalArgument)
	}
	attrMap := make(map[model.AttrID]model.AttrID, len(attrs))
	for i, a := range attrs {
		if _, dup := attrMap[a]; dup {
			return nil, fmt.Errorf("%w: attribute %d listed twice for grid %d", model.ErrIllegalArgument, a, id)
		}
		attrMap[a] = model.AttrID(i) //nolint:gosec // bounded by schema size
	}

	sub, err := table.Subset(table.Name(), attrs...)
	if err != nil {
		return nil, err
	}
	frag, err := fragment.New(sub, capacity, layout, opts...)
	if err != nil {
		return nil, err
	}

	return &Grid{
		id:      id,
		frag:    frag,
		tids:    make([]model.TupleID, 0, capacity),
		local:   make(map[model.TupleID]int, capacity),
		attrs:   slices.Clone(attrs),
		attrMap: attrMap,
	}, nil
}

// ID returns the grid id.
func (g *Grid) ID() model.GridID { return g.id }

// Fragment returns the grid's fragment.
func (g *Grid) Fragment() fragment.Fragment { return g.frag }

// Schema returns the grid-local schema.
func (g *Grid) Schema() *schema.Schema { return g.frag.Schema() }

// Len returns the number of occupied rows.
func (g *Grid) Len() int { return len(g.tids) }

// Cap returns the row capacity.
func (g *Grid) Cap() int { return g.frag.Cap() }

// Full reports whether no row can be inserted.
func (g *Grid) Full() bool { return g.frag.Len() >= g.frag.Cap() }

// Attrs returns the table attribute ids stored by the grid, in grid-local order.
func (g *Grid) Attrs() []model.AttrID { return slices.Clone(g.attrs) }

// HasAttr reports whether the grid stores table attribute attr.
func (g *Grid) HasAttr(attr model.AttrID) bool {
	_, ok := g.attrMap[attr]
	return ok
}

// LocalAttr maps a table attribute id to the grid-local attribute id.
func (g *Grid) LocalAttr(attr model.AttrID) (model.AttrID, bool) {
	local, ok := g.attrMap[attr]
	return local, ok
}

// TableAttr maps a grid-local attribute id back to the table attribute id.
func (g *Grid) TableAttr(local model.AttrID) model.AttrID { return g.attrs[local] }

// Insert appends n TupleIDs to the mapping and reserves n fragment rows,
// returning a tuplet at the first new row.
func (g *Grid) Insert(tids []model.TupleID, n int) (*fragment.Tuplet, error) {
	if n <= 0 || len(tids) != n {
		return nil, fmt.Errorf("%w: grid %d insert of %d rows with %d tuple ids", model.ErrIllegalArgument, g.id, n, len(tids))
	}
	seen := make(map[model.TupleID]struct{}, len(tids))
	for _, tid := range tids {
		if _, ok := g.local[tid]; ok {
			return nil, fmt.Errorf("%w: tuple %d already stored in grid %d", model.ErrIllegalArgument, tid, g.id)
		}
		if _, ok := seen[tid]; ok {
			return nil, fmt.Errorf("%w: tuple %d repeated in grid %d insert", model.ErrIllegalArgument, tid, g.id)
		}
		seen[tid] = struct{}{}
	}

	t, err := g.frag.Insert(n)
	if err != nil {
		return nil, fmt.Errorf("grid %d: %w", g.id, err)
	}

	first := len(g.tids)
	g.tids = append(g.tids, tids...)
	for i, tid := range tids {
		g.local[tid] = first + i
	}
	return t, nil
}

// CoveredTuples returns the TupleIDs stored in the grid in row order.
func (g *Grid) CoveredTuples() []model.TupleID { return slices.Clone(g.tids) }

// TupleAt returns the TupleID stored at a grid row.
func (g *Grid) TupleAt(row int) model.TupleID { return g.tids[row] }

// Local returns the fragment row holding tid.
func (g *Grid) Local(tid model.TupleID) (int, bool) {
	row, ok := g.local[tid]
	return row, ok
}

// Covers reports whether tid is stored in the grid.
func (g *Grid) Covers(tid model.TupleID) bool {
	_, ok := g.local[tid]
	return ok
}

// Open returns a tuplet positioned at the row holding tid.
func (g *Grid) Open(tid model.TupleID) (*fragment.Tuplet, error) {
	row, ok := g.local[tid]
	if !ok {
		return nil, fmt.Errorf("%w: tuple %d in grid %d", model.ErrNotFound, tid, g.id)
	}
	return g.frag.Open(row)
}

// Coverage returns the covered TupleIDs as maximal half-open intervals, in row order.
func (g *Grid) Coverage() []model.Interval {
	var out []model.Interval
	for _, tid := range g.tids {
		if n := len(out); n > 0 && out[n-1].End == tid {
			out[n-1].End++
			continue
		}
		out = append(out, model.Point(tid))
	}
	return out
}

// Live returns the number of rows without a tombstone.
func (g *Grid) Live() int {
	return g.frag.Len() - int(g.frag.Marks().DeletedCount()) //nolint:gosec // bounded by capacity
}

// Free releases the fragment. The grid must not be used afterwards.
func (g *Grid) Free() error {
	g.tids = nil
	g.local = nil
	return g.frag.Dispose()
}

// String returns a string representation of the Grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%d: %d/%d rows, %s)", g.id, g.Len(), g.Cap(), g.frag.Layout())
}
