package table

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/grid"
	"github.com/hupe1980/gridstore/index"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/schema"
)

// Table is a grid table: a schema, its grids, and the two indexes locating them.
type Table struct {
	mu sync.RWMutex

	schema   *schema.Schema
	opts     options
	fragOpts []fragment.Option
	logger   *slog.Logger

	grids  []*grid.Grid // creation order
	byID   map[model.GridID]*grid.Grid
	vindex *index.VIndex
	hindex *index.HIndex

	parts   [][]model.AttrID
	partOf  []int        // table attribute -> partition
	current []*grid.Grid // open grid per partition

	nextGrid model.GridID
	nextTID  model.TupleID
	deleted  *roaring64.Bitmap
}

// New creates an empty table for s. The schema is sealed.
func New(s *schema.Schema, optFns ...Option) (*Table, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil schema", model.ErrIllegalArgument)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: schema %q has no attributes", model.ErrIllegalArgument, s.Name())
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.capacity <= 0 {
		return nil, fmt.Errorf("%w: grid capacity %d", model.ErrIllegalArgument, opts.capacity)
	}
	if opts.layout != fragment.NSM && opts.layout != fragment.DSM {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupported, opts.layout)
	}

	parts, partOf, err := buildPartitions(s.Len(), opts.partitions)
	if err != nil {
		return nil, err
	}

	fragOpts := slices.Clone(opts.fragOpts)
	if opts.rc != nil {
		fragOpts = append(fragOpts, fragment.WithResourceController(opts.rc))
	}

	s.Seal()

	return &Table{
		schema:   s,
		opts:     opts,
		fragOpts: fragOpts,
		logger:   opts.logger.With("table", s.Name()),
		byID:     make(map[model.GridID]*grid.Grid),
		vindex:   index.NewVIndex(),
		hindex:   index.NewHIndex(),
		parts:    parts,
		partOf:   partOf,
		current:  make([]*grid.Grid, len(parts)),
		deleted:  roaring64.New(),
	}, nil
}

func buildPartitions(n int, parts [][]model.AttrID) ([][]model.AttrID, []int, error) {
	partOf := make([]int, n)
	if len(parts) == 0 {
		all := make([]model.AttrID, n)
		for i := range all {
			all[i] = model.AttrID(i) //nolint:gosec // bounded by schema size
		}
		return [][]model.AttrID{all}, partOf, nil
	}

	for i := range partOf {
		partOf[i] = -1
	}
	out := make([][]model.AttrID, len(parts))
	for p, part := range parts {
		if len(part) == 0 {
			return nil, nil, fmt.Errorf("%w: partition %d is empty", model.ErrIllegalArgument, p)
		}
		for _, a := range part {
			if int(a) >= n {
				return nil, nil, fmt.Errorf("%w: partition %d names attribute %d of %d", model.ErrOutOfBounds, p, a, n)
			}
			if partOf[a] >= 0 {
				return nil, nil, fmt.Errorf("%w: attribute %d is in partitions %d and %d", model.ErrIllegalArgument, a, partOf[a], p)
			}
			partOf[a] = p
		}
		out[p] = slices.Clone(part)
	}
	for a, p := range partOf {
		if p < 0 {
			return nil, nil, fmt.Errorf("%w: attribute %d is in no partition", model.ErrIllegalArgument, a)
		}
	}
	return out, partOf, nil
}

// Name returns the table name, which is the schema name.
func (t *Table) Name() string { return t.schema.Name() }

// Schema returns the sealed table schema.
func (t *Table) Schema() *schema.Schema { return t.schema }

// Layout returns the fragment layout of the table's grids.
func (t *Table) Layout() fragment.Layout { return t.opts.layout }

// Capacity returns the number of rows per grid.
func (t *Table) Capacity() int { return t.opts.capacity }

// Partitions returns the vertical partitions.
func (t *Table) Partitions() [][]model.AttrID {
	out := make([][]model.AttrID, len(t.parts))
	for i, p := range t.parts {
		out[i] = slices.Clone(p)
	}
	return out
}

// Lookup returns the id of the attribute called name.
func (t *Table) Lookup(name string) (model.AttrID, error) {
	a, err := t.schema.AttrByName(name)
	if err != nil {
		return 0, err
	}
	return a.ID, nil
}

// NextTupleID returns the TupleID the next insert will receive.
func (t *Table) NextTupleID() model.TupleID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nextTID
}

// Len returns the number of live (not deleted) tuples.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int(uint64(t.nextTID) - t.deleted.GetCardinality()) //nolint:gosec // tuple counts fit int
}

// Deleted reports whether tid was deleted.
func (t *Table) Deleted(tid model.TupleID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.deleted.Contains(uint64(tid))
}

// NumGrids returns the number of grids.
func (t *Table) NumGrids() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.grids)
}

// Grids returns the grids in creation order.
func (t *Table) Grids() []*grid.Grid {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.grids)
}

// Grid returns the grid with the given id.
func (t *Table) Grid(id model.GridID) (*grid.Grid, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.byID[id]
	return g, ok
}

// VIndex returns the vertical index. It must only be inspected while no writer is active.
// Registrations added or removed directly bypass the exclusive coverage check
// the table applies on insert; later reads report any overlap they cause as
// *model.CorruptionError.
func (t *Table) VIndex() *index.VIndex { return t.vindex }

// HIndex returns the horizontal index. It must only be inspected while no writer is active.
// Entries added or removed directly bypass the exclusive coverage check the
// table applies on insert; later reads report any overlap they cause as
// *model.CorruptionError.
func (t *Table) HIndex() *index.HIndex { return t.hindex }

// placement records where a run of TupleIDs of one partition was stored.
type placement struct {
	grid *grid.Grid
	row  int
	span model.Interval
}

// step is one planned run of TupleIDs stored in a single grid.
type step struct {
	grid  *grid.Grid
	fresh bool
	span  model.Interval
}

// allocate assigns n fresh TupleIDs to grids of every partition and registers
// them in both indexes.
func (t *Table) allocate(n int) (model.Interval, [][]placement, error) {
	if n <= 0 {
		return model.Interval{}, nil, fmt.Errorf("%w: insert of %d tuples", model.ErrIllegalArgument, n)
	}
	span := model.Span(t.nextTID, n)
	if span.End < span.Begin {
		return model.Interval{}, nil, fmt.Errorf("%w: tuple id space exhausted", model.ErrOutOfBounds)
	}

	// Grids are created and every run is checked for exclusive coverage
	// before the table or its indexes change, so a failed allocation leaves
	// the table untouched.
	lastGrid := t.nextGrid
	fresh := make([][]*grid.Grid, len(t.parts))
	rollback := func() {
		t.discard(fresh)
		t.nextGrid = lastGrid
	}

	plan := make([][]step, len(t.parts))
	for p := range t.parts {
		cur := t.current[p]
		free := 0
		if cur != nil {
			free = cur.Cap() - cur.Len()
		}
		for tid := span.Begin; tid < span.End; {
			isFresh := false
			if free == 0 {
				g, err := t.newGrid(p)
				if err != nil {
					rollback()
					return model.Interval{}, nil, err
				}
				fresh[p] = append(fresh[p], g)
				cur, free, isFresh = g, g.Cap(), true
			}
			k := min(int(span.End-tid), free) //nolint:gosec // bounded by n
			plan[p] = append(plan[p], step{grid: cur, fresh: isFresh, span: model.Span(tid, k)})
			free -= k
			tid += model.TupleID(k) //nolint:gosec // k <= n
		}
	}

	for p, attrs := range t.parts {
		for _, st := range plan[p] {
			if err := t.checkExclusive(st.span, attrs); err != nil {
				rollback()
				return model.Interval{}, nil, err
			}
		}
	}

	t.nextTID = span.End

	places := make([][]placement, len(t.parts))
	for p, attrs := range t.parts {
		for _, st := range plan[p] {
			g := st.grid
			if st.fresh {
				t.addGrid(p, g)
			}

			k := int(st.span.Len()) //nolint:gosec // bounded by n
			tids := make([]model.TupleID, k)
			for i := range tids {
				tids[i] = st.span.Begin + model.TupleID(i) //nolint:gosec // i < k
			}
			tp, err := g.Insert(tids, k)
			if err != nil {
				return model.Interval{}, nil, fmt.Errorf("%w: %w", model.ErrInternal, err)
			}
			if err := t.hindex.Extend(st.span, g); err != nil {
				return model.Interval{}, nil, fmt.Errorf("%w: %w", model.ErrInternal, err)
			}
			for _, a := range attrs {
				t.vindex.Add(a, g)
			}

			places[p] = append(places[p], placement{grid: g, row: tp.Row(), span: st.span})
		}
	}
	return span, places, nil
}

func (t *Table) newGrid(p int) (*grid.Grid, error) {
	t.nextGrid++
	g, err := grid.New(t.nextGrid, t.schema, t.parts[p], t.opts.capacity, t.opts.layout, t.fragOpts...)
	if err != nil {
		return nil, fmt.Errorf("table %q: new grid: %w", t.Name(), err)
	}
	return g, nil
}

func (t *Table) discard(fresh [][]*grid.Grid) {
	for _, gs := range fresh {
		for _, g := range gs {
			_ = g.Free()
		}
	}
}

func (t *Table) addGrid(p int, g *grid.Grid) {
	t.grids = append(t.grids, g)
	t.byID[g.ID()] = g
	t.current[p] = g
	t.logger.Debug("grid opened",
		"grid", g.ID(),
		"partition", p,
		"capacity", g.Cap(),
		"layout", g.Fragment().Layout().String(),
	)
}

// checkExclusive fails if any grid already covers part of iv for one of attrs.
func (t *Table) checkExclusive(iv model.Interval, attrs []model.AttrID) error {
	for _, a := range attrs {
		if found := t.covering(iv, a); len(found) > 0 {
			return t.corruption(iv.Begin, a, len(found)+1)
		}
	}
	return nil
}

// covering joins the horizontal index hits for iv with the vertical index
// registrations of attr.
func (t *Table) covering(iv model.Interval, attr model.AttrID) []*grid.Grid {
	c := t.hindex.Query(iv)
	defer c.Close()
	c.Dedup()

	var out []*grid.Grid
	for g := range c.All() {
		if t.vindex.Has(attr, g) {
			out = append(out, g)
		}
	}
	return out
}

func (t *Table) corruption(tid model.TupleID, attr model.AttrID, matches int) error {
	err := &model.CorruptionError{Table: t.Name(), TupleID: tid, Attr: attr, Matches: matches}
	if a, aerr := t.schema.Attr(attr); aerr == nil {
		err.AttrName = a.Name
	}
	t.logger.Error("exclusive grid coverage violated",
		"tuple", tid,
		"attr", attr,
		"attr_name", err.AttrName,
		"matches", matches,
	)
	return err
}

// resolve returns the single grid covering (tid, attr).
func (t *Table) resolve(tid model.TupleID, attr model.AttrID) (*grid.Grid, error) {
	if int(attr) >= t.schema.Len() {
		return nil, fmt.Errorf("%w: attribute %d of table %q with %d attributes", model.ErrOutOfBounds, attr, t.Name(), t.schema.Len())
	}
	if tid >= t.nextTID {
		return nil, fmt.Errorf("%w: tuple %d of table %q with %d tuples", model.ErrOutOfBounds, tid, t.Name(), t.nextTID)
	}
	if t.deleted.Contains(uint64(tid)) {
		return nil, fmt.Errorf("%w: tuple %d of table %q was deleted", model.ErrNotFound, tid, t.Name())
	}

	found := t.covering(model.Point(tid), attr)
	if len(found) != 1 {
		return nil, t.corruption(tid, attr, len(found))
	}
	return found[0], nil
}

// open resolves (tid, attr) and returns a field cursor on it.
func (t *Table) open(tid model.TupleID, attr model.AttrID) (*grid.Grid, *fragment.Field, error) {
	g, err := t.resolve(tid, attr)
	if err != nil {
		return nil, nil, err
	}
	row, ok := g.Local(tid)
	if !ok {
		return nil, nil, fmt.Errorf("%w: grid %d is indexed for tuple %d but does not store it", model.ErrCorrupted, g.ID(), tid)
	}
	local, ok := g.LocalAttr(attr)
	if !ok {
		return nil, nil, fmt.Errorf("%w: grid %d is indexed for attribute %d but does not store it", model.ErrCorrupted, g.ID(), attr)
	}
	tp, err := g.Fragment().Open(row)
	if err != nil {
		return nil, nil, err
	}
	f, err := tp.Seek(local)
	if err != nil {
		return nil, nil, err
	}
	return g, f, nil
}

// Resolve returns the id of the grid covering (tid, attr).
func (t *Table) Resolve(tid model.TupleID, attr model.AttrID) (model.GridID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, err := t.resolve(tid, attr)
	if err != nil {
		return 0, err
	}
	return g.ID(), nil
}

// Find returns the grids that store any of attrs and cover part of iv,
// deduplicated, in horizontal index order.
func (t *Table) Find(attrs []model.AttrID, iv model.Interval) *grid.Cursor {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h := t.hindex.Query(iv)
	defer h.Close()
	h.Dedup()

	out := grid.NewCursor()
	for g := range h.All() {
		for _, a := range attrs {
			if t.vindex.Has(a, g) {
				out.Push(g)
				break
			}
		}
	}
	return out
}

// FreeGrid releases a grid whose tuples are all deleted and removes it from
// both indexes.
func (t *Table) FreeGrid(id model.GridID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("%w: grid %d in table %q", model.ErrNotFound, id, t.Name())
	}
	if live := g.Live(); live > 0 {
		return fmt.Errorf("%w: grid %d still holds %d live tuples", model.ErrIllegalArgument, id, live)
	}

	p := t.partOf[g.TableAttr(0)]
	if t.current[p] == g {
		t.current[p] = nil
	}
	t.hindex.RemoveGrid(g)
	for _, a := range g.Attrs() {
		t.vindex.Unregister(a, g)
	}
	t.grids = slices.DeleteFunc(t.grids, func(x *grid.Grid) bool { return x == g })
	delete(t.byID, id)

	rows := g.Len()
	if err := g.Free(); err != nil {
		return err
	}
	t.logger.Info("grid freed", "grid", id, "rows", rows)
	return nil
}

// Close releases every grid. The table must not be used afterwards.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var first error
	for _, g := range t.grids {
		if err := g.Free(); err != nil && first == nil {
			first = err
		}
	}
	t.grids = nil
	t.byID = map[model.GridID]*grid.Grid{}
	t.vindex = index.NewVIndex()
	t.hindex = index.NewHIndex()
	clear(t.current)
	return first
}
