package table

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/grid"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/resource"
	"github.com/hupe1980/gridstore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersSchema() *schema.Schema {
	return schema.MustNew("users",
		schema.Scalar("id", schema.TypeUint64),
		schema.Char("name", 16),
		schema.Scalar("flag", schema.TypeBool),
	)
}

func newTable(t *testing.T, opts ...Option) *Table {
	t.Helper()
	tbl, err := New(usersSchema(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func gridIDs(c *grid.Cursor) []model.GridID {
	var ids []model.GridID
	for g := range c.All() {
		ids = append(ids, g.ID())
	}
	return ids
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	empty, err := schema.New("empty")
	require.NoError(t, err)
	_, err = New(empty)
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = New(usersSchema(), WithCapacity(0))
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = New(usersSchema(), WithLayout(fragment.Layout(9)))
	assert.ErrorIs(t, err, model.ErrUnsupported)

	s := usersSchema()
	tbl, err := New(s)
	require.NoError(t, err)
	assert.True(t, s.Sealed())
	assert.Equal(t, "users", tbl.Name())
	assert.Equal(t, DefaultCapacity, tbl.Capacity())
	assert.Equal(t, fragment.NSM, tbl.Layout())
	assert.Equal(t, [][]model.AttrID{{0, 1, 2}}, tbl.Partitions())

	_, err = s.Add(schema.Scalar("late", schema.TypeInt8))
	assert.ErrorIs(t, err, model.ErrIllegalArgument)
}

func TestNew_Partitions(t *testing.T) {
	tests := []struct {
		name  string
		parts [][]model.AttrID
		want  error
	}{
		{"empty partition", [][]model.AttrID{{0, 1, 2}, {}}, model.ErrIllegalArgument},
		{"unknown attribute", [][]model.AttrID{{0, 1, 2, 7}}, model.ErrOutOfBounds},
		{"duplicate attribute", [][]model.AttrID{{0, 1}, {1, 2}}, model.ErrIllegalArgument},
		{"missing attribute", [][]model.AttrID{{0, 1}}, model.ErrIllegalArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(usersSchema(), WithPartitions(tt.parts...))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTable_CapacityOverflow(t *testing.T) {
	for _, layout := range []fragment.Layout{fragment.NSM, fragment.DSM} {
		t.Run(layout.String(), func(t *testing.T) {
			tbl := newTable(t, WithCapacity(4), WithLayout(layout))

			for i := range 4 {
				ids, err := tbl.Insert([]any{i + 1, "Hello", true})
				require.NoError(t, err)
				assert.Equal(t, []model.TupleID{model.TupleID(i)}, ids)
			}
			require.Equal(t, 1, tbl.NumGrids())
			g1 := tbl.Grids()[0]
			assert.Equal(t, []model.Interval{{Begin: 0, End: 4}}, g1.Coverage())

			ids, err := tbl.Insert([]any{5, "Next", false})
			require.NoError(t, err)
			assert.Equal(t, []model.TupleID{4}, ids)
			require.Equal(t, 2, tbl.NumGrids())
			g2 := tbl.Grids()[1]
			assert.Equal(t, []model.Interval{{Begin: 4, End: 5}}, g2.Coverage())

			c := tbl.HIndex().Query(model.Interval{Begin: 0, End: 5})
			c.Dedup()
			assert.Equal(t, []model.GridID{g1.ID(), g2.ID()}, gridIDs(c))

			name, err := tbl.ReadValue(4, 1)
			require.NoError(t, err)
			assert.Equal(t, "Next", name)

			flag, err := tbl.ReadValue(4, 2)
			require.NoError(t, err)
			assert.Equal(t, false, flag)

			id, err := tbl.ReadValue(2, 0)
			require.NoError(t, err)
			assert.Equal(t, uint64(3), id)

			empty := tbl.VIndex().Query()
			assert.True(t, empty.IsEmpty())
		})
	}
}

func TestTable_BatchInsert(t *testing.T) {
	tbl := newTable(t, WithCapacity(4))

	rows := make([][]any, 10)
	for i := range rows {
		rows[i] = []any{uint64(i), "row", i%2 == 0}
	}
	ids, err := tbl.Insert(rows...)
	require.NoError(t, err)
	require.Len(t, ids, 10)
	assert.Equal(t, model.TupleID(10), tbl.NextTupleID())
	assert.Equal(t, 10, tbl.Len())

	var coverage []model.Interval
	for _, g := range tbl.Grids() {
		coverage = append(coverage, g.Coverage()...)
	}
	assert.Equal(t, []model.Interval{{Begin: 0, End: 4}, {Begin: 4, End: 8}, {Begin: 8, End: 10}}, coverage)

	// Exclusive coverage: exactly one grid per (tuple, attribute).
	for tid := range model.TupleID(10) {
		for a := range model.AttrID(3) {
			_, err := tbl.Resolve(tid, a)
			require.NoError(t, err)
		}
		v, err := tbl.ReadValue(tid, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(tid), v)
	}

	// Fill the last grid, then spill into a new one.
	_, err = tbl.Insert([]any{10, "a", true}, []any{11, "b", true}, []any{12, "c", true})
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.NumGrids())
	assert.Equal(t, []model.Interval{{Begin: 8, End: 12}}, tbl.Grids()[2].Coverage())
	assert.Equal(t, 4, tbl.HIndex().Len(), "one hindex entry per grid")
}

func TestTable_InsertValidation(t *testing.T) {
	tbl := newTable(t, WithCapacity(4))

	_, err := tbl.Insert()
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = tbl.Insert([]any{1, "short"})
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = tbl.Insert([]any{1, "ok", true}, []any{-1, "neg", true})
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = tbl.Insert([]any{1, "this name is far too long", true})
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	assert.Equal(t, model.TupleID(0), tbl.NextTupleID(), "failed inserts allocate nothing")
	assert.Equal(t, 0, tbl.NumGrids())
}

func TestTable_Nulls(t *testing.T) {
	tbl := newTable(t)

	_, err := tbl.Insert([]any{1, nil, true})
	require.NoError(t, err)

	v, err := tbl.Read(0, 1)
	require.NoError(t, err)
	assert.True(t, v.Null)
	assert.Equal(t, fragment.NullString, v.String())

	name, err := tbl.ReadValue(0, 1)
	require.NoError(t, err)
	assert.Nil(t, name)

	require.NoError(t, tbl.Write(0, 1, "Ann"))
	name, err = tbl.ReadValue(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	require.NoError(t, tbl.Write(0, 2, nil))
	flag, err := tbl.Read(0, 2)
	require.NoError(t, err)
	assert.True(t, flag.Null)
}

func TestTable_Bounds(t *testing.T) {
	tbl := newTable(t)
	_, err := tbl.Insert([]any{1, "a", true})
	require.NoError(t, err)

	_, err = tbl.Read(1, 0)
	assert.ErrorIs(t, err, model.ErrOutOfBounds)

	_, err = tbl.Read(0, 3)
	assert.ErrorIs(t, err, model.ErrOutOfBounds)

	err = tbl.Write(0, 0, "not a number")
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	err = tbl.WriteRaw(0, 0, []byte{1, 2})
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = tbl.Lookup("missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	id, err := tbl.Lookup("flag")
	require.NoError(t, err)
	assert.Equal(t, model.AttrID(2), id)
}

func TestTable_Corruption(t *testing.T) {
	tbl := newTable(t, WithCapacity(2))
	_, err := tbl.Insert([]any{1, "a", true}, []any{2, "b", false}, []any{3, "c", true})
	require.NoError(t, err)

	grids := tbl.Grids()
	require.Len(t, grids, 2)

	// Register grid 2 as a second owner of tuple 0.
	require.NoError(t, tbl.HIndex().Add(model.Point(0), grids[1]))

	_, err = tbl.Read(0, 1)
	require.ErrorIs(t, err, model.ErrCorrupted)

	var ce *model.CorruptionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "users", ce.Table)
	assert.Equal(t, model.TupleID(0), ce.TupleID)
	assert.Equal(t, model.AttrID(1), ce.Attr)
	assert.Equal(t, "name", ce.AttrName)
	assert.Equal(t, 2, ce.Matches)

	// Unregistered attribute: no grid matches.
	tbl.VIndex().Unregister(2, grids[1])
	_, err = tbl.Read(2, 2)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.Matches)
}

func TestTable_InsertDetectsOverlap(t *testing.T) {
	tbl := newTable(t, WithCapacity(4))
	_, err := tbl.Insert([]any{1, "a", true})
	require.NoError(t, err)

	g := tbl.Grids()[0]
	require.NoError(t, tbl.HIndex().Add(model.Point(1), g))

	_, err = tbl.Insert([]any{2, "b", true})
	var ce *model.CorruptionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, model.TupleID(1), ce.TupleID)
	assert.Equal(t, model.TupleID(1), tbl.NextTupleID())
	assert.Equal(t, 1, tbl.NumGrids())
	assert.Equal(t, []model.TupleID{0}, g.CoveredTuples())
}

func TestTable_RejectedInsertLeavesTableUnchanged(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	tbl := newTable(t, WithCapacity(1), WithResourceController(rc))
	_, err := tbl.Insert([]any{1, "a", true})
	require.NoError(t, err)
	usage := rc.MemoryUsage()

	g := tbl.Grids()[0]
	require.NoError(t, tbl.HIndex().Add(model.Point(2), g))
	hlen := tbl.HIndex().Len()

	_, err = tbl.Insert([]any{2, "b", true}, []any{3, "c", true})
	require.ErrorIs(t, err, model.ErrCorrupted)

	assert.Equal(t, model.TupleID(1), tbl.NextTupleID())
	assert.Equal(t, 1, tbl.NumGrids())
	assert.Equal(t, hlen, tbl.HIndex().Len())
	assert.Equal(t, usage, rc.MemoryUsage())

	require.Equal(t, 1, tbl.HIndex().RemoveInterval(model.Point(2)))
	ids, err := tbl.Insert([]any{2, "b", true})
	require.NoError(t, err)
	assert.Equal(t, []model.TupleID{1}, ids)
	g2, ok := tbl.Grid(2)
	require.True(t, ok)
	assert.Equal(t, []model.TupleID{1}, g2.CoveredTuples())
}

func TestTable_VerticalPartitions(t *testing.T) {
	tbl := newTable(t, WithCapacity(2), WithPartitions([]model.AttrID{0}, []model.AttrID{1, 2}))

	_, err := tbl.Insert([]any{1, "a", true}, []any{2, "b", false}, []any{3, "c", true})
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.NumGrids())

	for tid := range model.TupleID(3) {
		g0, err := tbl.Resolve(tid, 0)
		require.NoError(t, err)
		g1, err := tbl.Resolve(tid, 1)
		require.NoError(t, err)
		g2, err := tbl.Resolve(tid, 2)
		require.NoError(t, err)
		assert.NotEqual(t, g0, g1)
		assert.Equal(t, g1, g2)
	}

	row, err := tbl.ReadRow(2)
	require.NoError(t, err)
	require.Len(t, row, 3)
	assert.Equal(t, "3", row[0].String())
	assert.Equal(t, "c", row[1].String())
	assert.Equal(t, "true", row[2].String())

	c := tbl.Find([]model.AttrID{0}, model.Interval{Begin: 0, End: 3})
	assert.Equal(t, 2, c.Len())
	c = tbl.Find([]model.AttrID{0, 1}, model.Interval{Begin: 2, End: 3})
	assert.Equal(t, 2, c.Len())

	// A tuple field crosses grids transparently.
	tuple := Tuple{table: tbl, id: 1}
	values, err := tuple.Values()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "b", "false"}, []string{values[0].String(), values[1].String(), values[2].String()})
}

func TestTable_DeleteAndFreeGrid(t *testing.T) {
	tbl := newTable(t, WithCapacity(2))
	_, err := tbl.Insert([]any{1, "a", true}, []any{2, "b", true}, []any{3, "c", true}, []any{4, "d", true})
	require.NoError(t, err)
	grids := tbl.Grids()
	require.Len(t, grids, 2)

	err = tbl.Delete(0, 9)
	assert.ErrorIs(t, err, model.ErrOutOfBounds)
	assert.Equal(t, 4, tbl.Len(), "nothing deleted on failure")

	require.NoError(t, tbl.Delete(0))
	assert.True(t, tbl.Deleted(0))
	assert.Equal(t, 3, tbl.Len())

	_, err = tbl.Read(0, 0)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, tbl.Delete(0), model.ErrNotFound)

	err = tbl.FreeGrid(grids[0].ID())
	assert.ErrorIs(t, err, model.ErrIllegalArgument, "grid still holds tuple 1")

	require.NoError(t, tbl.Delete(1))
	require.NoError(t, tbl.FreeGrid(grids[0].ID()))
	assert.Equal(t, 1, tbl.NumGrids())
	assert.Equal(t, 1, tbl.HIndex().Len())
	assert.False(t, tbl.VIndex().Has(0, grids[0]))

	assert.ErrorIs(t, tbl.FreeGrid(grids[0].ID()), model.ErrNotFound)

	_, err = tbl.Insert([]any{5, "e", true})
	require.NoError(t, err)
	assert.Equal(t, model.TupleID(5), tbl.NextTupleID(), "tuple ids are never reused")
	v, err := tbl.ReadValue(3, 1)
	require.NoError(t, err)
	assert.Equal(t, "d", v)
}

func TestTable_MemoryBudget(t *testing.T) {
	// Each grid needs 4 rows × 25 bytes.
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 150})
	tbl := newTable(t, WithCapacity(4), WithResourceController(rc))

	rows := make([][]any, 5)
	for i := range rows {
		rows[i] = []any{i, "x", true}
	}
	_, err := tbl.Insert(rows...)
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, 0, tbl.NumGrids())
	assert.Equal(t, model.TupleID(0), tbl.NextTupleID())
	assert.Equal(t, int64(0), rc.MemoryUsage())

	_, err = tbl.Insert(rows[:4]...)
	require.NoError(t, err)
	assert.Equal(t, int64(100), rc.MemoryUsage())
}

func TestTable_MemoryWait(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	row := []any{1, "x", true}

	owner := newTable(t, WithCapacity(4), WithResourceController(rc))
	_, err := owner.Insert(row)
	require.NoError(t, err)

	impatient := newTable(t, WithCapacity(4), WithResourceController(rc), WithMemoryWait(10*time.Millisecond))
	_, err = impatient.Insert(row)
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, 0, impatient.NumGrids())

	patient := newTable(t, WithCapacity(4), WithResourceController(rc), WithMemoryWait(10*time.Second))
	done := make(chan error, 1)
	go func() {
		_, err := patient.Insert(row)
		done <- err
	}()

	require.NoError(t, owner.Close())
	require.NoError(t, <-done)
	assert.Equal(t, 1, patient.NumGrids())
	assert.Equal(t, int64(100), rc.MemoryUsage())
}

func TestTable_Reserve(t *testing.T) {
	tbl := newTable(t, WithCapacity(4), WithLayout(fragment.DSM))

	_, err := tbl.Reserve(0)
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	c, err := tbl.Reserve(2)
	require.NoError(t, err)
	assert.Equal(t, []model.TupleID{0, 1}, c.IDs())

	for tuple, ok := c.Next(); ok; tuple, ok = c.Next() {
		f, err := tuple.Field()
		require.NoError(t, err)
		require.NoError(t, f.Set(uint64(tuple.ID())*10))
		ok, err := f.Next()
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, f.Set("reserved"))
		ok, err = f.Next()
		require.NoError(t, err)
		require.True(t, ok)
		f.SetNull()
		ok, err = f.Next()
		require.NoError(t, err)
		assert.False(t, ok)
	}

	c.Rewind()
	tuple, ok := c.Next()
	require.True(t, ok)
	values, err := tuple.Values()
	require.NoError(t, err)
	assert.Equal(t, "0", values[0].String())
	assert.Equal(t, "reserved", values[1].String())
	assert.True(t, values[2].Null)

	v, err := tbl.ReadValue(1, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
}

func TestTable_TupleFieldWrite(t *testing.T) {
	tbl := newTable(t)
	_, err := tbl.Insert([]any{1, nil, true})
	require.NoError(t, err)

	tuple, ok := tbl.Cursor(0).Next()
	require.True(t, ok)
	field, err := tuple.Seek(1)
	require.NoError(t, err)
	assert.True(t, field.IsNull())

	require.NoError(t, field.Write([]byte("Bob"), true))
	assert.Equal(t, model.AttrID(2), field.Attr())
	assert.Equal(t, "true", field.String())

	name, err := tbl.ReadValue(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)

	_, err = tuple.Seek(5)
	assert.ErrorIs(t, err, model.ErrOutOfBounds)
}

func TestTable_Melt(t *testing.T) {
	tbl := newTable(t, WithCapacity(2), WithPartitions([]model.AttrID{0, 2}, []model.AttrID{1}))

	_, _, err := tbl.Melt()
	assert.ErrorIs(t, err, model.ErrIllegalArgument)

	_, err = tbl.Insert([]any{1, "a", true}, []any{2, nil, false}, []any{3, "c", true})
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(0))

	frag, tids, err := tbl.Melt(1, 0)
	require.NoError(t, err)
	defer frag.Dispose() //nolint:errcheck

	assert.Equal(t, []model.TupleID{1, 2}, tids)
	assert.Equal(t, fragment.NSM, frag.Layout())
	assert.Equal(t, 2, frag.Len())
	assert.Equal(t, "name", frag.Schema().Attrs()[0].Name)

	tp, err := frag.Open(0)
	require.NoError(t, err)
	assert.True(t, tp.IsNull(0))
	f, err := tp.Seek(1)
	require.NoError(t, err)
	assert.Equal(t, "2", f.String())

	tp, err = frag.Open(1)
	require.NoError(t, err)
	assert.Equal(t, "c", tp.Field().String())
}

func TestTable_Snapshot(t *testing.T) {
	tbl := newTable(t, WithCapacity(3), WithPartitions([]model.AttrID{0, 2}, []model.AttrID{1}))
	_, err := tbl.Insert([]any{1, "a", true}, []any{2, nil, false}, []any{3, "c", true})
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(0))

	snap := tbl.Snapshot()
	assert.Equal(t, model.TupleID(3), snap.Tuples)
	require.Len(t, snap.Columns, 3)
	assert.Len(t, snap.Columns[0], 3*8)
	assert.Len(t, snap.Columns[1], 3*16)
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0}, snap.Columns[0][8:16])
	assert.Equal(t, []uint64{1}, snap.Nulls[1].ToArray())
	assert.True(t, snap.Nulls[0].IsEmpty())
	assert.Equal(t, []uint64{0}, snap.Tombstones.ToArray())

	require.NoError(t, tbl.Delete(1))
	assert.Equal(t, []uint64{0}, snap.Tombstones.ToArray(), "snapshot is a copy")
}

func TestTable_SnapshotDuringInserts(t *testing.T) {
	tbl := newTable(t, WithCapacity(16))
	_, err := tbl.Insert([]any{0, "seed", true})
	require.NoError(t, err)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i < 20000; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := tbl.Insert([]any{i, "row", i%2 == 0}); err != nil {
				return
			}
		}
	}()

	for range 50 {
		snap := tbl.Snapshot()
		n := int(snap.Tuples)
		assert.Len(t, snap.Columns[0], n*8)
		assert.Len(t, snap.Columns[1], n*16)
		assert.Len(t, snap.Columns[2], n)
	}
	close(stop)
	wg.Wait()
}

func TestTable_ScanCallbackUsesTable(t *testing.T) {
	tbl := newTable(t, WithCapacity(4), WithScanWorkers(1))
	rows := make([][]any, 8)
	for i := range rows {
		rows[i] = []any{i, "n", true}
	}
	_, err := tbl.Insert(rows...)
	require.NoError(t, err)

	var once sync.Once
	err = tbl.Scan(t.Context(), []model.AttrID{0}, func(tid model.TupleID, values []Value) error {
		var werr error
		once.Do(func() {
			// A writer running while the scan is in progress must not block.
			done := make(chan struct{})
			go func() {
				defer close(done)
				werr = tbl.Write(7, 1, "late")
			}()
			<-done
		})
		if werr != nil {
			return werr
		}

		got, err := tbl.ReadValue(tid, 0)
		if err != nil {
			return err
		}
		want, err := values[0].Decode()
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("tuple %d: read %v, scanned %v", tid, got, want)
		}
		return tbl.Write(tid, 1, "seen")
	})
	require.NoError(t, err)

	for tid := range model.TupleID(8) {
		v, err := tbl.ReadValue(tid, 1)
		require.NoError(t, err)
		assert.Equal(t, "seen", v, "tuple %d", tid)
	}
}

func TestTable_ScanSkipsFreedGrid(t *testing.T) {
	// One background slot keeps grids scanned one after another in order.
	rc := resource.NewController(resource.Config{MaxBackgroundWorkers: 1})
	tbl := newTable(t, WithCapacity(2), WithResourceController(rc))
	_, err := tbl.Insert([]any{1, "a", true}, []any{2, "b", true}, []any{3, "c", true})
	require.NoError(t, err)
	second := tbl.Grids()[1]

	var seen []model.TupleID
	err = tbl.Scan(t.Context(), []model.AttrID{0}, func(tid model.TupleID, _ []Value) error {
		seen = append(seen, tid)
		if tid == 0 {
			if err := tbl.Delete(2); err != nil {
				return err
			}
			return tbl.FreeGrid(second.ID())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TupleID{0, 1}, seen)
}

func TestTable_Scan(t *testing.T) {
	tbl := newTable(t, WithCapacity(3), WithScanWorkers(2), WithPartitions([]model.AttrID{0}, []model.AttrID{1, 2}))

	rows := make([][]any, 20)
	for i := range rows {
		rows[i] = []any{i, "s", i%2 == 0}
	}
	_, err := tbl.Insert(rows...)
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(3, 4))

	var (
		mu  sync.Mutex
		sum uint64
		n   int
	)
	err = tbl.Scan(t.Context(), []model.AttrID{0, 2}, func(tid model.TupleID, values []Value) error {
		v, err := values[0].Decode()
		if err != nil {
			return err
		}
		flag, err := values[1].Decode()
		if err != nil {
			return err
		}
		if flag != (tid%2 == 0) {
			return errors.New("flag mismatch")
		}
		mu.Lock()
		sum += v.(uint64)
		n++
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 18, n)
	assert.Equal(t, uint64(190-3-4), sum)

	stop := errors.New("stop")
	err = tbl.Scan(t.Context(), nil, func(model.TupleID, []Value) error { return stop })
	assert.ErrorIs(t, err, stop)

	err = tbl.Scan(t.Context(), []model.AttrID{9}, nil)
	assert.ErrorIs(t, err, model.ErrOutOfBounds)
}

func TestTable_Dumps(t *testing.T) {
	tbl := newTable(t, WithCapacity(2))
	_, err := tbl.Insert([]any{1, "Hello", true}, []any{2, "World", false}, []any{3, "Next", true})
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(1))

	var buf bytes.Buffer
	require.NoError(t, tbl.Dump(&buf, 0, 0))
	want := "" +
		"+---+----+-------+------+\n" +
		"| # | id | name  | flag |\n" +
		"+---+----+-------+------+\n" +
		"| 0 | 1  | Hello | true |\n" +
		"| 2 | 3  | Next  | true |\n" +
		"+---+----+-------+------+\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, tbl.Dump(&buf, 1, 1))
	assert.NotContains(t, buf.String(), "Hello")
	assert.Contains(t, buf.String(), "Next")

	buf.Reset()
	require.NoError(t, tbl.DumpStructure(&buf))
	assert.Contains(t, buf.String(), "char[16]")
	assert.Contains(t, buf.String(), "uint64")

	buf.Reset()
	require.NoError(t, tbl.DumpGrids(&buf))
	assert.Contains(t, buf.String(), "[[0, 2)]")
	assert.Contains(t, buf.String(), "[[2, 3)]")

	buf.Reset()
	require.NoError(t, tbl.DumpIndexes(&buf))
	out := buf.String()
	assert.Contains(t, out, "| attr | grid |")
	assert.Contains(t, out, "| begin | end | grid |")
}
