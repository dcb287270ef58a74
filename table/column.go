package table

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/schema"
)

// column returns the encoded values of a for every allocated TupleID in
// TupleID order, together with the TupleIDs whose value is null. Values of
// deleted tuples are included as stored. The caller holds the read lock.
func (t *Table) column(a schema.Attribute) ([]byte, *roaring64.Bitmap) {
	size := a.Size()
	out := make([]byte, int(t.nextTID)*size) //nolint:gosec // bounded by allocated rows
	nulls := roaring64.New()

	var scratch []byte
	for _, g := range t.vindex.Grids(a.ID) {
		local, _ := g.LocalAttr(a.ID)
		frag := g.Fragment()
		scratch = fragment.AppendColumn(scratch[:0], frag, local)
		for row := range g.Len() {
			tid := g.TupleAt(row)
			copy(out[int(tid)*size:], scratch[row*size:(row+1)*size]) //nolint:gosec // tid < nextTID
			if frag.Marks().IsNull(row, local) {
				nulls.Add(uint64(tid))
			}
		}
	}
	return out, nulls
}

// Snapshot is a point-in-time copy of a table's contents in column form.
type Snapshot struct {
	// Tuples is the number of allocated TupleIDs.
	Tuples model.TupleID
	// Columns holds the encoded values of every allocated TupleID per
	// attribute, in schema order and TupleID order.
	Columns [][]byte
	// Nulls holds the null TupleIDs per attribute, in schema order.
	Nulls []*roaring64.Bitmap
	// Tombstones holds the deleted TupleIDs.
	Tombstones *roaring64.Bitmap
}

// Snapshot copies every column, null set and the tombstones under a single
// read lock, so concurrent inserts and deletes never tear the result.
func (t *Table) Snapshot() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	attrs := t.schema.Attrs()
	snap := &Snapshot{
		Tuples:     t.nextTID,
		Columns:    make([][]byte, len(attrs)),
		Nulls:      make([]*roaring64.Bitmap, len(attrs)),
		Tombstones: t.deleted.Clone(),
	}
	for i, a := range attrs {
		snap.Columns[i], snap.Nulls[i] = t.column(a)
	}
	return snap
}

// LoadColumn overwrites attr of every allocated tuple from data, laid out as
// in Snapshot.Columns, and replaces the null flags with nulls.
func (t *Table) LoadColumn(attr model.AttrID, data []byte, nulls *roaring64.Bitmap) error {
	a, err := t.schema.Attr(attr)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	size := a.Size()
	if want := int(t.nextTID) * size; len(data) != want { //nolint:gosec // bounded by allocated rows
		return fmt.Errorf("%w: column %q has %d bytes, want %d", model.ErrIllegalArgument, a.Name, len(data), want)
	}

	for _, g := range t.vindex.Grids(attr) {
		local, _ := g.LocalAttr(attr)
		frag := g.Fragment()
		for row := range g.Len() {
			tid := g.TupleAt(row)
			copy(frag.Slot(row, local), data[int(tid)*size:]) //nolint:gosec // tid < nextTID
			if nulls != nil && nulls.Contains(uint64(tid)) {
				frag.Marks().SetNull(row, local)
			} else {
				frag.Marks().ClearNull(row, local)
			}
		}
	}
	return nil
}
