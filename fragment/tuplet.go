package fragment

import (
	"fmt"

	"github.com/hupe1980/gridstore/model"
)

// Tuplet is a cursor addressing one row of a fragment.
// It is transient: reopen it from the fragment instead of storing it.
type Tuplet struct {
	frag Fragment
	row  int
}

// Fragment returns the fragment the tuplet points into.
func (t *Tuplet) Fragment() Fragment { return t.frag }

// Row returns the current row.
func (t *Tuplet) Row() int { return t.row }

// Next advances to the following row. It returns false, without moving,
// when the tuplet is at the last occupied row.
func (t *Tuplet) Next() bool {
	if t.row+1 >= t.frag.Len() {
		return false
	}
	t.row++
	return true
}

// Field opens a field cursor at attribute 0.
func (t *Tuplet) Field() *Field {
	return &Field{tuplet: t, attr: 0}
}

// Seek opens a field cursor at attribute attr.
func (t *Tuplet) Seek(attr model.AttrID) (*Field, error) {
	f := &Field{tuplet: t}
	if err := f.Seek(attr); err != nil {
		return nil, err
	}
	return f, nil
}

// Update overwrites every attribute of the row from a row-major encoded
// buffer of exactly RowSize bytes, then advances to the next row.
func (t *Tuplet) Update(row []byte) error {
	s := t.frag.Schema()
	if len(row) != s.RowSize() {
		return fmt.Errorf("%w: row of %d bytes, schema %q needs %d", model.ErrIllegalArgument, len(row), s.Name(), s.RowSize())
	}
	for i := 0; i < s.Len(); i++ {
		attr := model.AttrID(i)
		off := s.Offset(attr)
		copy(t.frag.Slot(t.row, attr), row[off:off+s.Size(attr)])
	}
	t.Next()
	return nil
}

// SetNull marks all attributes of the row as null, then advances.
func (t *Tuplet) SetNull() {
	t.frag.Marks().SetRowNull(t.row)
	t.Next()
}

// IsNull reports whether attribute attr of the row is null.
func (t *Tuplet) IsNull(attr model.AttrID) bool {
	return t.frag.Marks().IsNull(t.row, attr)
}

// Delete places a tombstone on the row. Storage is not reclaimed.
func (t *Tuplet) Delete() {
	t.frag.Marks().Delete(t.row)
}

// Deleted reports whether the row carries a tombstone.
func (t *Tuplet) Deleted() bool {
	return t.frag.Marks().Deleted(t.row)
}

// Bytes returns the row in row-major encoding, regardless of layout.
func (t *Tuplet) Bytes() []byte {
	s := t.frag.Schema()
	out := make([]byte, s.RowSize())
	for i := 0; i < s.Len(); i++ {
		attr := model.AttrID(i)
		copy(out[s.Offset(attr):], t.frag.Slot(t.row, attr))
	}
	return out
}
