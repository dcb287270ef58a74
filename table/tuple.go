package table

import (
	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/grid"
	"github.com/hupe1980/gridstore/model"
)

// Tuple is a handle on one logical row of a table. Tuple and TupleField do
// not take the table lock; callers serialize them against writers.
type Tuple struct {
	table *Table
	id    model.TupleID
}

// ID returns the TupleID.
func (t Tuple) ID() model.TupleID { return t.id }

// Table returns the owning table.
func (t Tuple) Table() *Table { return t.table }

// Field opens a field cursor at attribute 0.
func (t Tuple) Field() (*TupleField, error) {
	return t.Seek(0)
}

// Seek opens a field cursor at attribute attr.
func (t Tuple) Seek(attr model.AttrID) (*TupleField, error) {
	tf := &TupleField{tuple: t}
	if err := tf.Seek(attr); err != nil {
		return nil, err
	}
	return tf, nil
}

// Values returns every attribute of the tuple in schema order.
func (t Tuple) Values() ([]Value, error) {
	f, err := t.Field()
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, t.table.schema.Len())
	for {
		out = append(out, f.Value())
		ok, err := f.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
	}
}

// TupleField is a field cursor over a logical tuple. Moving between
// attributes stored in different grids resolves the owning grid again.
type TupleField struct {
	tuple Tuple
	attr  model.AttrID
	grid  *grid.Grid
	field *fragment.Field
}

// Tuple returns the tuple the field belongs to.
func (f *TupleField) Tuple() Tuple { return f.tuple }

// Attr returns the current table attribute id.
func (f *TupleField) Attr() model.AttrID { return f.attr }

// Grid returns the grid storing the current attribute.
func (f *TupleField) Grid() *grid.Grid { return f.grid }

// Seek resolves attr of the tuple and moves the cursor there.
func (f *TupleField) Seek(attr model.AttrID) error {
	g, field, err := f.tuple.table.open(f.tuple.id, attr)
	if err != nil {
		return err
	}
	f.attr, f.grid, f.field = attr, g, field
	return nil
}

// Next moves to the following attribute and returns false after the last one.
func (f *TupleField) Next() (bool, error) {
	next := f.attr + 1
	if int(next) >= f.tuple.table.schema.Len() {
		return false, nil
	}
	if local, ok := f.grid.LocalAttr(next); ok {
		if err := f.field.Seek(local); err != nil {
			return false, err
		}
		f.attr = next
		return true, nil
	}
	if err := f.Seek(next); err != nil {
		return false, err
	}
	return true, nil
}

// Read returns a borrowed view of the value bytes.
func (f *TupleField) Read() []byte { return f.field.Read() }

// Value returns a copy of the current value.
func (f *TupleField) Value() Value {
	a, _ := f.tuple.table.schema.Attr(f.attr)
	return valueOf(f.field, a)
}

// Decode returns the decoded current value, nil for a null.
func (f *TupleField) Decode() (any, error) {
	return f.Value().Decode()
}

// Update overwrites the value with encoded bytes. The null flag is not touched.
func (f *TupleField) Update(data []byte) error { return f.field.Update(data) }

// Write updates the value and clears the null flag, then moves to the next
// attribute if autoNext is set.
func (f *TupleField) Write(data []byte, autoNext bool) error {
	if err := f.field.Update(data); err != nil {
		return err
	}
	f.field.ClearNull()
	if autoNext {
		_, err := f.Next()
		return err
	}
	return nil
}

// Set encodes v into the current value and clears the null flag.
func (f *TupleField) Set(v any) error {
	if v == nil {
		f.field.SetNull()
		return nil
	}
	if err := f.field.Set(v); err != nil {
		return err
	}
	f.field.ClearNull()
	return nil
}

// SetNull marks the current value as null.
func (f *TupleField) SetNull() { f.field.SetNull() }

// ClearNull removes the null marker.
func (f *TupleField) ClearNull() { f.field.ClearNull() }

// IsNull reports whether the current value is null.
func (f *TupleField) IsNull() bool { return f.field.IsNull() }

// String renders the current value.
func (f *TupleField) String() string { return f.field.String() }

// TupleCursor iterates a list of tuples of one table.
type TupleCursor struct {
	table *Table
	ids   []model.TupleID
	pos   int
}

// NewTupleCursor returns a cursor over ids.
func NewTupleCursor(t *Table, ids ...model.TupleID) *TupleCursor {
	return &TupleCursor{table: t, ids: ids}
}

// Cursor returns a tuple cursor over ids.
func (t *Table) Cursor(ids ...model.TupleID) *TupleCursor {
	return NewTupleCursor(t, ids...)
}

// Next returns the next tuple.
func (c *TupleCursor) Next() (Tuple, bool) {
	if c.pos >= len(c.ids) {
		return Tuple{}, false
	}
	tid := c.ids[c.pos]
	c.pos++
	return Tuple{table: c.table, id: tid}, true
}

// Rewind restarts the cursor.
func (c *TupleCursor) Rewind() { c.pos = 0 }

// Len returns the number of tuples.
func (c *TupleCursor) Len() int { return len(c.ids) }

// IDs returns the TupleIDs of the cursor.
func (c *TupleCursor) IDs() []model.TupleID {
	return append([]model.TupleID(nil), c.ids...)
}
