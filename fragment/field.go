package fragment

import (
	"fmt"

	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/schema"
)

// NullString is how null fields are rendered.
const NullString = "NULL"

// Field is a cursor addressing one attribute inside a tuplet.
//
// A field is forward-only: to revisit earlier attributes, Seek or open a new
// field from the tuplet.
type Field struct {
	tuplet *Tuplet
	attr   model.AttrID
}

// Tuplet returns the tuplet the field was opened from.
func (f *Field) Tuplet() *Tuplet { return f.tuplet }

// Attr returns the current attribute id.
func (f *Field) Attr() model.AttrID { return f.attr }

// Attribute returns the descriptor of the current attribute.
func (f *Field) Attribute() schema.Attribute {
	a, _ := f.tuplet.frag.Schema().Attr(f.attr)
	return a
}

// Type returns the type of the current attribute.
func (f *Field) Type() schema.Type { return f.Attribute().Type }

// Size returns the byte size of the current attribute.
func (f *Field) Size() int { return f.tuplet.frag.Schema().Size(f.attr) }

// Seek jumps to attribute attr of the same row.
func (f *Field) Seek(attr model.AttrID) error {
	s := f.tuplet.frag.Schema()
	if int(attr) >= s.Len() {
		return fmt.Errorf("%w: attribute %d of %d", model.ErrOutOfBounds, attr, s.Len())
	}
	f.attr = attr
	return nil
}

// Next moves to the following attribute. At the last attribute it returns
// false, unless autoAdvance is set and the tuplet can move to the next row,
// in which case the field restarts at attribute 0 of that row.
func (f *Field) Next(autoAdvance bool) bool {
	if int(f.attr)+1 < f.tuplet.frag.Schema().Len() {
		f.attr++
		return true
	}
	if autoAdvance && f.tuplet.Next() {
		f.attr = 0
		return true
	}
	return false
}

// Read returns a view of the value bytes. The view aliases fragment storage
// and is valid until the fragment is disposed.
func (f *Field) Read() []byte {
	return f.tuplet.frag.Slot(f.tuplet.row, f.attr)
}

// Update overwrites the value in place. Scalars need exactly Size bytes;
// char arrays accept up to Size bytes and are zero padded.
// The null flag is not touched.
func (f *Field) Update(data []byte) error {
	a := f.Attribute()
	dst := f.Read()
	if a.Type == schema.TypeChar {
		if len(data) > len(dst) {
			return fmt.Errorf("%w: %d bytes into %q of %d bytes", model.ErrIllegalArgument, len(data), a.Name, len(dst))
		}
		n := copy(dst, data)
		clear(dst[n:])
		return nil
	}
	if len(data) != len(dst) {
		return fmt.Errorf("%w: %d bytes into %q of %d bytes", model.ErrIllegalArgument, len(data), a.Name, len(dst))
	}
	copy(dst, data)
	return nil
}

// Write updates the value and, if autoNext is set, moves to the next attribute
// (stepping the tuplet at the end of the row).
func (f *Field) Write(data []byte, autoNext bool) error {
	if err := f.Update(data); err != nil {
		return err
	}
	if autoNext {
		f.Next(true)
	}
	return nil
}

// Value decodes the current value.
func (f *Field) Value() (any, error) {
	return f.Attribute().Decode(f.Read())
}

// Set encodes v into the current value.
func (f *Field) Set(v any) error {
	return f.Attribute().Encode(f.Read(), v)
}

// SetNull marks the field as null.
func (f *Field) SetNull() {
	f.tuplet.frag.Marks().SetNull(f.tuplet.row, f.attr)
}

// ClearNull removes the null marker.
func (f *Field) ClearNull() {
	f.tuplet.frag.Marks().ClearNull(f.tuplet.row, f.attr)
}

// IsNull reports whether the field is marked null.
func (f *Field) IsNull() bool {
	return f.tuplet.frag.Marks().IsNull(f.tuplet.row, f.attr)
}

// String renders the value for dumps.
func (f *Field) String() string {
	if f.IsNull() {
		return NullString
	}
	return f.Attribute().Format(f.Read())
}

// PrintLen returns the display width of String.
func (f *Field) PrintLen() int {
	return len(f.String())
}
