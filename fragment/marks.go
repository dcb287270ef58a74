package fragment

import (
	"github.com/hupe1980/gridstore/internal/bitmap"
	"github.com/hupe1980/gridstore/model"
)

// Marks holds the side flags of a fragment: per-field null markers and
// per-row deletion tombstones.
type Marks struct {
	attrs   int
	nulls   *bitmap.Bitmap // key: row×attrs + attr
	deleted *bitmap.Bitmap // key: row
}

func newMarks(attrs int) *Marks {
	return &Marks{
		attrs:   attrs,
		nulls:   bitmap.New(),
		deleted: bitmap.New(),
	}
}

func (m *Marks) key(row int, attr model.AttrID) uint32 {
	return uint32(row*m.attrs + int(attr)) //nolint:gosec // bounded by New
}

// SetNull marks one field as null.
func (m *Marks) SetNull(row int, attr model.AttrID) {
	m.nulls.Add(m.key(row, attr))
}

// ClearNull removes the null marker of one field.
func (m *Marks) ClearNull(row int, attr model.AttrID) {
	m.nulls.Remove(m.key(row, attr))
}

// IsNull reports whether a field is marked null.
func (m *Marks) IsNull(row int, attr model.AttrID) bool {
	return m.nulls.Contains(m.key(row, attr))
}

// SetRowNull marks every field of a row as null.
func (m *Marks) SetRowNull(row int) {
	start := uint64(m.key(row, 0))
	m.nulls.AddRange(start, start+uint64(m.attrs))
}

// NullCount returns the number of null fields.
func (m *Marks) NullCount() uint64 {
	return m.nulls.Cardinality()
}

// Delete places a tombstone on a row.
func (m *Marks) Delete(row int) {
	m.deleted.Add(uint32(row)) //nolint:gosec // bounded by New
}

// Deleted reports whether a row carries a tombstone.
func (m *Marks) Deleted(row int) bool {
	return m.deleted.Contains(uint32(row)) //nolint:gosec // bounded by New
}

// DeletedCount returns the number of tombstoned rows.
func (m *Marks) DeletedCount() uint64 {
	return m.deleted.Cardinality()
}
