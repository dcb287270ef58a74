package fragment

import (
	"github.com/hupe1980/gridstore/model"
)

// dsmFragment stores one region per attribute. All regions are carved out of
// a single arena: attribute a starts at Cap × Offset(a).
type dsmFragment struct {
	base
	cols  [][]byte
	sizes []int
}

func newDSM(b base) *dsmFragment {
	buf := b.arena.Bytes()
	n := b.schema.Len()
	f := &dsmFragment{
		base:  b,
		cols:  make([][]byte, n),
		sizes: make([]int, n),
	}
	for i := 0; i < n; i++ {
		attr := model.AttrID(i)
		start := b.cap * b.schema.Offset(attr)
		end := start + b.cap*b.schema.Size(attr)
		f.cols[i] = buf[start:end:end]
		f.sizes[i] = b.schema.Size(attr)
	}
	return f
}

func (f *dsmFragment) Insert(n int) (*Tuplet, error) {
	row, err := f.reserve(n)
	if err != nil {
		return nil, err
	}
	return &Tuplet{frag: f, row: row}, nil
}

func (f *dsmFragment) Open(row int) (*Tuplet, error) {
	if err := f.check(row); err != nil {
		return nil, err
	}
	return &Tuplet{frag: f, row: row}, nil
}

func (f *dsmFragment) Slot(row int, attr model.AttrID) []byte {
	size := f.sizes[attr]
	off := row * size
	return f.cols[attr][off : off+size : off+size]
}

// Column returns the region of attribute attr covering the occupied rows.
func (f *dsmFragment) Column(attr model.AttrID) []byte {
	return f.cols[attr][:f.len*f.sizes[attr]]
}

func (f *dsmFragment) Dispose() error {
	f.cols = nil
	return f.dispose()
}
