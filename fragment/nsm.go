package fragment

import (
	"github.com/hupe1980/gridstore/model"
)

// nsmFragment stores rows contiguously in one buffer.
type nsmFragment struct {
	base
	buf     []byte
	rowSize int
}

func newNSM(b base) *nsmFragment {
	return &nsmFragment{
		base:    b,
		buf:     b.arena.Bytes(),
		rowSize: b.schema.RowSize(),
	}
}

func (f *nsmFragment) Insert(n int) (*Tuplet, error) {
	row, err := f.reserve(n)
	if err != nil {
		return nil, err
	}
	return &Tuplet{frag: f, row: row}, nil
}

func (f *nsmFragment) Open(row int) (*Tuplet, error) {
	if err := f.check(row); err != nil {
		return nil, err
	}
	return &Tuplet{frag: f, row: row}, nil
}

func (f *nsmFragment) Slot(row int, attr model.AttrID) []byte {
	off := row*f.rowSize + f.schema.Offset(attr)
	return f.buf[off : off+f.schema.Size(attr) : off+f.schema.Size(attr)]
}

func (f *nsmFragment) Dispose() error {
	f.buf = nil
	return f.dispose()
}
