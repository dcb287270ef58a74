package table

import (
	"fmt"

	"github.com/hupe1980/gridstore/model"
)

// encodedRow is a validated row in table attribute order. A nil entry is null.
type encodedRow [][]byte

func (t *Table) encode(row []any) (encodedRow, error) {
	if len(row) != t.schema.Len() {
		return nil, fmt.Errorf("%w: row has %d values, table %q has %d attributes", model.ErrIllegalArgument, len(row), t.Name(), t.schema.Len())
	}
	out := make(encodedRow, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		a, _ := t.schema.Attr(model.AttrID(i)) //nolint:gosec // bounded by schema size
		buf := make([]byte, a.Size())
		if err := a.Encode(buf, v); err != nil {
			return nil, err
		}
		out[i] = buf
	}
	return out, nil
}

// Insert appends rows to the table and returns their TupleIDs. Each row holds
// one value per attribute in schema order; nil stores a null. All rows are
// validated before any TupleID is allocated.
func (t *Table) Insert(rows ...[]any) ([]model.TupleID, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert without rows", model.ErrIllegalArgument)
	}
	encoded := make([]encodedRow, len(rows))
	for i, row := range rows {
		enc, err := t.encode(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		encoded[i] = enc
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	span, places, err := t.allocate(len(rows))
	if err != nil {
		return nil, err
	}

	for p, attrs := range t.parts {
		for _, pl := range places[p] {
			tp, err := pl.grid.Fragment().Open(pl.row)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", model.ErrInternal, err)
			}
			for tid := pl.span.Begin; tid < pl.span.End; tid++ {
				row := encoded[tid-span.Begin]
				f := tp.Field()
				for local, a := range attrs {
					if local > 0 && !f.Next(false) {
						return nil, fmt.Errorf("%w: grid %d ends before attribute %d", model.ErrInternal, pl.grid.ID(), a)
					}
					if row[a] == nil {
						f.SetNull()
						continue
					}
					if err := f.Update(row[a]); err != nil {
						return nil, err
					}
				}
				tp.Next()
			}
		}
	}

	ids := make([]model.TupleID, len(rows))
	for i := range ids {
		ids[i] = span.Begin + model.TupleID(i) //nolint:gosec // i < len(rows)
	}
	t.logger.Debug("tuples inserted", "first", span.Begin, "count", len(rows))
	return ids, nil
}

// Reserve allocates n zeroed tuples and returns a cursor over them.
// The values can then be written through the tuple API.
func (t *Table) Reserve(n int) (*TupleCursor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	span, _, err := t.allocate(n)
	if err != nil {
		return nil, err
	}
	ids := make([]model.TupleID, 0, n)
	for tid := span.Begin; tid < span.End; tid++ {
		ids = append(ids, tid)
	}
	return NewTupleCursor(t, ids...), nil
}
