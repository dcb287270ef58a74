package table

import (
	"fmt"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/model"
)

type markedRow struct {
	marks *fragment.Marks
	row   int
}

// Read returns a copy of the value of attr in tuple tid.
func (t *Table) Read(tid model.TupleID, attr model.AttrID) (Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, f, err := t.open(tid, attr)
	if err != nil {
		return Value{}, err
	}
	a, _ := t.schema.Attr(attr)
	return valueOf(f, a), nil
}

// ReadValue returns the decoded value of attr in tuple tid, nil for a null.
func (t *Table) ReadValue(tid model.TupleID, attr model.AttrID) (any, error) {
	v, err := t.Read(tid, attr)
	if err != nil {
		return nil, err
	}
	return v.Decode()
}

// ReadRow returns every attribute of tuple tid in schema order.
func (t *Table) ReadRow(tid model.TupleID) ([]Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Value, t.schema.Len())
	for i, a := range t.schema.Attrs() {
		_, f, err := t.open(tid, a.ID)
		if err != nil {
			return nil, err
		}
		out[i] = valueOf(f, a)
	}
	return out, nil
}

// Write encodes v into attr of tuple tid. A nil v stores a null.
func (t *Table) Write(tid model.TupleID, attr model.AttrID, v any) error {
	if v == nil {
		return t.SetNull(tid, attr)
	}
	a, err := t.schema.Attr(attr)
	if err != nil {
		return err
	}
	buf := make([]byte, a.Size())
	if err := a.Encode(buf, v); err != nil {
		return err
	}
	return t.WriteRaw(tid, attr, buf)
}

// WriteRaw overwrites attr of tuple tid with already encoded bytes and clears
// its null flag.
func (t *Table) WriteRaw(tid model.TupleID, attr model.AttrID, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, f, err := t.open(tid, attr)
	if err != nil {
		return err
	}
	if err := f.Update(data); err != nil {
		return err
	}
	f.ClearNull()
	return nil
}

// SetNull marks attr of tuple tid as null.
func (t *Table) SetNull(tid model.TupleID, attr model.AttrID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, f, err := t.open(tid, attr)
	if err != nil {
		return err
	}
	f.SetNull()
	return nil
}

// Delete tombstones the given tuples in every partition. TupleIDs are never
// reused. Either all tuples are deleted or none.
func (t *Table) Delete(tids ...model.TupleID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	marks := make([][]markedRow, len(tids))
	for i, tid := range tids {
		for _, attrs := range t.parts {
			g, err := t.resolve(tid, attrs[0])
			if err != nil {
				return err
			}
			row, ok := g.Local(tid)
			if !ok {
				return fmt.Errorf("%w: grid %d is indexed for tuple %d but does not store it", model.ErrCorrupted, g.ID(), tid)
			}
			marks[i] = append(marks[i], markedRow{marks: g.Fragment().Marks(), row: row})
		}
	}

	for i, tid := range tids {
		for _, fr := range marks[i] {
			fr.marks.Delete(fr.row)
		}
		t.deleted.Add(uint64(tid))
	}
	t.logger.Debug("tuples deleted", "count", len(tids))
	return nil
}
