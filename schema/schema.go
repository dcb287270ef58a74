package schema

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/gridstore/model"
)

// Schema is an ordered set of attributes plus the derived row layout.
//
// Schemas are safe for concurrent reads. Add must not race with readers;
// once sealed, the schema is immutable.
type Schema struct {
	name    string
	attrs   []Attribute
	byName  map[string]model.AttrID
	offsets []int // offsets[i] = Σ size(attrs[:i]); len(offsets) == len(attrs)+1
	sealed  atomic.Bool
	mu      sync.Mutex // serializes Add
}

// New creates a schema named name with the given attributes.
func New(name string, defs ...Def) (*Schema, error) {
	if name == "" || len(name) > MaxNameLen {
		return nil, fmt.Errorf("%w: schema name %q", model.ErrIllegalArgument, name)
	}
	s := &Schema{
		name:    name,
		byName:  make(map[string]model.AttrID, len(defs)),
		offsets: []int{0},
	}
	for _, d := range defs {
		if _, err := s.Add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for tests and static schemas.
func MustNew(name string, defs ...Def) *Schema {
	s, err := New(name, defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Add appends an attribute and returns its id.
func (s *Schema) Add(d Def) (model.AttrID, error) {
	if err := d.validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed.Load() {
		return 0, fmt.Errorf("%w: schema %q is sealed", model.ErrIllegalArgument, s.name)
	}
	if _, ok := s.byName[d.Name]; ok {
		return 0, fmt.Errorf("%w: duplicate attribute %q in schema %q", model.ErrIllegalArgument, d.Name, s.name)
	}

	id := model.AttrID(len(s.attrs))
	s.attrs = append(s.attrs, Attribute{ID: id, Name: d.Name, Type: d.Type, Rep: d.Rep, Flags: d.Flags})
	s.byName[d.Name] = id
	s.offsets = buildOffsets(s.attrs)
	return id, nil
}

// buildOffsets computes the prefix sums of attribute sizes.
func buildOffsets(attrs []Attribute) []int {
	offsets := make([]int, len(attrs)+1)
	for i, a := range attrs {
		offsets[i+1] = offsets[i] + a.Size()
	}
	return offsets
}

// Seal freezes the schema. It is called by every component that starts
// depending on the layout; calling it more than once is harmless.
func (s *Schema) Seal() {
	s.mu.Lock()
	s.sealed.Store(true)
	s.mu.Unlock()
}

// Sealed reports whether the schema rejects further attributes.
func (s *Schema) Sealed() bool {
	return s.sealed.Load()
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Len returns the number of attributes.
func (s *Schema) Len() int { return len(s.attrs) }

// RowSize returns the byte size of one row-major row.
func (s *Schema) RowSize() int { return s.offsets[len(s.attrs)] }

// Attr returns the attribute with the given id.
func (s *Schema) Attr(id model.AttrID) (Attribute, error) {
	if int(id) >= len(s.attrs) {
		return Attribute{}, fmt.Errorf("%w: attribute %d in schema %q with %d attributes", model.ErrOutOfBounds, id, s.name, len(s.attrs))
	}
	return s.attrs[id], nil
}

// AttrByName returns the attribute with the given name.
func (s *Schema) AttrByName(name string) (Attribute, error) {
	id, ok := s.byName[name]
	if !ok {
		return Attribute{}, fmt.Errorf("%w: attribute %q in schema %q", model.ErrNotFound, name, s.name)
	}
	return s.attrs[id], nil
}

// Attrs returns a copy of all attributes in id order.
func (s *Schema) Attrs() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// IDs returns all attribute ids in order.
func (s *Schema) IDs() []model.AttrID {
	ids := make([]model.AttrID, len(s.attrs))
	for i := range ids {
		ids[i] = model.AttrID(i)
	}
	return ids
}

// Offset returns the byte offset of attribute id inside a row-major row.
// The caller must pass a valid id.
func (s *Schema) Offset(id model.AttrID) int { return s.offsets[id] }

// Size returns the byte size of attribute id. The caller must pass a valid id.
func (s *Schema) Size(id model.AttrID) int { return s.attrs[id].Size() }

// Subset returns a new unsealed schema holding copies of the given attributes,
// renumbered densely in the order given.
func (s *Schema) Subset(name string, ids ...model.AttrID) (*Schema, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty attribute subset of schema %q", model.ErrIllegalArgument, s.name)
	}
	defs := make([]Def, 0, len(ids))
	for _, id := range ids {
		a, err := s.Attr(id)
		if err != nil {
			return nil, err
		}
		defs = append(defs, Def{Name: a.Name, Type: a.Type, Rep: a.Rep, Flags: a.Flags})
	}
	return New(name, defs...)
}

// Copy returns an unsealed copy of the schema under a new name.
func (s *Schema) Copy(name string) (*Schema, error) {
	return s.Subset(name, s.IDs()...)
}

// Defs returns the attribute definitions, suitable for rebuilding the schema.
func (s *Schema) Defs() []Def {
	defs := make([]Def, len(s.attrs))
	for i, a := range s.attrs {
		defs[i] = Def{Name: a.Name, Type: a.Type, Rep: a.Rep, Flags: a.Flags}
	}
	return defs
}

// String returns a string representation of the Schema, e.g. "users(id:uint64, name:char[16])".
func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteString(s.name)
	sb.WriteByte('(')
	for i, a := range s.attrs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
