package schema

import (
	"fmt"
	"strings"

	"github.com/hupe1980/gridstore/model"
)

// MaxNameLen is the maximum length of schema and attribute names in bytes.
const MaxNameLen = 63

// Flags are catalog markers attached to an attribute.
// They are descriptive; the storage layer does not enforce them.
type Flags uint8

const (
	FlagPrimary Flags = 1 << iota
	FlagForeign
	FlagNullable
	FlagAutoInc
	FlagUnique
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// String returns the string representation of the Flags.
func (f Flags) String() string {
	var parts []string
	if f.Has(FlagPrimary) {
		parts = append(parts, "primary")
	}
	if f.Has(FlagForeign) {
		parts = append(parts, "foreign")
	}
	if f.Has(FlagNullable) {
		parts = append(parts, "nullable")
	}
	if f.Has(FlagAutoInc) {
		parts = append(parts, "autoinc")
	}
	if f.Has(FlagUnique) {
		parts = append(parts, "unique")
	}
	return strings.Join(parts, ",")
}

// Attribute describes one typed column. It is immutable once added to a schema.
type Attribute struct {
	ID    model.AttrID `json:"id"`
	Name  string       `json:"name"`
	Type  Type         `json:"type"`
	Rep   int          `json:"rep"`
	Flags Flags        `json:"flags,omitempty"`
}

// Size returns the byte size of one value: Rep × Type.Width().
func (a Attribute) Size() int {
	return a.Rep * a.Type.Width()
}

// String returns a string representation of the Attribute, e.g. "name:char[16]".
func (a Attribute) String() string {
	if a.Rep == 1 {
		return fmt.Sprintf("%s:%s", a.Name, a.Type)
	}
	return fmt.Sprintf("%s:%s[%d]", a.Name, a.Type, a.Rep)
}

// Def is the definition of an attribute before it is added to a schema.
type Def struct {
	Name  string
	Type  Type
	Rep   int
	Flags Flags
}

// Scalar returns a definition of a single-element attribute.
func Scalar(name string, t Type) Def {
	return Def{Name: name, Type: t, Rep: 1}
}

// Char returns a definition of a fixed-length character array of n bytes.
func Char(name string, n int) Def {
	return Def{Name: name, Type: TypeChar, Rep: n}
}

// Array returns a definition of a fixed-length array of n elements of type t.
func Array(name string, t Type, n int) Def {
	return Def{Name: name, Type: t, Rep: n}
}

// WithFlags returns a copy of d with the given flags set.
func (d Def) WithFlags(f Flags) Def {
	d.Flags |= f
	return d
}

func (d Def) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: attribute name is empty", model.ErrIllegalArgument)
	}
	if len(d.Name) > MaxNameLen {
		return fmt.Errorf("%w: attribute name %q exceeds %d bytes", model.ErrIllegalArgument, d.Name, MaxNameLen)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: attribute %q has unknown type %d", model.ErrUnsupported, d.Name, d.Type)
	}
	if d.Rep <= 0 {
		return fmt.Errorf("%w: attribute %q has repeat count %d", model.ErrIllegalArgument, d.Name, d.Rep)
	}
	return nil
}
