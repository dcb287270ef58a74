package table

import (
	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/schema"
)

// Value is a copied field value together with its attribute.
type Value struct {
	Attr schema.Attribute
	Data []byte
	Null bool
}

func valueOf(f *fragment.Field, attr schema.Attribute) Value {
	if f.IsNull() {
		return Value{Attr: attr, Null: true}
	}
	return Value{Attr: attr, Data: append([]byte(nil), f.Read()...)}
}

// Decode returns the Go value, or nil for a null.
func (v Value) Decode() (any, error) {
	if v.Null {
		return nil, nil
	}
	return v.Attr.Decode(v.Data)
}

// String renders the value for dumps.
func (v Value) String() string {
	if v.Null {
		return fragment.NullString
	}
	return v.Attr.Format(v.Data)
}
