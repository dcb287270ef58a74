package schema

import (
	"reflect"

	"github.com/hupe1980/gridstore/model"
)

// Type is the scalar type tag of an attribute.
//
// The numeric values are persisted in table images; keep them stable.
type Type uint8

const (
	TypeBool    Type = 0
	TypeInt8    Type = 1
	TypeInt16   Type = 2
	TypeInt32   Type = 3
	TypeInt64   Type = 4
	TypeUint8   Type = 5
	TypeUint16  Type = 6
	TypeUint32  Type = 7
	TypeUint64  Type = 8
	TypeFloat32 Type = 9
	TypeFloat64 Type = 10
	TypeChar    Type = 11

	// Internal tags used by metadata rows (structure dumps, index dumps).
	TypeAttrID  Type = 101
	TypeGridID  Type = 102
	TypeTupleID Type = 103
	TypeSize    Type = 104
	TypeLayout  Type = 105
)

// Width returns the byte width of one element of the type, or 0 for unknown tags.
func (t Type) Width() int {
	switch t {
	case TypeBool, TypeInt8, TypeUint8, TypeChar, TypeLayout:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat32, TypeAttrID:
		return 4
	case TypeInt64, TypeUint64, TypeFloat64, TypeGridID, TypeTupleID, TypeSize:
		return 8
	default:
		return 0
	}
}

// Valid reports whether t is a known type tag.
func (t Type) Valid() bool {
	return t.Width() > 0
}

// Internal reports whether t is one of the metadata-only tags.
func (t Type) Internal() bool {
	return t >= TypeAttrID && t <= TypeLayout
}

// String returns the string representation of the Type.
func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUint8:
		return "uint8"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeUint64:
		return "uint64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeChar:
		return "char"
	case TypeAttrID:
		return "attrid"
	case TypeGridID:
		return "gridid"
	case TypeTupleID:
		return "tupleid"
	case TypeSize:
		return "size"
	case TypeLayout:
		return "layout"
	default:
		return "unknown"
	}
}

func (t Type) signed() bool {
	return t >= TypeInt8 && t <= TypeInt64
}

func (t Type) unsigned() bool {
	return (t >= TypeUint8 && t <= TypeUint64) || t.Internal()
}

func (t Type) float() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// goType is the Go type produced by decoding one element of t.
func (t Type) goType() reflect.Type {
	switch t {
	case TypeBool:
		return reflect.TypeFor[bool]()
	case TypeInt8:
		return reflect.TypeFor[int8]()
	case TypeInt16:
		return reflect.TypeFor[int16]()
	case TypeInt32:
		return reflect.TypeFor[int32]()
	case TypeInt64:
		return reflect.TypeFor[int64]()
	case TypeUint8, TypeLayout:
		return reflect.TypeFor[uint8]()
	case TypeUint16:
		return reflect.TypeFor[uint16]()
	case TypeUint32:
		return reflect.TypeFor[uint32]()
	case TypeUint64, TypeSize:
		return reflect.TypeFor[uint64]()
	case TypeFloat32:
		return reflect.TypeFor[float32]()
	case TypeFloat64:
		return reflect.TypeFor[float64]()
	case TypeAttrID:
		return reflect.TypeFor[model.AttrID]()
	case TypeGridID:
		return reflect.TypeFor[model.GridID]()
	case TypeTupleID:
		return reflect.TypeFor[model.TupleID]()
	default:
		return nil
	}
}
