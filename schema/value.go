package schema

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/hupe1980/gridstore/model"
)

// Encode writes v into dst using the attribute's fixed-size little-endian encoding.
// dst must be exactly Size() bytes long.
//
// Accepted values:
//   - char arrays: string or []byte of at most Rep bytes, zero padded;
//     trailing NUL bytes do not survive a round trip
//   - single-element attributes: any Go integer, float or bool matching the type class
//   - multi-element attributes: a slice or array of exactly Rep elements,
//     or a []byte holding the raw encoding
func (a Attribute) Encode(dst []byte, v any) error {
	if len(dst) != a.Size() {
		return fmt.Errorf("%w: attribute %q needs %d bytes, buffer has %d", model.ErrIllegalArgument, a.Name, a.Size(), len(dst))
	}
	if v == nil {
		return fmt.Errorf("%w: nil value for attribute %q", model.ErrIllegalArgument, a.Name)
	}

	if a.Type == TypeChar {
		var src []byte
		switch x := v.(type) {
		case string:
			src = []byte(x)
		case []byte:
			src = x
		default:
			return a.typeError(v)
		}
		if len(src) > len(dst) {
			return fmt.Errorf("%w: value of %d bytes exceeds attribute %q of %d bytes", model.ErrIllegalArgument, len(src), a.Name, len(dst))
		}
		n := copy(dst, src)
		clear(dst[n:])
		return nil
	}

	if a.Rep == 1 {
		return encodeScalar(dst, a.Type, v, a)
	}

	if raw, ok := v.([]byte); ok {
		if len(raw) != len(dst) {
			return fmt.Errorf("%w: raw value of %d bytes for attribute %q of %d bytes", model.ErrIllegalArgument, len(raw), a.Name, len(dst))
		}
		copy(dst, raw)
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return a.typeError(v)
	}
	if rv.Len() != a.Rep {
		return fmt.Errorf("%w: attribute %q expects %d elements, got %d", model.ErrIllegalArgument, a.Name, a.Rep, rv.Len())
	}
	w := a.Type.Width()
	for i := 0; i < a.Rep; i++ {
		if err := encodeScalar(dst[i*w:(i+1)*w], a.Type, rv.Index(i).Interface(), a); err != nil {
			return err
		}
	}
	return nil
}

// Decode converts the encoded bytes of one value back into a Go value.
// Char arrays decode to string (trailing NUL bytes trimmed); multi-element
// attributes decode to a typed slice.
func (a Attribute) Decode(b []byte) (any, error) {
	if len(b) != a.Size() {
		return nil, fmt.Errorf("%w: attribute %q needs %d bytes, got %d", model.ErrIllegalArgument, a.Name, a.Size(), len(b))
	}
	if a.Type == TypeChar {
		return string(bytes.TrimRight(b, "\x00")), nil
	}
	if a.Rep == 1 {
		return decodeScalar(b, a.Type), nil
	}

	w := a.Type.Width()
	out := reflect.MakeSlice(reflect.SliceOf(a.Type.goType()), a.Rep, a.Rep)
	for i := 0; i < a.Rep; i++ {
		out.Index(i).Set(reflect.ValueOf(decodeScalar(b[i*w:(i+1)*w], a.Type)))
	}
	return out.Interface(), nil
}

// Format renders the encoded value as text for dumps.
func (a Attribute) Format(b []byte) string {
	v, err := a.Decode(b)
	if err != nil {
		return "?"
	}
	if a.Type == TypeChar || a.Rep == 1 {
		return formatScalar(v)
	}

	rv := reflect.ValueOf(v)
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = formatScalar(rv.Index(i).Interface())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a Attribute) typeError(v any) error {
	return fmt.Errorf("%w: attribute %q of type %s cannot hold %T", model.ErrIllegalArgument, a.Name, a.Type, v)
}

func encodeScalar(dst []byte, t Type, v any, a Attribute) error {
	rv := reflect.ValueOf(v)

	switch {
	case t == TypeBool:
		if rv.Kind() != reflect.Bool {
			return a.typeError(v)
		}
		dst[0] = 0
		if rv.Bool() {
			dst[0] = 1
		}
		return nil

	case t.float():
		var f float64
		switch {
		case rv.CanFloat():
			f = rv.Float()
		case rv.CanInt():
			f = float64(rv.Int())
		case rv.CanUint():
			f = float64(rv.Uint())
		default:
			return a.typeError(v)
		}
		if t == TypeFloat32 {
			if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
				return a.rangeError(v)
			}
			binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(f)))
		} else {
			binary.LittleEndian.PutUint64(dst, math.Float64bits(f))
		}
		return nil

	case t.signed():
		var i int64
		switch {
		case rv.CanInt():
			i = rv.Int()
		case rv.CanUint():
			u := rv.Uint()
			if u > math.MaxInt64 {
				return a.rangeError(v)
			}
			i = int64(u) //nolint:gosec // checked above
		default:
			return a.typeError(v)
		}
		bits := uint(len(dst) * 8)
		lo, hi := -int64(1)<<(bits-1), int64(1)<<(bits-1)-1
		if i < lo || i > hi {
			return a.rangeError(v)
		}
		putUint(dst, uint64(i)) //nolint:gosec // two's complement truncation is intended
		return nil

	case t.unsigned():
		var u uint64
		switch {
		case rv.CanUint():
			u = rv.Uint()
		case rv.CanInt():
			i := rv.Int()
			if i < 0 {
				return a.rangeError(v)
			}
			u = uint64(i)
		default:
			return a.typeError(v)
		}
		if len(dst) < 8 && u >= uint64(1)<<(uint(len(dst))*8) {
			return a.rangeError(v)
		}
		putUint(dst, u)
		return nil
	}

	return fmt.Errorf("%w: type %s", model.ErrUnsupported, t)
}

func (a Attribute) rangeError(v any) error {
	return fmt.Errorf("%w: value %v out of range for attribute %q of type %s", model.ErrIllegalArgument, v, a.Name, a.Type)
}

func putUint(dst []byte, u uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(u)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(u))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(u))
	case 8:
		binary.LittleEndian.PutUint64(dst, u)
	}
}

func getUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

func decodeScalar(b []byte, t Type) any {
	u := getUint(b)
	switch t {
	case TypeBool:
		return u != 0
	case TypeInt8:
		return int8(u)
	case TypeInt16:
		return int16(u)
	case TypeInt32:
		return int32(u)
	case TypeInt64:
		return int64(u)
	case TypeUint8, TypeLayout:
		return uint8(u)
	case TypeUint16:
		return uint16(u)
	case TypeUint32:
		return uint32(u)
	case TypeUint64, TypeSize:
		return u
	case TypeFloat32:
		return math.Float32frombits(uint32(u))
	case TypeFloat64:
		return math.Float64frombits(u)
	case TypeAttrID:
		return model.AttrID(u)
	case TypeGridID:
		return model.GridID(u)
	case TypeTupleID:
		return model.TupleID(u)
	default:
		return nil
	}
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
