// Package codec selects the serialization used for self-describing table
// image headers.
//
// The codec name is stored in every image header; changing the codec of an
// image changes its bytes, so decoders look the codec up by that name.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	switch name {
	case JSON{}.Name():
		return JSON{}, nil
	case GoJSON{}.Name():
		return GoJSON{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}

// Names returns the names of the built-in codecs.
func Names() []string {
	return []string{JSON{}.Name(), GoJSON{}.Name()}
}
