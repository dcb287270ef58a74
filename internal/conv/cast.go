package conv

import (
	"fmt"
	"math"

	"github.com/hupe1980/gridstore/model"
)

// IntToUint32 converts a length to the 32-bit form used in block headers.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit in uint32", model.ErrOutOfBounds, v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts a stored count to int.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d does not fit in int", model.ErrOutOfBounds, v)
	}
	return int(v), nil
}

// Uint32ToInt converts a stored length to int.
func Uint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d does not fit in int", model.ErrOutOfBounds, v)
	}
	return int(v), nil
}
