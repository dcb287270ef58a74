package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/gridstore/schema"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

// String returns a random string of 1 to n letters.
func (r *RNG) String(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringLocked(n)
}

func (r *RNG) stringLocked(n int) string {
	b := make([]byte, 1+r.rand.Intn(n))
	for i := range b {
		b[i] = letters[r.rand.Intn(len(letters))]
	}
	return string(b)
}

// Value returns a random value that a can encode.
func (r *RNG) Value(a schema.Attribute) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valueLocked(a)
}

func (r *RNG) valueLocked(a schema.Attribute) any {
	if a.Type == schema.TypeChar {
		return r.stringLocked(a.Rep)
	}
	if a.Rep == 1 {
		return r.scalarLocked(a.Type)
	}
	out := make([]any, a.Rep)
	for i := range out {
		out[i] = r.scalarLocked(a.Type)
	}
	return out
}

func (r *RNG) scalarLocked(t schema.Type) any {
	u := r.rand.Uint64()
	switch t {
	case schema.TypeBool:
		return u&1 == 1
	case schema.TypeInt8:
		return int8(u) //nolint:gosec // truncation intended
	case schema.TypeInt16:
		return int16(u) //nolint:gosec // truncation intended
	case schema.TypeInt32:
		return int32(u) //nolint:gosec // truncation intended
	case schema.TypeInt64:
		return int64(u) //nolint:gosec // truncation intended
	case schema.TypeUint8:
		return uint8(u) //nolint:gosec // truncation intended
	case schema.TypeUint16:
		return uint16(u) //nolint:gosec // truncation intended
	case schema.TypeUint32:
		return uint32(u) //nolint:gosec // truncation intended
	case schema.TypeFloat32:
		return float32(r.rand.NormFloat64())
	case schema.TypeFloat64:
		return r.rand.NormFloat64() * math.MaxInt16
	default:
		return u
	}
}

// Row returns one random row for s. Each value is nil with probability nullRate.
func (r *RNG) Row(s *schema.Schema, nullRate float64) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rowLocked(s, nullRate)
}

func (r *RNG) rowLocked(s *schema.Schema, nullRate float64) []any {
	row := make([]any, s.Len())
	for i, a := range s.Attrs() {
		if nullRate > 0 && r.rand.Float64() < nullRate {
			continue
		}
		row[i] = r.valueLocked(a)
	}
	return row
}

// Rows returns n random rows for s.
// Locks only once per call (preferred over calling Row in a loop).
func (r *RNG) Rows(s *schema.Schema, n int, nullRate float64) [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = r.rowLocked(s, nullRate)
	}
	return rows
}

// Perm returns a random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}
