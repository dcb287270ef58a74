package bitmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is a compressed set of uint32 positions.
// It is not safe for concurrent mutation.
type Bitmap struct {
	rb *roaring.Bitmap
}

// New creates a new empty bitmap.
func New() *Bitmap {
	return &Bitmap{
		rb: roaring.New(),
	}
}

// Add adds a position to the bitmap.
func (b *Bitmap) Add(x uint32) {
	b.rb.Add(x)
}

// AddRange adds all positions in [start, end).
func (b *Bitmap) AddRange(start, end uint64) {
	b.rb.AddRange(start, end)
}

// Remove removes a position from the bitmap.
func (b *Bitmap) Remove(x uint32) {
	b.rb.Remove(x)
}

// RemoveRange removes all positions in [start, end).
func (b *Bitmap) RemoveRange(start, end uint64) {
	b.rb.RemoveRange(start, end)
}

// Contains checks if a position is in the bitmap.
func (b *Bitmap) Contains(x uint32) bool {
	return b.rb.Contains(x)
}

// IsEmpty returns true if the bitmap is empty.
func (b *Bitmap) IsEmpty() bool {
	return b.rb.IsEmpty()
}

// Cardinality returns the number of elements in the bitmap.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{
		rb: b.rb.Clone(),
	}
}

// Iterator returns an iterator over the bitmap in ascending order.
func (b *Bitmap) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Clear removes all elements from the bitmap.
func (b *Bitmap) Clear() {
	b.rb.Clear()
}

// MarshalBinary implements encoding.BinaryMarshaler using the portable Roaring format.
func (b *Bitmap) MarshalBinary() ([]byte, error) {
	return b.rb.ToBytes()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *Bitmap) UnmarshalBinary(data []byte) error {
	rb := roaring.New()
	if err := rb.UnmarshalBinary(data); err != nil {
		return err
	}
	b.rb = rb
	return nil
}
