package fragment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/gridstore/internal/mem"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/resource"
	"github.com/hupe1980/gridstore/schema"
)

// Layout selects the physical encoding of a fragment.
//
// The numeric values are persisted in table images; keep them stable.
type Layout uint8

const (
	// NSM is the row-major N-ary storage model.
	NSM Layout = 1
	// DSM is the column-major decomposition storage model.
	DSM Layout = 2
)

// String returns the string representation of the Layout.
func (l Layout) String() string {
	switch l {
	case NSM:
		return "nsm"
	case DSM:
		return "dsm"
	default:
		return fmt.Sprintf("layout(%d)", uint8(l))
	}
}

// ParseLayout parses "nsm" or "dsm".
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "nsm", "NSM":
		return NSM, nil
	case "dsm", "DSM":
		return DSM, nil
	default:
		return 0, fmt.Errorf("%w: layout %q", model.ErrUnsupported, s)
	}
}

// Fragment is fixed-capacity storage for rows of one schema.
//
// Further layouts can be added by implementing this interface; Tuplet and
// Field only depend on Slot and Marks.
type Fragment interface {
	// Schema returns the schema the fragment stores.
	Schema() *schema.Schema
	// Layout returns the physical layout.
	Layout() Layout
	// Cap returns the maximum number of rows.
	Cap() int
	// Len returns the number of occupied rows.
	Len() int
	// Insert reserves n contiguous zeroed rows and returns a tuplet at the first one.
	Insert(n int) (*Tuplet, error)
	// Open returns a tuplet positioned at an occupied row.
	Open(row int) (*Tuplet, error)
	// Dispose releases the backing storage.
	Dispose() error
	// Slot returns the bytes of attribute attr in row row.
	// The caller must pass an occupied row and a valid attribute.
	Slot(row int, attr model.AttrID) []byte
	// Marks returns the null and tombstone flags.
	Marks() *Marks
	// SizeBytes returns the size of the backing storage.
	SizeBytes() int
}

type options struct {
	alloc mem.Allocator
	rc    *resource.Controller
	wait  time.Duration
}

// Option configures fragment allocation.
type Option func(*options)

// WithAllocator sets the arena allocator. Defaults to mem.Heap.
func WithAllocator(a mem.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithResourceController charges the fragment's storage against a memory budget.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMemoryWait makes allocation wait up to d for the memory budget to free
// up instead of failing at once. Zero fails at once.
func WithMemoryWait(d time.Duration) Option {
	return func(o *options) {
		o.wait = d
	}
}

// New allocates a fragment of the given capacity and layout. The schema is sealed.
func New(s *schema.Schema, capacity int, layout Layout, optFns ...Option) (Fragment, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil schema", model.ErrIllegalArgument)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: fragment capacity %d", model.ErrIllegalArgument, capacity)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: schema %q has no attributes", model.ErrIllegalArgument, s.Name())
	}
	if layout != NSM && layout != DSM {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupported, layout)
	}
	// Null flags are addressed as row×attrs+attr in a 32-bit bitmap.
	if uint64(capacity)*uint64(s.Len()) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: fragment capacity %d with %d attributes exceeds flag space", model.ErrIllegalArgument, capacity, s.Len())
	}
	if s.RowSize() > 0 && capacity > math.MaxInt/s.RowSize() {
		return nil, fmt.Errorf("%w: fragment capacity %d overflows", model.ErrIllegalArgument, capacity)
	}

	opts := options{alloc: mem.Heap}
	for _, fn := range optFns {
		fn(&opts)
	}

	s.Seal()

	size := capacity * s.RowSize()
	if err := acquire(opts, int64(size)); err != nil {
		return nil, fmt.Errorf("fragment: %d bytes: %w", size, err)
	}
	arena, err := opts.alloc.Alloc(size)
	if err != nil {
		opts.rc.ReleaseMemory(int64(size))
		return nil, err
	}

	b := base{
		schema: s,
		layout: layout,
		cap:    capacity,
		marks:  newMarks(s.Len()),
		arena:  arena,
		rc:     opts.rc,
		size:   size,
	}

	switch layout {
	case NSM:
		return newNSM(b), nil
	default:
		return newDSM(b), nil
	}
}

func acquire(opts options, size int64) error {
	if opts.wait <= 0 {
		return opts.rc.AcquireMemory(size)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.wait)
	defer cancel()
	err := opts.rc.WaitMemory(ctx, size)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after waiting %s", resource.ErrMemoryLimitExceeded, opts.wait)
	}
	return err
}

// base holds the state shared by all layouts.
type base struct {
	schema   *schema.Schema
	layout   Layout
	cap      int
	len      int
	marks    *Marks
	arena    mem.Arena
	rc       *resource.Controller
	size     int
	disposed bool
}

func (b *base) Schema() *schema.Schema { return b.schema }
func (b *base) Layout() Layout         { return b.layout }
func (b *base) Cap() int               { return b.cap }
func (b *base) Len() int               { return b.len }
func (b *base) Marks() *Marks          { return b.marks }
func (b *base) SizeBytes() int         { return b.size }

// reserve claims n rows and returns the first claimed row.
func (b *base) reserve(n int) (int, error) {
	if b.disposed {
		return 0, fmt.Errorf("%w: fragment disposed", model.ErrIllegalArgument)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: insert of %d rows", model.ErrIllegalArgument, n)
	}
	if n > b.cap-b.len {
		return 0, fmt.Errorf("%w: %d rows requested, %d of %d free", model.ErrNoFreeSpace, n, b.cap-b.len, b.cap)
	}
	row := b.len
	b.len += n
	return row, nil
}

func (b *base) check(row int) error {
	if b.disposed {
		return fmt.Errorf("%w: fragment disposed", model.ErrIllegalArgument)
	}
	if row < 0 || row >= b.len {
		return fmt.Errorf("%w: row %d of %d", model.ErrOutOfBounds, row, b.len)
	}
	return nil
}

func (b *base) dispose() error {
	if b.disposed {
		return fmt.Errorf("%w: fragment disposed twice", model.ErrIllegalArgument)
	}
	b.disposed = true
	err := b.arena.Free()
	b.rc.ReleaseMemory(int64(b.size))
	b.arena = nil
	return err
}
