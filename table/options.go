package table

import (
	"log/slog"
	"time"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/internal/mem"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/resource"
)

// DefaultCapacity is the default number of rows per grid.
const DefaultCapacity = 1024

type options struct {
	capacity    int
	layout      fragment.Layout
	partitions  [][]model.AttrID
	fragOpts    []fragment.Option
	rc          *resource.Controller
	logger      *slog.Logger
	scanWorkers int
}

func defaultOptions() options {
	return options{
		capacity: DefaultCapacity,
		layout:   fragment.NSM,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// Option configures a table.
type Option func(*options)

// WithCapacity sets the number of rows per grid.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLayout sets the fragment layout of new grids.
func WithLayout(l fragment.Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithPartitions splits the attributes into vertical partitions. Every
// attribute must appear in exactly one partition. Each partition is stored in
// its own chain of grids.
func WithPartitions(parts ...[]model.AttrID) Option {
	return func(o *options) {
		o.partitions = parts
	}
}

// WithAnonymousMemory backs fragments with anonymous memory mappings instead
// of the Go heap.
func WithAnonymousMemory() Option {
	return func(o *options) {
		o.fragOpts = append(o.fragOpts, fragment.WithAllocator(mem.Anonymous()))
	}
}

// WithResourceController charges fragment memory against rc and bounds
// scan parallelism by its background worker slots.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMemoryWait lets grid allocation wait up to d for memory released by
// other tables sharing the resource controller.
func WithMemoryWait(d time.Duration) Option {
	return func(o *options) {
		o.fragOpts = append(o.fragOpts, fragment.WithMemoryWait(d))
	}
}

// WithLogger sets the structured logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithScanWorkers bounds the number of grids scanned concurrently.
// Defaults to GOMAXPROCS, capped by the resource controller's background
// worker slots.
func WithScanWorkers(n int) Option {
	return func(o *options) {
		o.scanWorkers = n
	}
}
