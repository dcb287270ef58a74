package gridstore

import (
	"log/slog"

	"github.com/hupe1980/gridstore/codec"
	"github.com/hupe1980/gridstore/image"
	"github.com/hupe1980/gridstore/resource"
	"github.com/hupe1980/gridstore/table"
)

type options struct {
	codec            codec.Codec
	compression      image.Compression
	metricsCollector MetricsCollector
	logger           *Logger
	rc               *resource.Controller
	tableOpts        []table.Option
}

// Option configures a Store.
type Option func(*options)

// WithCodec configures the codec used for image headers written by Export.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the column block compression used by Export.
func WithCompression(c image.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &gridstore.BasicMetricsCollector{}
//	st, _ := gridstore.Open(gridstore.WithMetricsCollector(metrics))
//	// ... use st ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := gridstore.NewJSONLogger(slog.LevelInfo)
//	st, _ := gridstore.Open(gridstore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares rc between all tables of the store: fragment
// memory is charged against its budget, scans take its worker slots and
// image IO is throttled by its rate.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithTableOptions sets default options for every table the store creates.
// Options passed to CreateTable are applied after these.
func WithTableOptions(opts ...table.Option) Option {
	return func(o *options) {
		o.tableOpts = append(o.tableOpts, opts...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      image.CompressionLZ4,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
