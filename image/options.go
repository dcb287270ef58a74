package image

import (
	"github.com/hupe1980/gridstore/codec"
	"github.com/hupe1980/gridstore/resource"
	"github.com/hupe1980/gridstore/table"
)

type options struct {
	compression Compression
	codec       codec.Codec
	rc          *resource.Controller
	tableOpts   []table.Option
	maxBlock    int
}

func defaultOptions() options {
	return options{
		compression: CompressionLZ4,
		codec:       codec.Default,
		maxBlock:    DefaultMaxBlockSize,
	}
}

// Option configures Encode and Decode.
type Option func(*options)

// WithCompression sets the column block compression used by Encode.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec sets the header codec used by Encode. Decode always uses the
// codec named in the image.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithResourceController throttles image IO by rc's IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithTableOptions passes extra options (logger, memory, scan workers) to
// the table built by Decode. Capacity, layout and partitions always come
// from the image.
func WithTableOptions(opts ...table.Option) Option {
	return func(o *options) {
		o.tableOpts = append(o.tableOpts, opts...)
	}
}

// WithMaxBlockSize bounds the decoded size of any single block Decode accepts,
// and with it the tuple count and grid size of the rebuilt table. Values
// outside (0, DefaultMaxBlockSize] select DefaultMaxBlockSize.
func WithMaxBlockSize(n int) Option {
	return func(o *options) {
		if n <= 0 || n > DefaultMaxBlockSize {
			n = DefaultMaxBlockSize
		}
		o.maxBlock = n
	}
}
