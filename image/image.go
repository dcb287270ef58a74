package image

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/gridstore/codec"
	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/internal/conv"
	"github.com/hupe1980/gridstore/internal/hash"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/resource"
	"github.com/hupe1980/gridstore/schema"
	"github.com/hupe1980/gridstore/table"
)

// Magic identifies a table image.
var Magic = [4]byte{'G', 'S', 'T', 'I'}

// Version is the current image format version.
const Version uint16 = 1

const blockHeaderSize = 13 // kind u8, raw u32, stored u32, crc u32

// DefaultMaxBlockSize is the largest decoded block Decode accepts by default.
const DefaultMaxBlockSize = 1 << 30

const maxHeaderSize = 1 << 20

// Header is the self-describing part of an image.
type Header struct {
	Table       string             `json:"table"`
	Layout      string             `json:"layout"`
	Capacity    int                `json:"capacity"`
	Partitions  [][]model.AttrID   `json:"partitions"`
	Tuples      uint64             `json:"tuples"`
	Compression Compression        `json:"compression"`
	Attrs       []schema.Attribute `json:"attrs"`
}

// Encode writes t as an image to w.
func Encode(ctx context.Context, w io.Writer, t *table.Table, optFns ...Option) error {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	bw := bufio.NewWriter(resource.NewRateLimitedWriter(ctx, w, opts.rc))
	enc := &encoder{w: bw}

	snap := t.Snapshot()
	hdr := Header{
		Table:       t.Name(),
		Layout:      t.Layout().String(),
		Capacity:    t.Capacity(),
		Partitions:  t.Partitions(),
		Tuples:      uint64(snap.Tuples),
		Compression: opts.compression,
		Attrs:       t.Schema().Attrs(),
	}
	hb, err := opts.codec.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("image: encode header: %w", err)
	}

	name := opts.codec.Name()
	enc.write(Magic[:])
	enc.write(binary.LittleEndian.AppendUint16(nil, Version))
	enc.write([]byte{byte(len(name))})
	enc.write([]byte(name))
	enc.block(CompressionNone, hb)

	for i := range hdr.Attrs {
		if err := ctx.Err(); err != nil {
			return err
		}
		enc.block(opts.compression, snap.Columns[i])
		enc.bitmap(snap.Nulls[i])
	}
	enc.bitmap(snap.Tombstones)

	if enc.err != nil {
		return fmt.Errorf("image: %w", enc.err)
	}
	return bw.Flush()
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) block(c Compression, raw []byte) {
	if e.err != nil {
		return
	}
	rawLen, err := conv.IntToUint32(len(raw))
	if err != nil {
		e.err = err
		return
	}

	stored, err := compress(raw, c)
	switch {
	case errors.Is(err, errIncompressible):
		c, stored = CompressionNone, raw
	case err != nil:
		e.err = err
		return
	}
	storedLen, _ := conv.IntToUint32(len(stored))

	hdr := make([]byte, blockHeaderSize)
	hdr[0] = byte(c)
	binary.LittleEndian.PutUint32(hdr[1:], rawLen)
	binary.LittleEndian.PutUint32(hdr[5:], storedLen)
	binary.LittleEndian.PutUint32(hdr[9:], hash.CRC32C(stored))
	e.write(hdr)
	e.write(stored)
}

func (e *encoder) bitmap(b *roaring64.Bitmap) {
	if e.err != nil {
		return
	}
	b.RunOptimize()
	data, err := b.ToBytes()
	if err != nil {
		e.err = err
		return
	}
	e.block(CompressionNone, data)
}

// Decode reads an image from r and rebuilds the table.
func Decode(ctx context.Context, r io.Reader, optFns ...Option) (*table.Table, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	dec := &decoder{
		r:        bufio.NewReader(resource.NewRateLimitedReader(ctx, r, opts.rc)),
		maxBlock: opts.maxBlock,
	}

	hdr, err := dec.header()
	if err != nil {
		return nil, err
	}

	s, err := schemaOf(hdr)
	if err != nil {
		return nil, err
	}
	layout, err := fragment.ParseLayout(hdr.Layout)
	if err != nil {
		return nil, err
	}
	if hdr.Capacity <= 0 || hdr.Capacity > dec.maxBlock/max(s.RowSize(), 1) {
		return nil, fmt.Errorf("%w: grid capacity %d with rows of %d bytes", model.ErrCorrupted, hdr.Capacity, s.RowSize())
	}

	tableOpts := append(slices.Clone(opts.tableOpts),
		table.WithCapacity(hdr.Capacity),
		table.WithLayout(layout),
		table.WithPartitions(hdr.Partitions...),
	)
	t, err := table.New(s, tableOpts...)
	if err != nil {
		return nil, err
	}

	if err := dec.body(ctx, t, hdr); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

func schemaOf(hdr *Header) (*schema.Schema, error) {
	defs := make([]schema.Def, len(hdr.Attrs))
	for i, a := range hdr.Attrs {
		if int(a.ID) != i {
			return nil, fmt.Errorf("%w: image attribute %q has id %d at position %d", model.ErrCorrupted, a.Name, a.ID, i)
		}
		defs[i] = schema.Def{Name: a.Name, Type: a.Type, Rep: a.Rep, Flags: a.Flags}
	}
	return schema.New(hdr.Table, defs...)
}

type decoder struct {
	r        io.Reader
	maxBlock int
}

func (d *decoder) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: image truncated", model.ErrCorrupted)
		}
		return nil, err
	}
	return buf, nil
}

// payload reads n bytes into a buffer that grows as data arrives, so a
// corrupted length cannot force a large allocation up front.
func (d *decoder) payload(n int) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, d.r, int64(n)); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: image truncated", model.ErrCorrupted)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *decoder) header() (*Header, error) {
	pre, err := d.read(len(Magic) + 3)
	if err != nil {
		return nil, err
	}
	if [4]byte(pre[:4]) != Magic {
		return nil, fmt.Errorf("%w: not a table image", model.ErrCorrupted)
	}
	if v := binary.LittleEndian.Uint16(pre[4:]); v != Version {
		return nil, fmt.Errorf("%w: image version %d", model.ErrUnsupported, v)
	}
	name, err := d.read(int(pre[6]))
	if err != nil {
		return nil, err
	}
	c, err := codec.ByName(string(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrUnsupported, err)
	}

	hb, err := d.block(maxHeaderSize)
	if err != nil {
		return nil, err
	}
	var hdr Header
	if err := c.Unmarshal(hb, &hdr); err != nil {
		return nil, fmt.Errorf("%w: image header: %w", model.ErrCorrupted, err)
	}
	return &hdr, nil
}

// block reads one block whose decoded size must not exceed limit.
func (d *decoder) block(limit int) ([]byte, error) {
	hdr, err := d.read(blockHeaderSize)
	if err != nil {
		return nil, err
	}
	c := Compression(hdr[0])
	raw := binary.LittleEndian.Uint32(hdr[1:])
	storedLen := binary.LittleEndian.Uint32(hdr[5:])
	sum := binary.LittleEndian.Uint32(hdr[9:])

	rawLen, err := conv.Uint32ToInt(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCorrupted, err)
	}
	if rawLen > limit {
		return nil, fmt.Errorf("%w: block of %d bytes exceeds %d", model.ErrCorrupted, rawLen, limit)
	}
	// Blocks are stored raw unless compression shrinks them.
	if storedLen > raw {
		return nil, fmt.Errorf("%w: block stores %d bytes for %d raw bytes", model.ErrCorrupted, storedLen, raw)
	}

	stored, err := d.payload(int(storedLen))
	if err != nil {
		return nil, err
	}
	if got := hash.CRC32C(stored); got != sum {
		return nil, fmt.Errorf("%w: block checksum %08x, want %08x", model.ErrCorrupted, got, sum)
	}
	data, err := decompress(stored, c, rawLen)
	if err != nil {
		return nil, fmt.Errorf("%w: block: %w", model.ErrCorrupted, err)
	}
	return data, nil
}

func (d *decoder) bitmap() (*roaring64.Bitmap, error) {
	data, err := d.block(d.maxBlock)
	if err != nil {
		return nil, err
	}
	b := roaring64.New()
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: bitmap: %w", model.ErrCorrupted, err)
	}
	return b, nil
}

func (d *decoder) body(ctx context.Context, t *table.Table, hdr *Header) error {
	n, err := conv.Uint64ToInt(hdr.Tuples)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrCorrupted, err)
	}
	for _, a := range hdr.Attrs {
		if n > d.maxBlock/a.Size() {
			return fmt.Errorf("%w: %d tuples of attribute %q exceed the block limit", model.ErrCorrupted, n, a.Name)
		}
	}
	if n > 0 {
		if _, err := t.Reserve(n); err != nil {
			return err
		}
	}

	for _, a := range hdr.Attrs {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := d.block(n * a.Size())
		if err != nil {
			return err
		}
		nulls, err := d.bitmap()
		if err != nil {
			return err
		}
		if err := t.LoadColumn(a.ID, data, nulls); err != nil {
			return fmt.Errorf("%w: %w", model.ErrCorrupted, err)
		}
	}

	tombstones, err := d.bitmap()
	if err != nil {
		return err
	}
	if tombstones.IsEmpty() {
		return nil
	}
	tids := make([]model.TupleID, 0, tombstones.GetCardinality())
	it := tombstones.Iterator()
	for it.HasNext() {
		tids = append(tids, model.TupleID(it.Next()))
	}
	return t.Delete(tids...)
}
