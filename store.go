package gridstore

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/gridstore/image"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/schema"
	"github.com/hupe1980/gridstore/table"
)

// Store is a catalog of named grid tables sharing one logger, metrics
// collector and resource controller.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	closed bool

	opts    options
	metrics MetricsCollector
	logger  *Logger
}

// Open creates an empty store.
func Open(optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)
	return &Store{
		tables:  make(map[string]*table.Table),
		opts:    opts,
		metrics: opts.metricsCollector,
		logger:  opts.logger,
	}, nil
}

func (st *Store) tableOptions(extra []table.Option) []table.Option {
	out := make([]table.Option, 0, len(st.opts.tableOpts)+len(extra)+2)
	out = append(out, table.WithLogger(st.logger.Logger), table.WithResourceController(st.opts.rc))
	out = append(out, st.opts.tableOpts...)
	return append(out, extra...)
}

// CreateTable creates a table named after s.
func (st *Store) CreateTable(ctx context.Context, s *schema.Schema, opts ...table.Option) (*table.Table, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrIllegalArgument)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	t, err := st.createLocked(s, opts)
	st.logger.LogCreateTable(ctx, s.Name(), s.Len(), err)
	return t, err
}

func (st *Store) createLocked(s *schema.Schema, opts []table.Option) (*table.Table, error) {
	if st.closed {
		return nil, ErrClosed
	}
	if _, ok := st.tables[s.Name()]; ok {
		return nil, fmt.Errorf("%w: %q", ErrTableExists, s.Name())
	}
	t, err := table.New(s, st.tableOptions(opts)...)
	if err != nil {
		return nil, translateError(err)
	}
	st.tables[s.Name()] = t
	return t, nil
}

// Table returns the table called name.
func (st *Store) Table(name string) (*table.Table, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if st.closed {
		return nil, ErrClosed
	}
	t, ok := st.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %q", ErrNotFound, name)
	}
	return t, nil
}

// Tables returns the table names in sorted order.
func (st *Store) Tables() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	names := make([]string, 0, len(st.tables))
	for name := range st.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DropTable removes the table and releases its grids.
func (st *Store) DropTable(ctx context.Context, name string) error {
	st.mu.Lock()
	t, ok := st.tables[name]
	delete(st.tables, name)
	closed := st.closed
	st.mu.Unlock()

	var err error
	switch {
	case closed:
		err = ErrClosed
	case !ok:
		err = fmt.Errorf("%w: table %q", ErrNotFound, name)
	default:
		err = t.Close()
	}
	st.logger.LogDropTable(ctx, name, err)
	return err
}

// Insert appends rows to the named table. See table.Table.Insert.
func (st *Store) Insert(ctx context.Context, name string, rows ...[]any) ([]model.TupleID, error) {
	start := time.Now()

	t, err := st.Table(name)
	var ids []model.TupleID
	if err == nil {
		ids, err = t.Insert(rows...)
	}

	err = translateError(err)
	var first model.TupleID
	if len(ids) > 0 {
		first = ids[0]
	}
	st.metrics.RecordInsert(len(rows), time.Since(start), err)
	st.logger.LogInsert(ctx, name, first, len(rows), err)
	return ids, err
}

// Read returns the decoded value of attribute attr in tuple tid, nil for a null.
func (st *Store) Read(ctx context.Context, name string, tid model.TupleID, attr string) (any, error) {
	start := time.Now()

	v, err := st.read(name, tid, attr)

	err = translateError(err)
	st.metrics.RecordRead(time.Since(start), err)
	st.logger.LogRead(ctx, name, tid, err)
	return v, err
}

func (st *Store) read(name string, tid model.TupleID, attr string) (any, error) {
	t, err := st.Table(name)
	if err != nil {
		return nil, err
	}
	id, err := t.Lookup(attr)
	if err != nil {
		return nil, err
	}
	return t.ReadValue(tid, id)
}

// ReadRow returns the decoded values of tuple tid in schema order.
func (st *Store) ReadRow(ctx context.Context, name string, tid model.TupleID) ([]any, error) {
	start := time.Now()

	row, err := st.readRow(name, tid)

	err = translateError(err)
	st.metrics.RecordRead(time.Since(start), err)
	st.logger.LogRead(ctx, name, tid, err)
	return row, err
}

func (st *Store) readRow(name string, tid model.TupleID) ([]any, error) {
	t, err := st.Table(name)
	if err != nil {
		return nil, err
	}
	values, err := t.ReadRow(tid)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(values))
	for i, v := range values {
		if out[i], err = v.Decode(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Write stores v in attribute attr of tuple tid. A nil v stores a null.
func (st *Store) Write(ctx context.Context, name string, tid model.TupleID, attr string, v any) error {
	start := time.Now()

	t, err := st.Table(name)
	if err == nil {
		var id model.AttrID
		if id, err = t.Lookup(attr); err == nil {
			err = t.Write(tid, id, v)
		}
	}

	err = translateError(err)
	st.metrics.RecordWrite(time.Since(start), err)
	st.logger.LogWrite(ctx, name, tid, attr, err)
	return err
}

// Delete tombstones tuples of the named table.
func (st *Store) Delete(ctx context.Context, name string, tids ...model.TupleID) error {
	start := time.Now()

	t, err := st.Table(name)
	if err == nil {
		err = t.Delete(tids...)
	}

	err = translateError(err)
	st.metrics.RecordDelete(len(tids), time.Since(start), err)
	st.logger.LogDelete(ctx, name, len(tids), err)
	return err
}

// Scan visits the live tuples of the named table, reading the given
// attributes (all when none are named). fn may run concurrently and may call
// back into the store.
func (st *Store) Scan(ctx context.Context, name string, attrs []string, fn table.ScanFunc) error {
	start := time.Now()
	var (
		mu   sync.Mutex
		rows int
	)

	err := func() error {
		t, err := st.Table(name)
		if err != nil {
			return err
		}
		ids := make([]model.AttrID, len(attrs))
		for i, a := range attrs {
			if ids[i], err = t.Lookup(a); err != nil {
				return err
			}
		}
		return t.Scan(ctx, ids, func(tid model.TupleID, values []table.Value) error {
			mu.Lock()
			rows++
			mu.Unlock()
			return fn(tid, values)
		})
	}()

	err = translateError(err)
	st.metrics.RecordScan(rows, time.Since(start), err)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Export writes the named table as an image to w.
func (st *Store) Export(ctx context.Context, w io.Writer, name string) error {
	cw := &countingWriter{w: w}

	t, err := st.Table(name)
	if err == nil {
		err = image.Encode(ctx, cw, t,
			image.WithCodec(st.opts.codec),
			image.WithCompression(st.opts.compression),
			image.WithResourceController(st.opts.rc),
		)
	}

	err = translateError(err)
	st.logger.LogExport(ctx, name, cw.n, err)
	return err
}

// Import reads a table image from r and registers the table under its
// stored name. opts are applied to the rebuilt table.
func (st *Store) Import(ctx context.Context, r io.Reader, opts ...table.Option) (*table.Table, error) {
	t, err := st.importTable(ctx, r, opts)
	err = translateError(err)

	name, tuples := "", 0
	if t != nil {
		name, tuples = t.Name(), t.Len()
	}
	st.logger.LogImport(ctx, name, tuples, err)
	return t, err
}

func (st *Store) importTable(ctx context.Context, r io.Reader, opts []table.Option) (*table.Table, error) {
	t, err := image.Decode(ctx, r,
		image.WithResourceController(st.opts.rc),
		image.WithTableOptions(st.tableOptions(opts)...),
	)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		_ = t.Close()
		return nil, ErrClosed
	}
	if _, ok := st.tables[t.Name()]; ok {
		_ = t.Close()
		return nil, fmt.Errorf("%w: %q", ErrTableExists, t.Name())
	}
	st.tables[t.Name()] = t
	return t, nil
}

// Close releases every table. Further operations fail with ErrClosed.
func (st *Store) Close() error {
	if st == nil {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return nil
	}
	st.closed = true

	var firstErr error
	for name, t := range st.tables {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(st.tables, name)
	}
	return firstErr
}
