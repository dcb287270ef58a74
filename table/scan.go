package table

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/grid"
	"github.com/hupe1980/gridstore/model"
)

// ScanFunc receives one live tuple. values holds the scanned attributes in the
// order they were requested. It may be called concurrently from several
// goroutines. The table lock is not held while it runs, so it may read or
// modify the table.
type ScanFunc func(tid model.TupleID, values []Value) error

// scanRow is one tuple copied out of a grid.
type scanRow struct {
	tid    model.TupleID
	values []Value
}

// Scan visits every live tuple, reading attrs. Grids storing attrs[0] are
// scanned in parallel; attributes held by other grids are resolved per tuple.
// Without attrs every attribute is read. The first error cancels the scan.
//
// Each grid is copied under the read lock and handed to fn after the lock is
// released. Changes made while the scan runs may or may not be observed, and
// grids opened after the scan started are not visited.
func (t *Table) Scan(ctx context.Context, attrs []model.AttrID, fn ScanFunc) error {
	if len(attrs) == 0 {
		attrs = t.schema.IDs()
	}
	for _, a := range attrs {
		if int(a) >= t.schema.Len() {
			return fmt.Errorf("%w: attribute %d of table %q with %d attributes", model.ErrOutOfBounds, a, t.Name(), t.schema.Len())
		}
	}

	t.mu.RLock()
	c := t.vindex.Query(attrs[0])
	c.Dedup()
	grids := c.Grids()
	c.Close()
	t.mu.RUnlock()

	workers := t.opts.scanWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
		if rc := t.opts.rc; rc != nil {
			workers = min(workers, rc.MaxBackgroundWorkers())
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, gr := range grids {
		g.Go(func() error {
			if t.opts.rc != nil {
				if err := t.opts.rc.AcquireBackground(ctx); err != nil {
					return err
				}
				defer t.opts.rc.ReleaseBackground()
			}
			rows, err := t.collect(ctx, gr, attrs)
			if err != nil {
				return err
			}
			for i, r := range rows {
				if i%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if err := fn(r.tid, r.values); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// collect copies the live rows of g under the read lock. A grid freed since
// the scan started yields nothing.
func (t *Table) collect(ctx context.Context, g *grid.Grid, attrs []model.AttrID) ([]scanRow, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.byID[g.ID()] != g {
		return nil, nil
	}

	frag := g.Fragment()
	marks := frag.Marks()
	rows := make([]scanRow, 0, g.Len())

	for row := range g.Len() {
		if row%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if marks.Deleted(row) {
			continue
		}
		tid := g.TupleAt(row)
		values := make([]Value, len(attrs))
		for i, a := range attrs {
			attr, _ := t.schema.Attr(a)
			if local, ok := g.LocalAttr(a); ok {
				tp, err := frag.Open(row)
				if err != nil {
					return nil, err
				}
				f, err := tp.Seek(local)
				if err != nil {
					return nil, err
				}
				values[i] = valueOf(f, attr)
				continue
			}
			_, f, err := t.open(tid, a)
			if err != nil {
				return nil, err
			}
			values[i] = valueOf(f, attr)
		}
		rows = append(rows, scanRow{tid: tid, values: values})
	}
	return rows, nil
}

// Melt copies attrs of every live tuple, in TupleID order, into a new NSM
// fragment and returns it with the TupleIDs of its rows. Without attrs every
// attribute is copied. Null flags are carried over. The caller disposes the
// fragment.
func (t *Table) Melt(attrs ...model.AttrID) (fragment.Fragment, []model.TupleID, error) {
	if len(attrs) == 0 {
		attrs = t.schema.IDs()
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var tids []model.TupleID
	for tid := model.TupleID(0); tid < t.nextTID; tid++ {
		if !t.deleted.Contains(uint64(tid)) {
			tids = append(tids, tid)
		}
	}
	if len(tids) == 0 {
		return nil, nil, fmt.Errorf("%w: table %q has no live tuples to melt", model.ErrIllegalArgument, t.Name())
	}

	s, err := t.schema.Subset(t.Name(), attrs...)
	if err != nil {
		return nil, nil, err
	}
	out, err := fragment.New(s, len(tids), fragment.NSM, t.fragOpts...)
	if err != nil {
		return nil, nil, err
	}
	tp, err := out.Insert(len(tids))
	if err != nil {
		_ = out.Dispose()
		return nil, nil, err
	}

	for _, tid := range tids {
		dst := tp.Field()
		for i, a := range attrs {
			if i > 0 {
				dst.Next(false)
			}
			_, src, err := t.open(tid, a)
			if err != nil {
				_ = out.Dispose()
				return nil, nil, err
			}
			if src.IsNull() {
				dst.SetNull()
				continue
			}
			if err := dst.Update(src.Read()); err != nil {
				_ = out.Dispose()
				return nil, nil, err
			}
		}
		tp.Next()
	}
	return out, tids, nil
}
