package table

import (
	"fmt"
	"io"

	"github.com/hupe1980/gridstore/fragment"
	"github.com/hupe1980/gridstore/model"
	"github.com/hupe1980/gridstore/schema"
)

// Dump prints up to limit live tuples, skipping the first offset live ones.
// A limit <= 0 prints every tuple.
func (t *Table) Dump(w io.Writer, offset, limit int) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	attrs := t.schema.Attrs()
	header := make([]string, 0, len(attrs)+1)
	header = append(header, "#")
	for _, a := range attrs {
		header = append(header, a.Name)
	}

	var cells [][]string
	skipped := 0
	for tid := model.TupleID(0); tid < t.nextTID; tid++ {
		if limit > 0 && len(cells) >= limit {
			break
		}
		if t.deleted.Contains(uint64(tid)) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprint(tid))
		for _, a := range attrs {
			_, f, err := t.open(tid, a.ID)
			if err != nil {
				return err
			}
			row = append(row, f.String())
		}
		cells = append(cells, row)
	}
	return fragment.PrintTable(w, header, cells)
}

// DumpStructure prints the attribute catalog of the table.
func (t *Table) DumpStructure(w io.Writer) error {
	attrs := t.schema.Attrs()
	return printMeta(w, "structure", []schema.Def{
		schema.Scalar("attr", schema.TypeAttrID),
		schema.Char("name", schema.MaxNameLen),
		schema.Char("type", 16),
		schema.Scalar("size", schema.TypeSize),
		schema.Scalar("offset", schema.TypeSize),
		schema.Char("flags", 48),
	}, len(attrs), func(i int) []any {
		a := attrs[i]
		typ := a.Type.String()
		if a.Rep > 1 {
			typ = fmt.Sprintf("%s[%d]", typ, a.Rep)
		}
		return []any{a.ID, a.Name, truncate(typ, 16), a.Size(), t.schema.Offset(a.ID), a.Flags.String()}
	})
}

// DumpGrids prints one row per grid with its coverage and fill level.
func (t *Table) DumpGrids(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	grids := t.grids
	return printMeta(w, "grids", []schema.Def{
		schema.Scalar("grid", schema.TypeGridID),
		schema.Scalar("layout", schema.TypeLayout),
		schema.Scalar("rows", schema.TypeSize),
		schema.Scalar("capacity", schema.TypeSize),
		schema.Scalar("live", schema.TypeSize),
		schema.Char("coverage", 64),
		schema.Char("attrs", 64),
	}, len(grids), func(i int) []any {
		g := grids[i]
		return []any{g.ID(), uint8(g.Fragment().Layout()), g.Len(), g.Cap(), g.Live(), truncate(fmt.Sprint(g.Coverage()), 64), truncate(fmt.Sprint(g.Attrs()), 64)}
	})
}

// DumpIndexes prints the vertical index followed by the horizontal index.
func (t *Table) DumpIndexes(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	type vrow struct {
		attr model.AttrID
		grid model.GridID
	}
	var vrows []vrow
	for _, a := range t.vindex.Keys() {
		for _, g := range t.vindex.Grids(a) {
			vrows = append(vrows, vrow{a, g.ID()})
		}
	}
	err := printMeta(w, "vindex", []schema.Def{
		schema.Scalar("attr", schema.TypeAttrID),
		schema.Scalar("grid", schema.TypeGridID),
	}, len(vrows), func(i int) []any {
		return []any{vrows[i].attr, vrows[i].grid}
	})
	if err != nil {
		return err
	}

	entries := t.hindex.Entries()
	return printMeta(w, "hindex", []schema.Def{
		schema.Scalar("begin", schema.TypeTupleID),
		schema.Scalar("end", schema.TypeTupleID),
		schema.Scalar("grid", schema.TypeGridID),
	}, len(entries), func(i int) []any {
		e := entries[i]
		return []any{e.Interval.Begin, e.Interval.End, e.Grid.ID()}
	})
}

// printMeta materializes n metadata rows into a scratch fragment and prints it.
func printMeta(w io.Writer, name string, defs []schema.Def, n int, row func(int) []any) error {
	s, err := schema.New(name, defs...)
	if err != nil {
		return err
	}
	f, err := fragment.New(s, max(n, 1), fragment.NSM)
	if err != nil {
		return err
	}
	defer f.Dispose() //nolint:errcheck // scratch fragment

	if n > 0 {
		tp, err := f.Insert(n)
		if err != nil {
			return err
		}
		for i := range n {
			field := tp.Field()
			for j, v := range row(i) {
				if j > 0 {
					field.Next(false)
				}
				if err := field.Set(v); err != nil {
					return err
				}
			}
			tp.Next()
		}
	}
	return fragment.Print(w, f, 0, 0)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
