package fragment

import (
	"bufio"
	"io"
	"strings"

	"github.com/hupe1980/gridstore/model"
)

// Print renders up to limit rows of f, starting at row offset, as a boxed
// console table. Deleted rows are skipped. A limit <= 0 prints every row.
func Print(w io.Writer, f Fragment, offset, limit int) error {
	s := f.Schema()
	rows := visibleRows(f, offset, limit)

	cells := make([][]string, len(rows))
	widths := make([]int, s.Len())
	for i, a := range s.Attrs() {
		widths[i] = len(a.Name)
	}
	for r, row := range rows {
		t, err := f.Open(row)
		if err != nil {
			return err
		}
		field := t.Field()
		cells[r] = make([]string, s.Len())
		for i := range widths {
			cells[r][i] = field.String()
			widths[i] = max(widths[i], field.PrintLen())
			field.Next(false)
		}
	}

	header := make([]string, s.Len())
	for i, a := range s.Attrs() {
		header[i] = a.Name
	}

	return writeTable(w, widths, header, cells)
}

func visibleRows(f Fragment, offset, limit int) []int {
	var rows []int
	for row := max(offset, 0); row < f.Len(); row++ {
		if limit > 0 && len(rows) >= limit {
			break
		}
		if f.Marks().Deleted(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// PrintTable renders pre-formatted cells in the same boxed format as Print.
func PrintTable(w io.Writer, header []string, cells [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range cells {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], len(row[i]))
			}
		}
	}
	return writeTable(w, widths, header, cells)
}

func writeTable(w io.Writer, widths []int, header []string, cells [][]string) error {
	bw := bufio.NewWriter(w)

	line := func() {
		for _, width := range widths {
			bw.WriteByte('+')
			bw.WriteString(strings.Repeat("-", width+2))
		}
		bw.WriteString("+\n")
	}
	row := func(values []string) {
		for i, width := range widths {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			bw.WriteString("| ")
			bw.WriteString(v)
			bw.WriteString(strings.Repeat(" ", width-len(v)+1))
		}
		bw.WriteString("|\n")
	}

	line()
	row(header)
	line()
	for _, values := range cells {
		row(values)
	}
	if len(cells) > 0 {
		line()
	}
	return bw.Flush()
}

// AppendColumn appends the encoded values of attribute attr for every
// occupied row of f to dst.
func AppendColumn(dst []byte, f Fragment, attr model.AttrID) []byte {
	if d, ok := f.(*dsmFragment); ok {
		return append(dst, d.Column(attr)...)
	}
	for row := 0; row < f.Len(); row++ {
		dst = append(dst, f.Slot(row, attr)...)
	}
	return dst
}
