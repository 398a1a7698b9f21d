// Package preview renders the head of a frame as a text table.
package preview

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ryuk2git/dspipeline/pkg/frame"
)

// Render writes up to limit rows of f to w, prefixed by the row identity.
// A non-positive limit renders every row.
func Render(w io.Writer, f *frame.Frame, limit int) {
	if f.NumRows() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"#"}
	for _, n := range f.Names() {
		header = append(header, n)
	}
	t.AppendHeader(header)

	n := f.NumRows()
	if limit > 0 {
		n = min(n, limit)
	}
	index := f.Index()
	for i := range n {
		row := table.Row{index[i]}
		for _, v := range f.Row(i) {
			row = append(row, strconv.FormatFloat(v, 'g', 4, 64))
		}
		t.AppendRow(row)
	}

	t.Render()
	if n < f.NumRows() {
		_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", n, f.NumRows())
	} else {
		_, _ = fmt.Fprintf(w, "(%d rows)\n", n)
	}
}
