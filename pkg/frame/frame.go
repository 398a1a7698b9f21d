// Package frame provides the labeled table that flows between pipeline steps.
package frame

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Frame is an immutable, column-major table of float64 values with named
// columns and a row index. The index carries row identity: derivations that
// drop or reorder rows keep the identities of the surviving rows, so two
// frames produced from the same input can be joined by row rather than by
// position.
//
// Frames never mutate after construction. Derived frames may share column
// storage with their parent.
type Frame struct {
	names []string
	cols  [][]float64
	index []int
	pos   map[string]int
}

// New builds a frame from column names and column-major data. The inputs are
// copied. All columns must have the same length and names must be unique and
// non-empty.
func New(names []string, cols [][]float64) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrNotTable, len(names), len(cols))
	}
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0])
	}
	data := make([][]float64, len(cols))
	for j, c := range cols {
		if len(c) != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrNotTable, names[j], len(c), rows)
		}
		data[j] = slices.Clone(c)
	}
	return build(slices.Clone(names), data, sequence(rows))
}

// FromRows builds a frame from row-major data. Every row must have one value
// per name.
func FromRows(names []string, rows [][]float64) (*Frame, error) {
	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrNotTable, i, len(row), len(names))
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}
	return build(slices.Clone(names), cols, sequence(len(rows)))
}

// FromDense builds a frame from a gonum matrix, one name per matrix column.
func FromDense(names []string, m mat.Matrix) (*Frame, error) {
	r, c := m.Dims()
	if len(names) != c {
		return nil, fmt.Errorf("%w: %d names for %d matrix columns", ErrNotTable, len(names), c)
	}
	cols := make([][]float64, c)
	for j := range c {
		cols[j] = mat.Col(nil, j, m)
	}
	return build(slices.Clone(names), cols, sequence(r))
}

func build(names []string, cols [][]float64, index []int) (*Frame, error) {
	pos := make(map[string]int, len(names))
	for j, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", ErrNotTable, j)
		}
		if _, dup := pos[n]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrNotTable, n)
		}
		pos[n] = j
	}
	return &Frame{names: names, cols: cols, index: index, pos: pos}, nil
}

func sequence(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Names returns the column names in order.
func (f *Frame) Names() []string { return slices.Clone(f.names) }

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return len(f.index) }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.names) }

// Has reports whether the frame has a column with the given name.
func (f *Frame) Has(name string) bool {
	_, ok := f.pos[name]
	return ok
}

// Index returns the row identities in row order.
func (f *Frame) Index() []int { return slices.Clone(f.index) }

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	j, ok := f.pos[name]
	if !ok {
		return nil, missing([]string{name}, f.names)
	}
	return slices.Clone(f.cols[j]), nil
}

// Row returns a copy of row i, in column order.
func (f *Frame) Row(i int) []float64 {
	row := make([]float64, len(f.cols))
	for j, c := range f.cols {
		row[j] = c[i]
	}
	return row
}

// At returns the value at row i of the named column. It panics if the column
// does not exist.
func (f *Frame) At(i int, name string) float64 {
	j, ok := f.pos[name]
	if !ok {
		panic(fmt.Sprintf("frame: no column %q", name))
	}
	return f.cols[j][i]
}

// Dense returns the named columns (all columns when none are given) as a
// rows×columns gonum matrix.
func (f *Frame) Dense(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		names = f.names
	}
	if err := f.require(names); err != nil {
		return nil, err
	}
	r := f.NumRows()
	if r == 0 || len(names) == 0 {
		return nil, fmt.Errorf("%w: cannot build a matrix from %d rows and %d columns", ErrNotTable, r, len(names))
	}
	m := mat.NewDense(r, len(names), nil)
	for j, n := range names {
		m.SetCol(j, f.cols[f.pos[n]])
	}
	return m, nil
}

func (f *Frame) require(names []string) error {
	var absent []string
	for _, n := range names {
		if !f.Has(n) {
			absent = append(absent, n)
		}
	}
	if len(absent) > 0 {
		return &MissingFeatureError{Requested: slices.Clone(names), Missing: absent, Available: f.Names()}
	}
	return nil
}

// Select returns a frame holding only the named columns, in the given order.
// Any name not present yields a *MissingFeatureError.
func (f *Frame) Select(names ...string) (*Frame, error) {
	if err := f.require(names); err != nil {
		return nil, err
	}
	cols := make([][]float64, len(names))
	for j, n := range names {
		cols[j] = f.cols[f.pos[n]]
	}
	return build(slices.Clone(names), cols, f.index)
}

// Drop returns a frame without the named columns. Names that are not present
// are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	keep := make([]string, 0, len(f.names))
	for _, n := range f.names {
		if !slices.Contains(names, n) {
			keep = append(keep, n)
		}
	}
	out, _ := f.Select(keep...)
	return out
}

// Take returns the rows at the given positions, in that order, keeping their
// identities.
func (f *Frame) Take(positions []int) *Frame {
	cols := make([][]float64, len(f.cols))
	for j, c := range f.cols {
		nc := make([]float64, len(positions))
		for i, p := range positions {
			nc[i] = c[p]
		}
		cols[j] = nc
	}
	index := make([]int, len(positions))
	for i, p := range positions {
		index[i] = f.index[p]
	}
	return &Frame{names: f.names, cols: cols, index: index, pos: f.pos}
}

// Filter returns the rows for which keep returns true.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	positions := make([]int, 0, f.NumRows())
	for i := range f.NumRows() {
		if keep(i) {
			positions = append(positions, i)
		}
	}
	return f.Take(positions)
}

// WithColumn returns a frame with the named column appended, or replaced in
// place when it already exists.
func (f *Frame) WithColumn(name string, values []float64) (*Frame, error) {
	if len(values) != f.NumRows() {
		return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrNotTable, name, len(values), f.NumRows())
	}
	names := slices.Clone(f.names)
	cols := slices.Clone(f.cols)
	if j, ok := f.pos[name]; ok {
		cols[j] = slices.Clone(values)
	} else {
		names = append(names, name)
		cols = append(cols, slices.Clone(values))
	}
	return build(names, cols, f.index)
}

// Rename returns a frame with columns renamed according to the mapping.
func (f *Frame) Rename(mapping map[string]string) (*Frame, error) {
	names := slices.Clone(f.names)
	for j, n := range names {
		if to, ok := mapping[n]; ok {
			names[j] = to
		}
	}
	return build(names, f.cols, f.index)
}

// WithIndex returns a frame with the given row identities. Identities must be
// unique.
func (f *Frame) WithIndex(index []int) (*Frame, error) {
	if len(index) != f.NumRows() {
		return nil, fmt.Errorf("%w: index has %d entries, want %d", ErrNotTable, len(index), f.NumRows())
	}
	seen := make(map[int]struct{}, len(index))
	for _, id := range index {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate row identity %d", ErrNotTable, id)
		}
		seen[id] = struct{}{}
	}
	return &Frame{names: f.names, cols: f.cols, index: slices.Clone(index), pos: f.pos}, nil
}

// ResetIndex returns a frame whose row identities are 0..n-1 in row order.
func (f *Frame) ResetIndex() *Frame {
	return &Frame{names: f.names, cols: f.cols, index: sequence(f.NumRows()), pos: f.pos}
}

// AppendRows returns a frame with the given rows added at the end. New rows
// receive identities greater than any existing identity.
func (f *Frame) AppendRows(rows [][]float64) (*Frame, error) {
	next := 0
	for _, id := range f.index {
		next = max(next, id+1)
	}
	cols := make([][]float64, len(f.cols))
	for j, c := range f.cols {
		cols[j] = slices.Grow(slices.Clone(c), len(rows))
	}
	index := slices.Grow(slices.Clone(f.index), len(rows))
	for i, row := range rows {
		if len(row) != len(f.names) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrNotTable, i, len(row), len(f.names))
		}
		for j, v := range row {
			cols[j] = append(cols[j], v)
		}
		index = append(index, next+i)
	}
	return &Frame{names: f.names, cols: cols, index: index, pos: f.pos}, nil
}

// Equal reports whether both frames have the same names, identities and
// values. NaN values compare equal to each other.
func (f *Frame) Equal(g *Frame) bool {
	if f == nil || g == nil {
		return f == g
	}
	if !slices.Equal(f.names, g.names) || !slices.Equal(f.index, g.index) {
		return false
	}
	for j := range f.cols {
		for i, v := range f.cols[j] {
			w := g.cols[j][i]
			if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
				return false
			}
		}
	}
	return true
}

// String returns a short shape summary.
func (f *Frame) String() string {
	return fmt.Sprintf("frame[%d×%d]", f.NumRows(), f.NumCols())
}
