package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Frame is a row-labeled, column-named numeric table. Missing values are
// encoded as NaN. Row labels and column names are unique within a Frame.
type Frame struct {
	rows []string
	cols []string
	data *mat.Dense
}

// New builds a Frame from row labels, column names, and row-major values.
// len(values) must equal len(rows)*len(cols).
func New(rows, cols []string, values []float64) (*Frame, error) {
	if len(values) != len(rows)*len(cols) {
		return nil, fmt.Errorf("frame: %d values for %d rows x %d cols", len(values), len(rows), len(cols))
	}
	if dup := firstDuplicate(rows); dup != "" {
		return nil, fmt.Errorf("frame: duplicate row label %q", dup)
	}
	if dup := firstDuplicate(cols); dup != "" {
		return nil, fmt.Errorf("frame: duplicate column name %q", dup)
	}
	f := &Frame{
		rows: append([]string(nil), rows...),
		cols: append([]string(nil), cols...),
		data: mat.NewDense(len(rows), len(cols), append([]float64(nil), values...)),
	}
	return f, nil
}

func firstDuplicate(labels []string) string {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return l
		}
		seen[l] = true
	}
	return ""
}

// Rows returns the row labels in order.
func (f *Frame) Rows() []string { return append([]string(nil), f.rows...) }

// Cols returns the column names in order.
func (f *Frame) Cols() []string { return append([]string(nil), f.cols...) }

// NumRows reports the number of observation rows.
func (f *Frame) NumRows() int { return len(f.rows) }

// NumCols reports the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// At returns the value at row i, column j.
func (f *Frame) At(i, j int) float64 { return f.data.At(i, j) }

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]float64, error) {
	j := f.colIndex(name)
	if j < 0 {
		return nil, &ColumnNotFoundError{Column: name}
	}
	out := make([]float64, len(f.rows))
	mat.Col(out, j, f.data)
	return out, nil
}

// Matrix returns a dense copy of the frame's values.
func (f *Frame) Matrix() *mat.Dense {
	return mat.DenseCopyOf(f.data)
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	return &Frame{
		rows: append([]string(nil), f.rows...),
		cols: append([]string(nil), f.cols...),
		data: mat.DenseCopyOf(f.data),
	}
}

func (f *Frame) colIndex(name string) int {
	for j, c := range f.cols {
		if c == name {
			return j
		}
	}
	return -1
}

func (f *Frame) rowIndex(label string) int {
	for i, r := range f.rows {
		if r == label {
			return i
		}
	}
	return -1
}

// SelectRows returns a new Frame restricted to the given row labels, in the
// given order. Unknown labels are an error.
func (f *Frame) SelectRows(labels []string) (*Frame, error) {
	data := make([]float64, 0, len(labels)*len(f.cols))
	for _, l := range labels {
		i := f.rowIndex(l)
		if i < 0 {
			return nil, fmt.Errorf("frame: unknown row label %q", l)
		}
		data = append(data, f.data.RawRowView(i)...)
	}
	return New(labels, f.cols, data)
}

// Drop returns a new Frame without the named columns. Every name must be
// present; a missing one is a ColumnNotFoundError.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	if len(names) == 0 {
		return f, nil
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if f.colIndex(n) < 0 {
			return nil, &ColumnNotFoundError{Column: n}
		}
		drop[n] = true
	}
	var cols []string
	for _, c := range f.cols {
		if !drop[c] {
			cols = append(cols, c)
		}
	}
	data := make([]float64, 0, len(f.rows)*len(cols))
	for i := range f.rows {
		for j, c := range f.cols {
			if !drop[c] {
				data = append(data, f.data.At(i, j))
			}
		}
	}
	return New(f.rows, cols, data)
}

// HasMissing reports whether any cell in row i is NaN.
func (f *Frame) HasMissing(i int) bool {
	for j := range f.cols {
		if math.IsNaN(f.data.At(i, j)) {
			return true
		}
	}
	return false
}

// Min returns the smallest non-NaN value in the frame.
func (f *Frame) Min() float64 {
	min := math.Inf(1)
	r, c := f.data.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := f.data.At(i, j); !math.IsNaN(v) && v < min {
				min = v
			}
		}
	}
	return min
}

// Equal reports whether two frames carry identical labels and bit-identical
// values (NaN compares equal to NaN).
func (f *Frame) Equal(g *Frame) bool {
	if len(f.rows) != len(g.rows) || len(f.cols) != len(g.cols) {
		return false
	}
	for i := range f.rows {
		if f.rows[i] != g.rows[i] {
			return false
		}
	}
	for j := range f.cols {
		if f.cols[j] != g.cols[j] {
			return false
		}
	}
	for i := range f.rows {
		for j := range f.cols {
			a, b := f.data.At(i, j), g.data.At(i, j)
			if math.IsNaN(a) && math.IsNaN(b) {
				continue
			}
			if math.Float64bits(a) != math.Float64bits(b) {
				return false
			}
		}
	}
	return true
}
