package matrix

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/pkg/errors"
)

var (
	ErrDimension = errors.New("matrix dimension must be positive")
	ErrLayout    = errors.New("layout does not fit matrix")
)

// Layout describes Count elements starting at Offset, Stride elements apart,
// in the row-major buffer of a matrix.
type Layout struct {
	Offset int
	Count  int
	Stride int
}

func RowLayout(n, i int) Layout {
	return Layout{Offset: i * n, Count: n, Stride: 1}
}

func ColumnLayout(n, j int) Layout {
	return Layout{Offset: j, Count: n, Stride: n}
}

func (l Layout) last() int {
	return l.Offset + (l.Count-1)*l.Stride
}

// Matrix is a square matrix of int32 stored row-major in one buffer.
type Matrix struct {
	n      int
	stride int
	data   []int32
}

func New(n int) (*Matrix, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrDimension, "got %d", n)
	}
	return &Matrix{n: n, stride: n, data: make([]int32, n*n)}, nil
}

// FromRows copies a square slice of rows into a new matrix.
func FromRows(rows [][]int32) (*Matrix, error) {
	m, err := New(len(rows))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.n {
			return nil, errors.Wrapf(ErrDimension, "row %d has %d elements, want %d", i, len(row), m.n)
		}
		copy(m.data[i*m.stride:], row)
	}
	return m, nil
}

func (m *Matrix) N() int {
	return m.n
}

func (m *Matrix) At(i, j int) int32 {
	return m.data[i*m.stride+j]
}

func (m *Matrix) Set(i, j int, v int32) {
	m.data[i*m.stride+j] = v
}

// Fill overwrites every element with a value drawn from r.
func (m *Matrix) Fill(r *rand.Rand) {
	for i := range m.data {
		m.data[i] = r.Int31()
	}
}

func (m *Matrix) check(l Layout) error {
	if l.Count <= 0 || l.Stride <= 0 || l.Offset < 0 || l.last() >= len(m.data) {
		return errors.Wrapf(ErrLayout, "%+v in %dx%d", l, m.n, m.n)
	}
	return nil
}

// Gather copies the elements described by l into dst, growing it if needed.
func (m *Matrix) Gather(l Layout, dst []int32) ([]int32, error) {
	if err := m.check(l); err != nil {
		return nil, err
	}
	if cap(dst) < l.Count {
		dst = make([]int32, l.Count)
	}
	dst = dst[:l.Count]
	for k, idx := 0, l.Offset; k < l.Count; k, idx = k+1, idx+l.Stride {
		dst[k] = m.data[idx]
	}
	return dst, nil
}

// Scatter writes src back to the elements described by l.
func (m *Matrix) Scatter(l Layout, src []int32) error {
	if err := m.check(l); err != nil {
		return err
	}
	if len(src) != l.Count {
		return errors.Wrapf(ErrLayout, "got %d elements for %+v", len(src), l)
	}
	for k, idx := 0, l.Offset; k < l.Count; k, idx = k+1, idx+l.Stride {
		m.data[idx] = src[k]
	}
	return nil
}

func (m *Matrix) Row(i int) []int32 {
	row, _ := m.Gather(RowLayout(m.n, i), nil)
	return row
}

func (m *Matrix) Clone() *Matrix {
	c := &Matrix{n: m.n, stride: m.stride, data: make([]int32, len(m.data))}
	copy(c.data, m.data)
	return c
}

func (m *Matrix) Equal(o *Matrix) bool {
	if o == nil || m.n != o.n {
		return false
	}
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.At(i, j) != o.At(i, j) {
				return false
			}
		}
	}
	return true
}

// Values returns every element in row-major order.
func (m *Matrix) Values() []int32 {
	res := make([]int32, 0, m.n*m.n)
	for i := 0; i < m.n; i++ {
		res = append(res, m.Row(i)...)
	}
	return res
}

/*
	DiagonalsSorted reports whether every diagonal running down and to the right is
	non-decreasing. The diagonals starting in column 0 are checked first, then those
	starting in row 0. The scan stops at the first violation.
*/
func (m *Matrix) DiagonalsSorted() bool {
	for start := 0; start < m.n-1; start++ {
		for i, j := start, 0; i+1 < m.n; i, j = i+1, j+1 {
			if m.At(i, j) > m.At(i+1, j+1) {
				return false
			}
		}
	}
	for start := 1; start < m.n-1; start++ {
		for i, j := 0, start; j+1 < m.n; i, j = i+1, j+1 {
			if m.At(i, j) > m.At(i+1, j+1) {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) Print(w io.Writer) {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			fmt.Fprintf(w, "%12d", m.At(i, j))
		}
		fmt.Fprintln(w)
	}
}

// PrintDiagonals writes the diagonals in the order DiagonalsSorted checks them.
func (m *Matrix) PrintDiagonals(w io.Writer) {
	for start := 0; start < m.n; start++ {
		for i, j := start, 0; i < m.n; i, j = i+1, j+1 {
			fmt.Fprintf(w, "%12d", m.At(i, j))
		}
		fmt.Fprintln(w)
	}
	for start := 1; start < m.n; start++ {
		for i, j := 0, start; j < m.n; i, j = i+1, j+1 {
			fmt.Fprintf(w, "%12d", m.At(i, j))
		}
		fmt.Fprintln(w)
	}
}
