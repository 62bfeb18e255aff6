package dataset

import (
	"fmt"
	"math"
)

// Matrix is an immutable N×T sample matrix stored row-major.
// Rows are samples (trials), columns are time steps.
type Matrix struct {
	data []float64
	rows int
	cols int
}

// New creates a matrix from a row-major buffer. The buffer is copied.
func New(data []float64, rows, cols int) (Matrix, error) {
	if rows < 0 || cols < 0 {
		return Matrix{}, fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidShape, rows, cols)
	}
	if len(data) != rows*cols {
		return Matrix{}, fmt.Errorf("%w: %d values do not fill %dx%d", ErrInvalidShape, len(data), rows, cols)
	}

	buf := make([]float64, len(data))
	copy(buf, data)
	return Matrix{data: buf, rows: rows, cols: cols}, nil
}

// FromRows creates a matrix from a slice of equally sized rows.
func FromRows(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, nil
	}

	cols := len(rows[0])
	buf := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return Matrix{}, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidShape, i, len(row), cols)
		}
		buf = append(buf, row...)
	}

	return Matrix{data: buf, rows: len(rows), cols: cols}, nil
}

// Rows returns the number of samples.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of time steps.
func (m Matrix) Cols() int { return m.cols }

// Len returns the number of values (rows*cols).
func (m Matrix) Len() int { return len(m.data) }

// IsEmpty reports whether either axis has zero length.
func (m Matrix) IsEmpty() bool { return m.rows == 0 || m.cols == 0 }

// At returns the value of sample i at time step t.
func (m Matrix) At(i, t int) float64 {
	return m.data[i*m.cols+t]
}

// Row returns a copy of sample i.
func (m Matrix) Row(i int) []float64 {
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// Col returns a copy of time step t across all samples.
func (m Matrix) Col(t int) []float64 {
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = m.data[i*m.cols+t]
	}
	return out
}

// Values returns a copy of all values in row-major order.
func (m Matrix) Values() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Transpose returns a new T×N matrix. Stores that persist arrays time-major
// are read through this.
func (m Matrix) Transpose() Matrix {
	out := make([]float64, len(m.data))
	for i := 0; i < m.rows; i++ {
		for t := 0; t < m.cols; t++ {
			out[t*m.rows+i] = m.data[i*m.cols+t]
		}
	}
	return Matrix{data: out, rows: m.cols, cols: m.rows}
}

// Bounds returns the smallest and largest finite value. ok is false when the
// matrix holds no finite value.
func (m Matrix) Bounds() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		ok = true
	}
	return lo, hi, ok
}
