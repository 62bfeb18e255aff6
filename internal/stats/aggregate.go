// Package stats computes per-time-step summary statistics over a sample matrix.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/soltixdb/modelviz/internal/dataset"
)

// Summary holds one five-number summary per time step, in time order.
type Summary struct {
	LowerFence []float64 // column minimum
	Q1         []float64
	Median     []float64
	Q3         []float64
	UpperFence []float64 // column maximum
}

// Len returns the number of time steps summarised.
func (s Summary) Len() int {
	return len(s.Median)
}

// Aggregate computes min, 25th, 50th, 75th percentile and max for every
// column of m. Percentiles interpolate linearly between order statistics.
// Non-finite samples are ignored; a column without finite samples fails with
// ErrEmptyData.
func Aggregate(m dataset.Matrix) (Summary, error) {
	if m.Rows() == 0 || m.Cols() == 0 {
		return Summary{}, fmt.Errorf("%w: cannot aggregate %dx%d matrix", dataset.ErrInvalidShape, m.Rows(), m.Cols())
	}

	cols := m.Cols()
	s := Summary{
		LowerFence: make([]float64, cols),
		Q1:         make([]float64, cols),
		Median:     make([]float64, cols),
		Q3:         make([]float64, cols),
		UpperFence: make([]float64, cols),
	}

	for t := 0; t < cols; t++ {
		sorted := Column(m, t)
		if len(sorted) == 0 {
			return Summary{}, fmt.Errorf("%w: no finite samples at time step %d", dataset.ErrEmptyData, t)
		}
		s.LowerFence[t] = sorted[0]
		s.Q1[t] = Percentile(sorted, 25)
		s.Median[t] = Percentile(sorted, 50)
		s.Q3[t] = Percentile(sorted, 75)
		s.UpperFence[t] = sorted[len(sorted)-1]
	}

	return s, nil
}

// Column returns the finite values of time step t sorted ascending. NaN and
// ±Inf samples are dropped.
func Column(m dataset.Matrix, t int) []float64 {
	col := m.Col(t)
	values := col[:0]
	for _, v := range col {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	sort.Float64s(values)
	return values
}

// Percentile interpolates the p-th percentile (0..100) of ascending data at
// position p/100*(n-1). Empty input yields 0.
func Percentile(sortedData []float64, p float64) float64 {
	if len(sortedData) == 0 {
		return 0
	}
	if len(sortedData) == 1 {
		return sortedData[0]
	}

	index := (p / 100) * float64(len(sortedData)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sortedData) {
		return sortedData[len(sortedData)-1]
	}

	// Linear interpolation
	weight := index - float64(lower)
	return sortedData[lower]*(1-weight) + sortedData[upper]*weight
}

// TukeyWhiskers returns the conventional box-plot whisker ends: the lowest
// datum >= q1-1.5*IQR and the highest datum <= q3+1.5*IQR.
func TukeyWhiskers(sortedData []float64, q1, q3 float64) (lo, hi float64) {
	if len(sortedData) == 0 {
		return 0, 0
	}

	iqr := q3 - q1
	lowerBound := q1 - 1.5*iqr
	upperBound := q3 + 1.5*iqr

	lo, hi = q1, q3
	for _, v := range sortedData {
		if v >= lowerBound {
			lo = v
			break
		}
	}
	for i := len(sortedData) - 1; i >= 0; i-- {
		if sortedData[i] <= upperBound {
			hi = sortedData[i]
			break
		}
	}
	return lo, hi
}
