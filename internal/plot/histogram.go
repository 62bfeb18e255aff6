package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/soltixdb/modelviz/internal/dataset"
)

// Bins is a 1D frequency histogram. Counts[i] covers [Edges[i], Edges[i+1]).
type Bins struct {
	Edges  []float64
	Counts []int
}

// Total returns the number of values counted.
func (b *Bins) Total() int {
	n := 0
	for _, c := range b.Counts {
		n += c
	}
	return n
}

// MaxCount returns the largest bin count.
func (b *Bins) MaxCount() int {
	top := 0
	for _, c := range b.Counts {
		if c > top {
			top = c
		}
	}
	return top
}

// Bin1D counts finite values into n equal-width bins.
func Bin1D(values []float64, n int) (*Bins, error) {
	if n <= 0 {
		n = defaultHistogramBins
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	finite := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		finite++
	}
	if finite == 0 {
		return nil, fmt.Errorf("%w: no finite values", dataset.ErrEmptyData)
	}
	lo, hi = valueSpan(lo, hi)

	b := &Bins{Edges: make([]float64, n+1), Counts: make([]int, n)}
	width := (hi - lo) / float64(n)
	for i := range b.Edges {
		b.Edges[i] = lo + float64(i)*width
	}
	b.Edges[n] = hi

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		b.Counts[binIndex(v, lo, hi, n)]++
	}
	return b, nil
}

// HistogramBuilder renders a frequency histogram of every sample value with
// values on the vertical axis.
type HistogramBuilder struct{}

// Kind implements Builder.
func (HistogramBuilder) Kind() Kind { return KindHistogram }

// Build implements Builder. A scalar overlay is drawn as a horizontal
// reference line.
func (b HistogramBuilder) Build(m dataset.Matrix, overlay *dataset.Overlay, opts Options) (*Artifact, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("%w: %dx%d matrix", dataset.ErrEmptyData, m.Rows(), m.Cols())
	}
	ref, hasRef := overlay.Scalar()
	if overlay != nil && !hasRef {
		return nil, fmt.Errorf("%w: histogram reference must be a single value, got %d", dataset.ErrInvalidShape, overlay.Len())
	}

	hopts := opts.Histogram
	bins, err := Bin1D(m.Values(), hopts.Bins)
	if err != nil {
		return nil, err
	}

	xmax := float64(bins.MaxCount()) * 1.05
	ymin, ymax := bins.Edges[0], bins.Edges[len(bins.Edges)-1]

	title := opts.resolvedTitle(KindHistogram)
	series := []chart.Series{barSeries{
		name:  "Frequency",
		bins:  bins,
		color: parseColor(hopts.BarColor, chart.ColorBlue),
	}}
	if hasRef {
		width := hopts.LineWidth
		if width <= 0 {
			width = 2
		}
		series = append(series, overlaySeries{
			name:  opts.Overlay.Name,
			xs:    []float64{0, xmax},
			ys:    []float64{ref, ref},
			color: parseColor(hopts.LineColor, chart.ColorRed),
			width: width,
			dash:  dashPatterns[hopts.LineDash],
			mode:  ModeLines,
		})
		ymin, ymax = extendRange(ymin, ymax, []float64{ref})
	}

	c := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  opts.XTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: xmax},
		},
		YAxis: chart.YAxis{
			Name:  opts.YTitle,
			Range: &chart.ContinuousRange{Min: ymin, Max: ymax},
		},
		Series: series,
	}

	return &Artifact{Kind: KindHistogram, Title: title, Chart: c, Histogram: bins}, nil
}
