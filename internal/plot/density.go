package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/soltixdb/modelviz/internal/dataset"
)

// Grid is a binned 2D histogram over (time step, value). Values[ix][iy]
// holds the cell value; NaN marks a cell with no data.
type Grid struct {
	XMin, XMax float64
	YMin, YMax float64
	XBins      int
	YBins      int
	Counts     [][]int
	Values     [][]float64
	// LogScale is set when Values hold log10(count) of a rasterised grid.
	LogScale bool
}

func newGrid(xmin, xmax, ymin, ymax float64, xbins, ybins int) *Grid {
	g := &Grid{
		XMin: xmin, XMax: xmax,
		YMin: ymin, YMax: ymax,
		XBins: xbins, YBins: ybins,
		Counts: make([][]int, xbins),
		Values: make([][]float64, xbins),
	}
	for ix := range g.Counts {
		g.Counts[ix] = make([]int, ybins)
		g.Values[ix] = make([]float64, ybins)
	}
	return g
}

func binIndex(v, lo, hi float64, bins int) int {
	i := int((v - lo) / (hi - lo) * float64(bins))
	if i < 0 {
		return 0
	}
	if i >= bins {
		return bins - 1
	}
	return i
}

// Cell returns the cell indices containing (x, y).
func (g *Grid) Cell(x, y float64) (ix, iy int) {
	return binIndex(x, g.XMin, g.XMax, g.XBins), binIndex(y, g.YMin, g.YMax, g.YBins)
}

// CellBounds returns the data-space extent of a cell.
func (g *Grid) CellBounds(ix, iy int) (x0, x1, y0, y1 float64) {
	dx := (g.XMax - g.XMin) / float64(g.XBins)
	dy := (g.YMax - g.YMin) / float64(g.YBins)
	return g.XMin + float64(ix)*dx, g.XMin + float64(ix+1)*dx,
		g.YMin + float64(iy)*dy, g.YMin + float64(iy+1)*dy
}

// Occupied returns the number of cells holding at least one point.
func (g *Grid) Occupied() int {
	n := 0
	for ix := range g.Counts {
		for _, c := range g.Counts[ix] {
			if c > 0 {
				n++
			}
		}
	}
	return n
}

// ValueRange returns the smallest and largest non-NaN cell value.
func (g *Grid) ValueRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for ix := range g.Values {
		for _, v := range g.Values[ix] {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}

// valueSpan widens a degenerate range so every value falls inside one bin.
func valueSpan(lo, hi float64) (float64, float64) {
	if hi-lo <= 0 {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// extendRange grows [lo, hi] to cover the finite values.
func extendRange(lo, hi float64, values []float64) (float64, float64) {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Rasterize counts every (t, value) point of m into a bins×bins grid and
// replaces counts with log10(count). Empty cells become NaN rather than 0 so
// they stay outside the colour scale.
func Rasterize(m dataset.Matrix, bins int) (*Grid, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("%w: %dx%d matrix", dataset.ErrEmptyData, m.Rows(), m.Cols())
	}
	lo, hi, ok := m.Bounds()
	if !ok {
		return nil, fmt.Errorf("%w: no finite values", dataset.ErrEmptyData)
	}
	lo, hi = valueSpan(lo, hi)

	g := newGrid(-0.5, float64(m.Cols())-0.5, lo, hi, bins, bins)
	g.LogScale = true
	for i := 0; i < m.Rows(); i++ {
		for t := 0; t < m.Cols(); t++ {
			v := m.At(i, t)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			ix, iy := g.Cell(float64(t), v)
			g.Counts[ix][iy]++
		}
	}

	for ix := range g.Counts {
		for iy, c := range g.Counts[ix] {
			if c == 0 {
				g.Values[ix][iy] = math.NaN()
				continue
			}
			g.Values[ix][iy] = math.Log10(float64(c))
		}
	}
	return g, nil
}

// Bin2D buckets m into one x bin per time step and ybins value bins. Each
// cell value is fn applied to the values in that cell; empty cells are NaN.
func Bin2D(m dataset.Matrix, ybins int, fn HistFunc) (*Grid, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("%w: %dx%d matrix", dataset.ErrEmptyData, m.Rows(), m.Cols())
	}
	if err := ValidateHistFunc(string(fn)); err != nil {
		return nil, err
	}
	lo, hi, ok := m.Bounds()
	if !ok {
		return nil, fmt.Errorf("%w: no finite values", dataset.ErrEmptyData)
	}
	lo, hi = valueSpan(lo, hi)

	g := newGrid(-0.5, float64(m.Cols())-0.5, lo, hi, m.Cols(), ybins)
	for ix := range g.Values {
		for iy := range g.Values[ix] {
			g.Values[ix][iy] = math.NaN()
		}
	}

	for i := 0; i < m.Rows(); i++ {
		for t := 0; t < m.Cols(); t++ {
			v := m.At(i, t)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			_, iy := g.Cell(float64(t), v)
			n := g.Counts[t][iy]
			cur := g.Values[t][iy]
			g.Counts[t][iy] = n + 1

			switch fn {
			case HistCount:
				g.Values[t][iy] = float64(n + 1)
			case HistSum:
				if n == 0 {
					cur = 0
				}
				g.Values[t][iy] = cur + v
			case HistAvg:
				if n == 0 {
					cur = 0
				}
				g.Values[t][iy] = cur + (v-cur)/float64(n+1)
			case HistMin:
				if n == 0 || v < cur {
					g.Values[t][iy] = v
				}
			case HistMax:
				if n == 0 || v > cur {
					g.Values[t][iy] = v
				}
			}
		}
	}
	return g, nil
}

// Histogram2DBuilder renders every sample as a density heatmap over time.
type Histogram2DBuilder struct{}

// Kind implements Builder.
func (Histogram2DBuilder) Kind() Kind { return KindHistogram2D }

// Build implements Builder.
func (b Histogram2DBuilder) Build(m dataset.Matrix, overlay *dataset.Overlay, opts Options) (*Artifact, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("%w: %dx%d matrix", dataset.ErrEmptyData, m.Rows(), m.Cols())
	}
	if err := overlay.AlignTo(m.Cols()); err != nil {
		return nil, err
	}

	hopts := opts.Histogram2D.withDefaults()
	scale, err := LookupColorScale(hopts.ColorScale)
	if err != nil {
		return nil, err
	}

	var grid *Grid
	if m.Len() >= hopts.RasterThreshold {
		grid, err = Rasterize(m, hopts.RasterBins)
	} else {
		grid, err = Bin2D(m, hopts.YBins, hopts.HistFunc)
	}
	if err != nil {
		return nil, err
	}

	lo, hi, _ := grid.ValueRange()
	title := opts.resolvedTitle(KindHistogram2D)
	cbTitle := hopts.ColorbarTitle
	if grid.LogScale && cbTitle != "" {
		cbTitle = "log10(" + cbTitle + ")"
	}

	ymin, ymax := grid.YMin, grid.YMax
	series := []chart.Series{heatmapSeries{name: "density", grid: grid, scale: scale, lo: lo, hi: hi}}
	if overlay != nil {
		ov := newOverlaySeries(overlay.Values, m.Cols(), opts.Overlay)
		series = append(series, ov)
		ymin, ymax = extendRange(ymin, ymax, ov.ys)
	}

	c := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 150, Bottom: 20}},
		XAxis:      timeAxis(opts.XTitle, m.Cols(), opts.DateAxis),
		YAxis: chart.YAxis{
			Name:  opts.YTitle,
			Range: &chart.ContinuousRange{Min: ymin, Max: ymax},
		},
		Series:   series,
		Elements: []chart.Renderable{colorbar(scale, lo, hi, cbTitle, hopts.ColorbarTitleSide)},
	}

	return &Artifact{Kind: KindHistogram2D, Title: title, Chart: c, Density: grid}, nil
}
