package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// canvas translates data coordinates into pixels inside the plot area.
type canvas struct {
	box    chart.Box
	xrange chart.Range
	yrange chart.Range
}

func (c canvas) x(v float64) int { return c.box.Left + c.xrange.Translate(v) }
func (c canvas) y(v float64) int { return c.box.Bottom - c.yrange.Translate(v) }

func rectPath(r chart.Renderer, x0, y0, x1, y1 int) {
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
}

func line(r chart.Renderer, x0, y0, x1, y1 int) {
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
}

// heatmapSeries paints every populated grid cell with its scale colour.
type heatmapSeries struct {
	name   string
	grid   *Grid
	scale  ColorScale
	lo, hi float64
}

func (s heatmapSeries) GetName() string           { return s.name }
func (s heatmapSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s heatmapSeries) GetStyle() chart.Style     { return chart.Style{FillColor: s.scale.At(1)} }
func (s heatmapSeries) Validate() error {
	if s.grid == nil {
		return fmt.Errorf("heatmap series %q has no grid", s.name)
	}
	return nil
}

func (s heatmapSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	c := canvas{box: canvasBox, xrange: xrange, yrange: yrange}
	span := s.hi - s.lo

	for ix := 0; ix < s.grid.XBins; ix++ {
		for iy := 0; iy < s.grid.YBins; iy++ {
			v := s.grid.Values[ix][iy]
			if math.IsNaN(v) {
				continue
			}
			frac := 1.0
			if span > 0 {
				frac = (v - s.lo) / span
			}
			col := s.scale.At(frac)

			x0, x1, y0, y1 := s.grid.CellBounds(ix, iy)
			r.SetFillColor(col)
			rectPath(r, c.x(x0), c.y(y1), c.x(x1), c.y(y0))
			r.Fill()
		}
	}
}

// boxSeries draws one box per time step from precomputed statistics.
type boxSeries struct {
	name         string
	boxes        []Box
	color        drawing.Color
	showOutliers bool
}

const boxHalfWidth = 0.3

func (s boxSeries) GetName() string           { return s.name }
func (s boxSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s boxSeries) GetStyle() chart.Style {
	return chart.Style{StrokeColor: s.color, StrokeWidth: 1.5, FillColor: s.color.WithAlpha(64)}
}
func (s boxSeries) Validate() error {
	if len(s.boxes) == 0 {
		return fmt.Errorf("box series %q has no boxes", s.name)
	}
	return nil
}

func (s boxSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	c := canvas{box: canvasBox, xrange: xrange, yrange: yrange}
	fill := s.color.WithAlpha(64)

	for _, b := range s.boxes {
		center := float64(b.Index)
		left, right := c.x(center-boxHalfWidth), c.x(center+boxHalfWidth)
		mid := c.x(center)
		capLeft, capRight := c.x(center-boxHalfWidth/2), c.x(center+boxHalfWidth/2)

		r.SetStrokeColor(s.color)
		r.SetStrokeWidth(1.5)
		r.SetStrokeDashArray(nil)
		r.SetFillColor(fill)
		rectPath(r, left, c.y(b.Q3), right, c.y(b.Q1))
		r.FillStroke()

		r.SetStrokeWidth(2.5)
		line(r, left, c.y(b.Median), right, c.y(b.Median))

		r.SetStrokeWidth(1)
		line(r, mid, c.y(b.Q3), mid, c.y(b.UpperWhisker))
		line(r, mid, c.y(b.Q1), mid, c.y(b.LowerWhisker))
		line(r, capLeft, c.y(b.UpperWhisker), capRight, c.y(b.UpperWhisker))
		line(r, capLeft, c.y(b.LowerWhisker), capRight, c.y(b.LowerWhisker))

		if !s.showOutliers {
			continue
		}
		r.SetFillColor(s.color)
		for _, o := range b.Outliers {
			r.Circle(2.5, mid, c.y(o))
			r.Fill()
		}
	}
}

// barSeries draws horizontal frequency bars: bins run up the y axis and the
// bar length is the count.
type barSeries struct {
	name  string
	bins  *Bins
	color drawing.Color
}

func (s barSeries) GetName() string           { return s.name }
func (s barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s barSeries) GetStyle() chart.Style {
	return chart.Style{StrokeColor: s.color, FillColor: s.color}
}
func (s barSeries) Validate() error {
	if s.bins == nil || len(s.bins.Counts) == 0 {
		return fmt.Errorf("bar series %q has no bins", s.name)
	}
	return nil
}

func (s barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	c := canvas{box: canvasBox, xrange: xrange, yrange: yrange}

	r.SetFillColor(s.color.WithAlpha(200))
	r.SetStrokeColor(drawing.ColorWhite)
	r.SetStrokeWidth(0.5)
	r.SetStrokeDashArray(nil)
	for i, n := range s.bins.Counts {
		if n == 0 {
			continue
		}
		lo, hi := s.bins.Edges[i], s.bins.Edges[i+1]
		rectPath(r, c.x(0), c.y(hi), c.x(float64(n)), c.y(lo))
		r.FillStroke()
	}
}

// overlaySeries draws a reference series as lines, markers or both.
type overlaySeries struct {
	name  string
	xs    []float64
	ys    []float64
	color drawing.Color
	width float64
	dash  []float64
	mode  DisplayMode
}

func (s overlaySeries) GetName() string           { return s.name }
func (s overlaySeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s overlaySeries) GetStyle() chart.Style {
	return chart.Style{StrokeColor: s.color, StrokeWidth: s.width, StrokeDashArray: s.dash, DotColor: s.color}
}
func (s overlaySeries) Validate() error {
	if len(s.xs) != len(s.ys) {
		return fmt.Errorf("overlay series %q: %d x values, %d y values", s.name, len(s.xs), len(s.ys))
	}
	return nil
}

func (s overlaySeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	if len(s.xs) == 0 {
		return
	}
	c := canvas{box: canvasBox, xrange: xrange, yrange: yrange}

	if s.mode != ModeMarkers {
		r.SetStrokeColor(s.color)
		r.SetStrokeWidth(s.width)
		r.SetStrokeDashArray(s.dash)
		r.MoveTo(c.x(s.xs[0]), c.y(s.ys[0]))
		for i := 1; i < len(s.xs); i++ {
			r.LineTo(c.x(s.xs[i]), c.y(s.ys[i]))
		}
		r.Stroke()
		r.SetStrokeDashArray(nil)
	}

	if s.mode == ModeMarkers || s.mode == ModeLinesMarkers {
		r.SetFillColor(s.color)
		r.SetStrokeColor(s.color)
		for i := range s.xs {
			r.Circle(3, c.x(s.xs[i]), c.y(s.ys[i]))
			r.Fill()
		}
	}
}

// newOverlaySeries aligns an overlay to cols time steps. A scalar becomes a
// horizontal reference line across the whole axis.
func newOverlaySeries(values []float64, cols int, opts OverlayOptions) overlaySeries {
	s := overlaySeries{
		name:  opts.Name,
		color: parseColor(opts.Color, chart.ColorRed),
		width: 2,
		mode:  opts.Mode,
	}
	if s.mode == "" {
		s.mode = ModeLines
	}

	if len(values) == 1 {
		s.xs = []float64{-0.5, float64(cols) - 0.5}
		s.ys = []float64{values[0], values[0]}
		s.mode = ModeLines
		return s
	}

	s.xs = make([]float64, len(values))
	s.ys = make([]float64, len(values))
	for i, v := range values {
		s.xs[i] = float64(i)
		s.ys[i] = v
	}
	return s
}

// colorbar draws the colour scale legend to the right of the plot area.
func colorbar(scale ColorScale, lo, hi float64, title, side string) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		const (
			offset = 70
			width  = 14
			steps  = 32
		)
		left := canvasBox.Right + offset
		right := left + width
		top, bottom := canvasBox.Top, canvasBox.Bottom
		height := float64(bottom - top)

		for i := 0; i < steps; i++ {
			y1 := bottom - int(height*float64(i)/steps)
			y0 := bottom - int(height*float64(i+1)/steps)
			r.SetFillColor(scale.At((float64(i) + 0.5) / steps))
			rectPath(r, left, y0, right, y1)
			r.Fill()
		}

		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(8)
		r.Text(formatTickValue(hi), right+4, top+8)
		r.Text(formatTickValue(lo), right+4, bottom)

		if title == "" {
			return
		}
		r.SetFontSize(9)
		tb := r.MeasureText(title)
		switch side {
		case "bottom":
			r.Text(title, left, bottom+tb.Height()+6)
		case "right":
			r.SetTextRotation(math.Pi / 2)
			r.Text(title, right+36, top+(bottom-top-tb.Width())/2)
			r.ClearTextRotation()
		default:
			r.Text(title, left-tb.Width()/2+width/2, top-6)
		}
	}
}

func formatTickValue(v float64) string {
	if math.Abs(v) >= 1000 || (v != 0 && math.Abs(v) < 0.01) {
		return fmt.Sprintf("%.2e", v)
	}
	return fmt.Sprintf("%.2f", v)
}
