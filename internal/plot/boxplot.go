package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/soltixdb/modelviz/internal/dataset"
	"github.com/soltixdb/modelviz/internal/stats"
)

// Box is the drawn summary of one time step.
type Box struct {
	Index        int
	Min          float64
	Q1           float64
	Median       float64
	Q3           float64
	Max          float64
	LowerWhisker float64
	UpperWhisker float64
	Outliers     []float64
}

// BoxPlotOverTimeBuilder renders one box per time step.
type BoxPlotOverTimeBuilder struct{}

// Kind implements Builder.
func (BoxPlotOverTimeBuilder) Kind() Kind { return KindBoxPlotOverTime }

// Build implements Builder.
func (b BoxPlotOverTimeBuilder) Build(m dataset.Matrix, overlay *dataset.Overlay, opts Options) (*Artifact, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("%w: %dx%d matrix", dataset.ErrEmptyData, m.Rows(), m.Cols())
	}
	if err := overlay.AlignTo(m.Cols()); err != nil {
		return nil, err
	}

	summary, err := stats.Aggregate(m)
	if err != nil {
		return nil, err
	}
	boxes := Boxes(m, summary, opts.BoxPlot.ShowFences)

	ymin, ymax := summary.LowerFence[0], summary.UpperFence[0]
	ymin, ymax = extendRange(ymin, ymax, summary.LowerFence)
	ymin, ymax = extendRange(ymin, ymax, summary.UpperFence)

	title := opts.resolvedTitle(KindBoxPlotOverTime)
	bs := boxSeries{
		name:         "Model",
		boxes:        boxes,
		color:        parseColor(opts.BoxPlot.BoxColor, chart.ColorBlue),
		showOutliers: opts.BoxPlot.ShowOutliers,
	}
	series := []chart.Series{bs}
	if overlay != nil {
		ov := newOverlaySeries(overlay.Values, m.Cols(), opts.Overlay)
		series = append(series, ov)
		ymin, ymax = extendRange(ymin, ymax, ov.ys)
	}
	ymin, ymax = valueSpan(ymin, ymax)

	c := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      timeAxis(opts.XTitle, m.Cols(), opts.DateAxis),
		YAxis: chart.YAxis{
			Name:  opts.YTitle,
			Range: &chart.ContinuousRange{Min: ymin, Max: ymax},
		},
		Series: series,
	}

	return &Artifact{
		Kind:   KindBoxPlotOverTime,
		Title:  title,
		Chart:  c,
		Boxes:  boxes,
		legend: opts.BoxPlot.ShowLegend,
	}, nil
}

// Boxes turns a summary into drawable boxes. With fences the whiskers reach
// the column min/max; otherwise they follow the 1.5 IQR convention and the
// points beyond them are reported as outliers.
func Boxes(m dataset.Matrix, s stats.Summary, fences bool) []Box {
	boxes := make([]Box, s.Len())
	for t := range boxes {
		b := Box{
			Index:        t,
			Min:          s.LowerFence[t],
			Q1:           s.Q1[t],
			Median:       s.Median[t],
			Q3:           s.Q3[t],
			Max:          s.UpperFence[t],
			LowerWhisker: s.LowerFence[t],
			UpperWhisker: s.UpperFence[t],
		}
		if !fences {
			sorted := stats.Column(m, t)
			b.LowerWhisker, b.UpperWhisker = stats.TukeyWhiskers(sorted, b.Q1, b.Q3)
			for _, v := range sorted {
				if v < b.LowerWhisker || v > b.UpperWhisker {
					b.Outliers = append(b.Outliers, v)
				}
			}
		}
		boxes[t] = b
	}
	return boxes
}
