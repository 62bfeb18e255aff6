package plot

import (
	"fmt"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DisplayMode controls how an overlay series is drawn.
type DisplayMode string

const (
	ModeLines        DisplayMode = "lines"
	ModeMarkers      DisplayMode = "markers"
	ModeLinesMarkers DisplayMode = "lines+markers"
)

// HistFunc aggregates the y values that fall into one density cell.
type HistFunc string

const (
	HistCount HistFunc = "count"
	HistSum   HistFunc = "sum"
	HistAvg   HistFunc = "avg"
	HistMin   HistFunc = "min"
	HistMax   HistFunc = "max"
)

// Options configures a single build. It is passed by value and never
// modified by builders.
type Options struct {
	Title  string
	XTitle string
	YTitle string

	DateAxis DateAxisOptions
	Overlay  OverlayOptions

	Histogram2D Histogram2DOptions
	BoxPlot     BoxPlotOptions
	Histogram   HistogramOptions
}

// DateAxisOptions turns time step indices into calendar dates.
type DateAxisOptions struct {
	Enabled   bool
	Epoch     time.Time // day zero
	TickCount int       // desired number of tick labels
}

// OverlayOptions styles the reference series.
type OverlayOptions struct {
	Name  string
	Color string // hex, e.g. "#d62728"
	Mode  DisplayMode
}

// Histogram2DOptions holds density-plot specific settings.
type Histogram2DOptions struct {
	ColorbarTitle     string
	ColorbarTitleSide string // top, bottom or right
	HistFunc          HistFunc
	ColorScale        string
	// RasterThreshold is the point count (rows*cols) from which samples are
	// counted into a RasterBins×RasterBins log-scaled grid.
	RasterThreshold int
	RasterBins      int
	YBins           int
}

// BoxPlotOptions holds box plot specific settings.
type BoxPlotOptions struct {
	ShowFences   bool // whiskers at min/max instead of 1.5 IQR
	ShowOutliers bool
	ShowLegend   bool
	BoxColor     string
}

// HistogramOptions holds simple histogram settings.
type HistogramOptions struct {
	Bins      int
	BarColor  string
	LineWidth float64
	LineColor string
	LineDash  string // solid, dash, dot, dashdot
}

const (
	defaultTickCount       = 10
	defaultRasterThreshold = 100000
	defaultRasterBins      = 100
	defaultYBins           = 50
	defaultHistogramBins   = 30
)

// DefaultOptions returns the settings the original dashboard shipped with.
func DefaultOptions() Options {
	return Options{
		XTitle: "Time step",
		YTitle: "Value",
		DateAxis: DateAxisOptions{
			Epoch:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			TickCount: defaultTickCount,
		},
		Overlay: OverlayOptions{
			Name:  "Empirical",
			Color: "#d62728",
			Mode:  ModeLines,
		},
		Histogram2D: Histogram2DOptions{
			ColorbarTitle:     "Count",
			ColorbarTitleSide: "top",
			HistFunc:          HistCount,
			ColorScale:        "viridis",
			RasterThreshold:   defaultRasterThreshold,
			RasterBins:        defaultRasterBins,
			YBins:             defaultYBins,
		},
		BoxPlot: BoxPlotOptions{
			ShowFences: true,
			ShowLegend: false,
			BoxColor:   "#1f77b4",
		},
		Histogram: HistogramOptions{
			Bins:      defaultHistogramBins,
			BarColor:  "#1f77b4",
			LineWidth: 2,
			LineColor: "#d62728",
			LineDash:  "dash",
		},
	}
}

// resolvedTitle returns the title or the kind default.
func (o Options) resolvedTitle(k Kind) string {
	if t := strings.TrimSpace(o.Title); t != "" {
		return t
	}
	return k.DefaultTitle()
}

func (o DateAxisOptions) tickCount() int {
	if o.TickCount <= 0 {
		return defaultTickCount
	}
	return o.TickCount
}

func (o Histogram2DOptions) withDefaults() Histogram2DOptions {
	if o.HistFunc == "" {
		o.HistFunc = HistCount
	}
	if o.RasterThreshold <= 0 {
		o.RasterThreshold = defaultRasterThreshold
	}
	if o.RasterBins <= 0 {
		o.RasterBins = defaultRasterBins
	}
	if o.YBins <= 0 {
		o.YBins = defaultYBins
	}
	if o.ColorbarTitleSide == "" {
		o.ColorbarTitleSide = "top"
	}
	return o
}

// ValidateHistFunc reports whether name is a known aggregation function.
func ValidateHistFunc(name string) error {
	switch HistFunc(name) {
	case HistCount, HistSum, HistAvg, HistMin, HistMax:
		return nil
	}
	return fmt.Errorf("unknown histfunc %q", name)
}

// ValidateDisplayMode reports whether name is a known overlay mode.
func ValidateDisplayMode(name string) error {
	switch DisplayMode(name) {
	case ModeLines, ModeMarkers, ModeLinesMarkers:
		return nil
	}
	return fmt.Errorf("unknown display mode %q", name)
}

// ValidateDash reports whether name is a known dash style.
func ValidateDash(name string) error {
	if _, ok := dashPatterns[name]; ok {
		return nil
	}
	return fmt.Errorf("unknown dash style %q", name)
}

var dashPatterns = map[string][]float64{
	"solid":   nil,
	"":        nil,
	"dash":    {8, 4},
	"dot":     {2, 3},
	"dashdot": {8, 3, 2, 3},
}

// parseColor reads "#rrggbb" or "rrggbb", falling back when empty or invalid.
func parseColor(hex string, fallback drawing.Color) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return fallback
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return fallback
		}
	}
	return drawing.ColorFromHex(hex)
}
