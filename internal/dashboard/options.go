package dashboard

import (
	"fmt"

	"github.com/soltixdb/modelviz/internal/config"
	"github.com/soltixdb/modelviz/internal/plot"
)

// OptionsFor derives the build options of a plot kind from configuration.
func OptionsFor(cfg *config.Config, kind plot.Kind) (plot.Options, error) {
	epoch, err := cfg.DateAxis.EpochTime()
	if err != nil {
		return plot.Options{}, err
	}

	opts := plot.DefaultOptions()
	opts.DateAxis = plot.DateAxisOptions{
		Enabled:   cfg.DateAxis.Enabled,
		Epoch:     epoch,
		TickCount: cfg.DateAxis.TickCount,
	}
	opts.Overlay.Name = cfg.Overlay.Name
	opts.Overlay.Color = cfg.Overlay.Color

	switch kind {
	case plot.KindHistogram2D:
		h := cfg.Histogram2D
		opts.Title, opts.XTitle, opts.YTitle = h.Title, h.XTitle, h.YTitle
		opts.Overlay.Mode = plot.DisplayMode(h.ScatterMode)
		opts.Histogram2D = plot.Histogram2DOptions{
			ColorbarTitle:     h.ColorbarTitle,
			ColorbarTitleSide: h.ColorbarTitleSide,
			HistFunc:          plot.HistFunc(h.HistFunc),
			ColorScale:        h.ColorScale,
			RasterThreshold:   h.RasterThreshold,
			RasterBins:        h.RasterBins,
			YBins:             h.YBins,
		}

	case plot.KindBoxPlotOverTime:
		b := cfg.BoxPlotOverTime
		opts.Title, opts.XTitle, opts.YTitle = b.Title, b.XTitle, b.YTitle
		opts.Overlay.Mode = plot.DisplayMode(b.ScatterMode)
		opts.BoxPlot = plot.BoxPlotOptions{
			ShowFences:   b.ShowFences,
			ShowOutliers: b.BoxPoints,
			ShowLegend:   b.ShowLegend,
			BoxColor:     b.BoxColor,
		}

	case plot.KindHistogram:
		h := cfg.Histogram
		opts.Title, opts.XTitle, opts.YTitle = h.Title, h.XTitle, h.YTitle
		opts.Histogram = plot.HistogramOptions{
			Bins:      h.Bins,
			BarColor:  h.BarColor,
			LineWidth: h.LineWidth,
			LineColor: h.LineColor,
			LineDash:  h.LineDash,
		}

	default:
		return plot.Options{}, fmt.Errorf("%w: %q", plot.ErrUnsupportedPlotType, string(kind))
	}

	return opts, nil
}

// panelTitle names a panel after its item, prefixed by the configured title.
func panelTitle(configured, item string) string {
	if configured == "" {
		return item
	}
	return configured + " - " + item
}
