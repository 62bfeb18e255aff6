// Package plot builds renderable figures from sample matrices: density
// heatmaps, box plots over time and simple histograms.
package plot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPlotType is returned when a plot kind name is not recognised.
var ErrUnsupportedPlotType = errors.New("unsupported plot type")

// Kind identifies a plot builder.
type Kind string

const (
	KindHistogram2D     Kind = "2d_hist"           // density heatmap of all samples
	KindBoxPlotOverTime Kind = "boxplot_over_time" // one box per time step
	KindHistogram       Kind = "histogram"         // 1D frequency histogram
)

// Kinds returns every supported kind in display order.
func Kinds() []Kind {
	return []Kind{KindHistogram2D, KindBoxPlotOverTime, KindHistogram}
}

// kindAliases maps accepted display labels to kinds.
var kindAliases = map[string]Kind{
	"2d_hist":            KindHistogram2D,
	"2d histogram":       KindHistogram2D,
	"2d-histogram":       KindHistogram2D,
	"boxplot_over_time":  KindBoxPlotOverTime,
	"box-plot-over-time": KindBoxPlotOverTime,
	"boxplot over time":  KindBoxPlotOverTime,
	"histogram":          KindHistogram,
}

// ParseKind resolves a kind from its identifier or display label.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlotType, name)
}

// String returns the kind identifier.
func (k Kind) String() string {
	return string(k)
}

// Label returns the human readable name shown in selectors.
func (k Kind) Label() string {
	switch k {
	case KindHistogram2D:
		return "2D-Histogram"
	case KindBoxPlotOverTime:
		return "Boxplot over Time"
	case KindHistogram:
		return "Histogram"
	default:
		return string(k)
	}
}

// DefaultTitle is used when the caller supplies no title.
func (k Kind) DefaultTitle() string {
	switch k {
	case KindHistogram2D:
		return "2D Histogram"
	case KindBoxPlotOverTime:
		return "Boxplot over Time"
	case KindHistogram:
		return "Histogram"
	default:
		return "Plot"
	}
}
