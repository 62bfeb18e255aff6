package plot

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// Artifact is the result of a build: the figure plus the data it was drawn
// from. Callers render it or hand it to the exporter, then discard it.
type Artifact struct {
	Kind  Kind
	Title string
	Chart chart.Chart

	// Exactly one of these is set, depending on Kind.
	Density   *Grid
	Boxes     []Box
	Histogram *Bins

	legend bool
}

// HasLegend reports whether a legend is drawn on render.
func (a *Artifact) HasLegend() bool {
	return a.legend
}

// Render writes the figure using the given go-chart renderer. Non-positive
// dimensions keep the chart defaults.
func (a *Artifact) Render(w io.Writer, rp chart.RendererProvider, width, height int) error {
	if a == nil {
		return fmt.Errorf("nil artifact")
	}

	c := a.Chart
	if width > 0 {
		c.Width = width
	}
	if height > 0 {
		c.Height = height
	}

	elements := make([]chart.Renderable, 0, len(c.Elements)+1)
	elements = append(elements, c.Elements...)
	if a.legend {
		elements = append(elements, chart.Legend(&c))
	}
	c.Elements = elements

	return c.Render(rp, w)
}
