package plot

import (
	"fmt"

	"github.com/soltixdb/modelviz/internal/dataset"
)

// Builder turns a sample matrix and optional overlay into an artifact.
// Implementations are stateless and safe for concurrent use.
type Builder interface {
	// Kind returns the plot kind this builder produces
	Kind() Kind

	// Build creates the figure. It never modifies m, overlay or opts.
	Build(m dataset.Matrix, overlay *dataset.Overlay, opts Options) (*Artifact, error)
}

var builders = map[Kind]Builder{
	KindHistogram2D:     Histogram2DBuilder{},
	KindBoxPlotOverTime: BoxPlotOverTimeBuilder{},
	KindHistogram:       HistogramBuilder{},
}

// BuilderFor returns the builder of a kind.
func BuilderFor(kind Kind) (Builder, error) {
	if b, ok := builders[kind]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlotType, string(kind))
}

// Build is a helper that dispatches to the builder of kind.
func Build(kind Kind, m dataset.Matrix, overlay *dataset.Overlay, opts Options) (*Artifact, error) {
	b, err := BuilderFor(kind)
	if err != nil {
		return nil, err
	}
	return b.Build(m, overlay, opts)
}
