package plot

import (
	"fmt"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ColorScale maps a value in [0,1] to a colour by interpolating anchors.
type ColorScale struct {
	name    string
	anchors []drawing.Color
}

var colorScales = map[string]ColorScale{
	"viridis": {name: "viridis", anchors: []drawing.Color{
		{R: 68, G: 1, B: 84, A: 255},
		{R: 59, G: 82, B: 139, A: 255},
		{R: 33, G: 145, B: 140, A: 255},
		{R: 94, G: 201, B: 98, A: 255},
		{R: 253, G: 231, B: 37, A: 255},
	}},
	"hot": {name: "hot", anchors: []drawing.Color{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 230, G: 0, B: 0, A: 255},
		{R: 255, G: 210, B: 0, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}},
	"greys": {name: "greys", anchors: []drawing.Color{
		{R: 255, G: 255, B: 255, A: 255},
		{R: 0, G: 0, B: 0, A: 255},
	}},
}

// ColorScaleNames lists the known colour scales.
func ColorScaleNames() []string {
	names := make([]string, 0, len(colorScales))
	for name := range colorScales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupColorScale returns the named colour scale.
func LookupColorScale(name string) (ColorScale, error) {
	if name == "" {
		name = "viridis"
	}
	cs, ok := colorScales[name]
	if !ok {
		return ColorScale{}, fmt.Errorf("unknown colour scale %q", name)
	}
	return cs, nil
}

// Name returns the scale name.
func (cs ColorScale) Name() string { return cs.name }

// At returns the colour for frac, clamped to [0,1].
func (cs ColorScale) At(frac float64) drawing.Color {
	if math.IsNaN(frac) || frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	segments := len(cs.anchors) - 1
	pos := frac * float64(segments)
	i := int(pos)
	if i >= segments {
		return cs.anchors[segments]
	}
	w := pos - float64(i)
	a, b := cs.anchors[i], cs.anchors[i+1]
	return drawing.Color{
		R: lerp8(a.R, b.R, w),
		G: lerp8(a.G, b.G, w),
		B: lerp8(a.B, b.B, w),
		A: 255,
	}
}

func lerp8(a, b uint8, w float64) uint8 {
	return uint8(math.Round(float64(a)*(1-w) + float64(b)*w))
}
