package dataset

import "fmt"

// Overlay is a reference series drawn on top of a plot: either one value per
// time step, or a single scalar drawn as a horizontal reference line.
type Overlay struct {
	Values []float64
}

// NewOverlay copies values into an Overlay. A nil or empty slice yields nil.
func NewOverlay(values []float64) *Overlay {
	if len(values) == 0 {
		return nil
	}
	buf := make([]float64, len(values))
	copy(buf, values)
	return &Overlay{Values: buf}
}

// Scalar returns the reference value when the overlay holds exactly one value.
func (o *Overlay) Scalar() (float64, bool) {
	if o == nil || len(o.Values) != 1 {
		return 0, false
	}
	return o.Values[0], true
}

// Len returns the number of values, zero for a nil overlay.
func (o *Overlay) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Values)
}

// AlignTo checks that the overlay can be drawn against cols time steps.
func (o *Overlay) AlignTo(cols int) error {
	if o == nil {
		return nil
	}
	if n := len(o.Values); n != 1 && n != cols {
		return fmt.Errorf("%w: overlay has %d values, expected 1 or %d", ErrInvalidShape, n, cols)
	}
	return nil
}
