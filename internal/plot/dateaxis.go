package plot

import (
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// DateLayout is the tick label format of date axes.
const DateLayout = "2006-01-02"

// tickLabelRotation is applied to every time-axis tick label.
const tickLabelRotation = 45.0

// TickStride returns the distance between labelled time steps so that at
// most desired labels are produced for cols time steps.
func TickStride(cols, desired int) int {
	if desired <= 0 {
		desired = defaultTickCount
	}
	stride := (cols + desired - 1) / desired
	if stride < 1 {
		stride = 1
	}
	return stride
}

// TickPositions returns the labelled time step indices 0, stride, 2*stride...
func TickPositions(cols, desired int) []int {
	if cols <= 0 {
		return nil
	}
	stride := TickStride(cols, desired)
	positions := make([]int, 0, cols/stride+1)
	for p := 0; p < cols; p += stride {
		positions = append(positions, p)
	}
	return positions
}

// DateLabel formats the date position days after epoch.
func DateLabel(epoch time.Time, position int) string {
	return epoch.AddDate(0, 0, position).Format(DateLayout)
}

// timeTicks builds the x-axis ticks for a time-indexed plot. Date axes get
// calendar labels, plain axes get the step index.
func timeTicks(cols int, opts DateAxisOptions) []chart.Tick {
	positions := TickPositions(cols, opts.tickCount())
	ticks := make([]chart.Tick, 0, len(positions))
	for _, p := range positions {
		label := strconv.Itoa(p)
		if opts.Enabled {
			label = DateLabel(opts.Epoch, p)
		}
		ticks = append(ticks, chart.Tick{Value: float64(p), Label: label})
	}
	return ticks
}

// timeAxis returns an x-axis spanning every time step bucket.
func timeAxis(name string, cols int, opts DateAxisOptions) chart.XAxis {
	return chart.XAxis{
		Name:      name,
		Range:     &chart.ContinuousRange{Min: -0.5, Max: float64(cols) - 0.5},
		Ticks:     timeTicks(cols, opts),
		TickStyle: chart.Style{TextRotationDegrees: tickLabelRotation},
	}
}
