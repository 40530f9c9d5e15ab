package uihelpers

import (
	"math"
	"strconv"
)

// ComputeChartDimensions applies the width/height clamp rules used for
// the chart image. Input: desired raw width (e.g. canvas width).
// Returns clamped width & height.
func ComputeChartDimensions(rawW int) (int, int) {
	w := rawW
	if w < 640 {
		w = 640
	}
	h := int(float32(w) * 0.5)
	if h < 300 {
		h = 300
	}
	if h > 560 {
		h = 560
	}
	return w, h
}

// ComputeTableColumnWidth splits the window width evenly over the
// table's columns, clamped so narrow windows still show readable cells
// and a two-column table does not produce absurdly wide ones.
func ComputeTableColumnWidth(winW float32, columns int) int {
	if columns <= 0 {
		return 0
	}
	w := int(winW) / columns
	if w < 90 {
		w = 90
	}
	if w > 320 {
		w = 320
	}
	return w
}

// ComputeBarWidth sizes vertical bars so n bars plus spacing fill the
// plot width, clamped to stay visible for large n and sane for small n.
func ComputeBarWidth(plotW, n, spacing int) int {
	if n <= 0 {
		return 0
	}
	w := plotW/n - spacing
	if w < 4 {
		w = 4
	}
	if w > 80 {
		w = 80
	}
	return w
}

// FormatValueTick provides a compact numeric label for the chart's
// value-axis ticks.
func FormatValueTick(v float64) string {
	av := math.Abs(v)
	switch {
	case av >= 100:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case av >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case av == 0:
		return "0"
	default:
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
}
