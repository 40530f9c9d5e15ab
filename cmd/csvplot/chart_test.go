package main

import (
	"math"
	"testing"

	"csvplot/src/tabledata"
)

func TestRenderBarChart_Dimensions(t *testing.T) {
	series := tabledata.ChartSeries{
		Labels: []string{"a", "b", "c"},
		Values: []float64{1, 2, 3},
	}
	for _, orient := range []tabledata.Orientation{tabledata.OrientationVertical, tabledata.OrientationHorizontal} {
		img := renderBarChart(series, "count", orient, false, 640, 320)
		if img == nil {
			t.Fatalf("%s: nil image", orient)
		}
		if img.Bounds().Dx() != 640 || img.Bounds().Dy() != 320 {
			t.Fatalf("%s: unexpected size %v", orient, img.Bounds())
		}
	}
}

func TestRenderBarChart_EmptySeriesFallsBackToBlank(t *testing.T) {
	img := renderBarChart(tabledata.ChartSeries{}, "y", tabledata.OrientationVertical, true, 400, 200)
	if img == nil || img.Bounds().Dx() != 400 || img.Bounds().Dy() != 200 {
		t.Fatalf("blank fallback missing or wrong size")
	}
}

func TestHorizontalBarChart_SegmentsProportionalToMax(t *testing.T) {
	series := tabledata.ChartSeries{
		Labels: []string{"a", "b", "c", "d"},
		Values: []float64{5, 10, 0, -3},
	}
	sbc := horizontalBarChart(series, "y", false, 800, 400)
	if !sbc.IsHorizontal {
		t.Fatalf("chart not horizontal")
	}
	if len(sbc.Bars) != 4 {
		t.Fatalf("expected 4 bars, got %d", len(sbc.Bars))
	}
	wantFrac := []float64{0.5, 1.0, 0, 0}
	for i, bar := range sbc.Bars {
		if len(bar.Values) != 2 {
			t.Fatalf("bar %d: expected segment + filler, got %d values", i, len(bar.Values))
		}
		if math.Abs(bar.Values[0].Value-wantFrac[i]) > 1e-9 {
			t.Fatalf("bar %d: segment %v, want %v", i, bar.Values[0].Value, wantFrac[i])
		}
		total := bar.Values[0].Value + bar.Values[1].Value
		if math.Abs(total-1) > 1e-9 {
			t.Fatalf("bar %d: stack does not fill the bar: %v", i, total)
		}
		if bar.Name != series.Labels[i] {
			t.Fatalf("bar %d: name %q, want %q", i, bar.Name, series.Labels[i])
		}
	}
}

func TestVerticalBarChart_ValueAxisUsesCompactTicks(t *testing.T) {
	series := tabledata.ChartSeries{Labels: []string{"a"}, Values: []float64{3.14159}}
	bc := verticalBarChart(series, "y", false, 640, 320)
	if bc.YAxis.ValueFormatter == nil {
		t.Fatalf("value axis has no tick formatter")
	}
	if got := bc.YAxis.ValueFormatter(3.14159); got != "3.14" {
		t.Fatalf("tick label %q, want %q", got, "3.14")
	}
	if got := bc.YAxis.ValueFormatter("not a number"); got != "" {
		t.Fatalf("non-float tick should format empty, got %q", got)
	}
}

func TestValueRange_ZeroBaselineAndHeadroom(t *testing.T) {
	r := valueRange([]float64{10, 20})
	if r.Min != 0 {
		t.Fatalf("baseline not zero: %v", r.Min)
	}
	if r.Max < 20 {
		t.Fatalf("no headroom above max: %v", r.Max)
	}
	// all-zero series still has a drawable span
	r = valueRange([]float64{0, 0})
	if !(r.Max > r.Min) {
		t.Fatalf("collapsed range: [%v, %v]", r.Min, r.Max)
	}
	// negative values extend the baseline downwards
	r = valueRange([]float64{-4, 8})
	if r.Min >= 0 {
		t.Fatalf("negative values need a negative baseline: %v", r.Min)
	}
}

func TestRenderBarChart_CoercionNoticeDiffersFromCleanRender(t *testing.T) {
	clean := tabledata.ChartSeries{Labels: []string{"a", "b"}, Values: []float64{1, 2}}
	coerced := tabledata.ChartSeries{Labels: []string{"a", "b"}, Values: []float64{1, 2}, Coerced: 1}
	imgClean := renderBarChart(clean, "y", tabledata.OrientationVertical, false, 500, 300)
	imgNotice := renderBarChart(coerced, "y", tabledata.OrientationVertical, false, 500, 300)
	if imgClean == nil || imgNotice == nil {
		t.Fatalf("nil render")
	}
	// the notice banner sits near the bottom-left; some pixel there must differ
	diff := false
	for x := 0; x < 120 && !diff; x++ {
		for y := imgClean.Bounds().Max.Y - 24; y < imgClean.Bounds().Max.Y; y++ {
			cr, cg, cb, _ := imgClean.At(x, y).RGBA()
			nr, ng, nb, _ := imgNotice.At(x, y).RGBA()
			if cr != nr || cg != ng || cb != nb {
				diff = true
				break
			}
		}
	}
	if !diff {
		t.Fatalf("coercion notice not drawn")
	}
}

func TestBlank_ThemeTint(t *testing.T) {
	dark := blank(10, 10, true)
	light := blank(10, 10, false)
	dr, _, _, da := dark.At(0, 0).RGBA()
	lr, _, _, la := light.At(0, 0).RGBA()
	if da>>8 != 255 || la>>8 != 255 {
		t.Fatalf("placeholders must be opaque")
	}
	if dr >= lr {
		t.Fatalf("dark placeholder should be darker than light one")
	}
}
