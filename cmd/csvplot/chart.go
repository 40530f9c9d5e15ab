package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	png "image/png"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"csvplot/cmd/csvplot/uihelpers"
	"csvplot/src/tabledata"
)

// chartPalette holds the theme-driven colors for one render pass.
type chartPalette struct {
	bar  drawing.Color
	text drawing.Color
}

func paletteFor(dark bool) chartPalette {
	if dark {
		return chartPalette{
			bar:  drawing.Color{R: 96, G: 170, B: 255, A: 255},
			text: chart.ColorWhite,
		}
	}
	return chartPalette{
		bar:  chart.ColorBlue,
		text: drawing.Color{R: 51, G: 51, B: 51, A: 255},
	}
}

// renderBarChart draws the projected series as a bar chart on a
// transparent background and returns the decoded image. Render errors
// fall back to a blank placeholder so the UI still visibly updates.
func renderBarChart(series tabledata.ChartSeries, yName string, orient tabledata.Orientation, dark bool, w, h int) image.Image {
	if len(series.Values) == 0 {
		return blank(w, h, dark)
	}
	var buf bytes.Buffer
	var err error
	if orient == tabledata.OrientationHorizontal {
		err = horizontalBarChart(series, yName, dark, w, h).Render(chart.PNG, &buf)
	} else {
		err = verticalBarChart(series, yName, dark, w, h).Render(chart.PNG, &buf)
	}
	if err != nil {
		fmt.Printf("[csvplot] chart render error: %v; showing blank fallback\n", err)
		return blank(w, h, dark)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		fmt.Printf("[csvplot] chart decode error: %v; showing blank fallback\n", err)
		return blank(w, h, dark)
	}
	if series.Coerced > 0 {
		// Surface the silent-coercion trade-off right on the chart.
		return drawNotice(img, fmt.Sprintf("Note: %d non-numeric value(s) in %q plotted as 0", series.Coerced, yName))
	}
	return img
}

func verticalBarChart(series tabledata.ChartSeries, yName string, dark bool, w, h int) chart.BarChart {
	pal := paletteFor(dark)
	spacing := 8
	barWidth := uihelpers.ComputeBarWidth(w-80, len(series.Values), spacing)
	bars := make([]chart.Value, len(series.Values))
	for i, v := range series.Values {
		bars[i] = chart.Value{
			Label: series.Labels[i],
			Value: v,
			Style: chart.Style{FillColor: pal.bar, StrokeColor: pal.bar, FontColor: pal.text},
		}
	}
	return chart.BarChart{
		Title:      yName,
		TitleStyle: chart.Style{FontColor: pal.text},
		Background: chart.Style{FillColor: drawing.ColorTransparent, Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 36}},
		Canvas:     chart.Style{FillColor: drawing.ColorTransparent},
		Width:      w,
		Height:     h,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		XAxis:      chart.Style{FontColor: pal.text},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontColor: pal.text},
			Range:          valueRange(series.Values),
			ValueFormatter: valueTickFormatter,
		},
		Bars: bars,
	}
}

// horizontalBarChart renders the series as horizontal bars. The stacked
// bar renderer scales each stack to fill its full length, so every bar
// gets one colored segment proportional to value/max plus a transparent
// filler for the remainder.
func horizontalBarChart(series tabledata.ChartSeries, yName string, dark bool, w, h int) chart.StackedBarChart {
	pal := paletteFor(dark)
	maxV := 0.0
	for _, v := range series.Values {
		if v > maxV {
			maxV = v
		}
	}
	filler := chart.Style{
		FillColor:   drawing.ColorTransparent,
		StrokeColor: drawing.ColorTransparent,
		StrokeWidth: 0,
	}
	bars := make([]chart.StackedBar, len(series.Values))
	for i, v := range series.Values {
		frac := 0.0
		if maxV > 0 && v > 0 {
			frac = v / maxV
		}
		if frac > 1 {
			frac = 1
		}
		bars[i] = chart.StackedBar{
			Name:  series.Labels[i],
			Width: 20,
			Values: []chart.Value{
				{Value: frac, Style: chart.Style{FillColor: pal.bar, StrokeColor: pal.bar}},
				{Value: 1 - frac, Style: filler},
			},
		}
	}
	return chart.StackedBarChart{
		Title:        yName,
		TitleStyle:   chart.Style{FontColor: pal.text},
		Background:   chart.Style{FillColor: drawing.ColorTransparent, Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 24}},
		Canvas:       chart.Style{FillColor: drawing.ColorTransparent},
		Width:        w,
		Height:       h,
		BarSpacing:   6,
		IsHorizontal: true,
		XAxis:        chart.Style{FontColor: pal.text},
		YAxis:        chart.Style{FontColor: pal.text},
		Bars:         bars,
	}
}

// valueTickFormatter labels the value axis with compact numbers.
func valueTickFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return uihelpers.FormatValueTick(f)
	}
	return ""
}

// valueRange pins the Y axis at a zero baseline with rounded headroom.
// An explicit range also keeps single-value and all-equal series
// renderable where the auto range would collapse to zero span.
func valueRange(values []float64) *chart.ContinuousRange {
	minV, maxV := 0.0, 0.0
	for _, v := range values {
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
	}
	if maxV <= 0 {
		maxV = 1
	}
	r := &chart.ContinuousRange{Min: 0, Max: math.Ceil(maxV * 1.1)}
	if minV < 0 {
		r.Min = math.Floor(minV * 1.1)
	}
	return r
}

// blank returns a theme-tinted placeholder shown before the first parse
// and whenever there is nothing to chart.
func blank(w, h int, dark bool) image.Image {
	c := color.RGBA{R: 245, G: 245, B: 245, A: 255}
	if dark {
		c = color.RGBA{R: 18, G: 18, B: 18, A: 255}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// drawNotice draws a small text banner onto the provided image near the
// bottom-left, over a dark translucent background for readability.
func drawNotice(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	shadowCol := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 180})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	drShadow := &font.Drawer{Dst: rgba, Src: shadowCol, Face: face, Dot: fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(y + 1)}}
	drShadow.DrawString(text)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
