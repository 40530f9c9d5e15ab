// Package export produces the downloadable PNG for a rendered chart.
// Charts are drawn on a transparent background so they blend with the
// current theme in-app; a direct encode of that bitmap would look wrong
// on dark viewers, so the export path always composites onto opaque
// white first and only hands bytes back after a successful encode.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// DefaultFileName is the fixed name offered for chart downloads.
const DefaultFileName = "chart.png"

// WhiteComposite paints an opaque white canvas of the snapshot's
// dimensions and draws the snapshot over it, so any transparency in the
// chart background cannot leak through.
func WhiteComposite(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ChartPNG is the full export pipeline: composite onto white, then
// encode. It returns an error rather than partial bytes, so a download
// is only ever triggered with a complete file.
func ChartPNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("export: no chart to export")
	}
	return EncodePNG(WhiteComposite(img))
}
