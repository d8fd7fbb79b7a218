// Package render implements the cover-fit draw math shared by the live
// preview and the composite exporter.
package render

import (
	"image"
	"math"

	"media-combiner/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// SourceWindow computes the source-space crop for one slot: the rectangle
// of the source that, stretched onto a destination of size dst, shows the
// slot at the given zoom (percent of cover fit) centered on focus
// (normalized source coordinates).
//
// Returns ok=false when the effective scale is non-finite or not positive;
// callers must skip the draw entirely in that case.
func SourceWindow(src, dst geometry.Size, zoomPercent float64, focus geometry.Point2D) (geometry.Rect, bool) {
	coverScale := geometry.CoverScale(src, dst)
	finalScale := coverScale * (zoomPercent / 100)
	if math.IsNaN(finalScale) || math.IsInf(finalScale, 0) || finalScale <= 0 {
		return geometry.Rect{}, false
	}

	visibleW := dst.Width / finalScale
	visibleH := dst.Height / finalScale

	sx := src.Width*focus.X - visibleW/2
	sy := src.Height*focus.Y - visibleH/2
	sx = geometry.Clamp(sx, 0, math.Max(0, src.Width-visibleW))
	sy = geometry.Clamp(sy, 0, math.Max(0, src.Height-visibleH))

	return geometry.NewRect(sx, sy, visibleW, visibleH), true
}

// DrawSlot stretches the focus window of src exactly onto dstRect within
// dst. Scaling happens inside the x/image scaler, never pixel by pixel
// here, so cost is bounded by the destination size.
func DrawSlot(dst *image.RGBA, dstRect image.Rectangle, src image.Image, zoomPercent float64, focus geometry.Point2D) {
	if src == nil || dstRect.Empty() {
		return
	}
	bounds := src.Bounds()
	srcSize := geometry.NewSize(float64(bounds.Dx()), float64(bounds.Dy()))
	dstSize := geometry.NewSize(float64(dstRect.Dx()), float64(dstRect.Dy()))

	window, ok := SourceWindow(srcSize, dstSize, zoomPercent, focus)
	if !ok {
		return
	}

	srcRect := image.Rect(
		bounds.Min.X+int(math.Round(window.X)),
		bounds.Min.Y+int(math.Round(window.Y)),
		bounds.Min.X+int(math.Round(window.X+window.Width)),
		bounds.Min.Y+int(math.Round(window.Y+window.Height)),
	)
	// Rounding can collapse the window for extreme zooms; keep one pixel.
	if srcRect.Dx() < 1 {
		srcRect.Max.X = srcRect.Min.X + 1
	}
	if srcRect.Dy() < 1 {
		srcRect.Max.Y = srcRect.Min.Y + 1
	}
	srcRect = srcRect.Intersect(bounds)
	if srcRect.Empty() {
		return
	}

	xdraw.ApproxBiLinear.Scale(dst, dstRect, src, srcRect, xdraw.Src, nil)
}

// EffectiveScale returns cover-scale × zoom for a slot: the factor mapping
// source pixels to on-screen pixels. Drag handling divides pointer deltas
// by this to obtain source-space deltas.
func EffectiveScale(src, dst geometry.Size, zoomPercent float64) float64 {
	return geometry.CoverScale(src, dst) * (zoomPercent / 100)
}
