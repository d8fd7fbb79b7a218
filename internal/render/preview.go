package render

import (
	"image"
	"image/color"
	"image/draw"

	"media-combiner/pkg/geometry"
)

// SlotView is the minimal slot state the renderer needs for one draw pass.
// Frame is nil while the slot is empty, loading, or errored.
type SlotView struct {
	Frame image.Image
	Zoom  float64
	Focus geometry.Point2D
}

// previewBackground fills the empty halves; matches the editor chrome.
var previewBackground = color.RGBA{40, 40, 40, 255}

// Halves splits a preview of the given size into the left and right slot
// destination rectangles.
func Halves(w, h int) (left, right image.Rectangle) {
	mid := w / 2
	return image.Rect(0, 0, mid, h), image.Rect(mid, 0, w, h)
}

// RenderPreview draws both slots side by side into a fresh RGBA. The logo
// is not part of this bitmap; it is positioned as a separate overlay by the
// widget layer.
func RenderPreview(w, h int, left, right SlotView) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), &image.Uniform{previewBackground}, image.Point{}, draw.Src)

	leftRect, rightRect := Halves(w, h)
	if left.Frame != nil {
		DrawSlot(out, leftRect, left.Frame, left.Zoom, left.Focus)
	}
	if right.Frame != nil {
		DrawSlot(out, rightRect, right.Frame, right.Zoom, right.Focus)
	}
	return out
}
