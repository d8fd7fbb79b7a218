package render

import (
	"media-combiner/pkg/geometry"
)

// LogoPlacement computes the on-canvas rectangle for the logo overlay.
// The logo is sized as widthPercent of the container width with its aspect
// locked, and centered on pos, which is given in percent of the container
// ([0,100] on each axis). Callers clamp pos before storing it, so the
// center always lies inside the container and the logo can never be
// entirely invisible.
func LogoPlacement(container, logo geometry.Size, widthPercent float64, pos geometry.Point2D) geometry.Rect {
	if !container.IsPositive() || !logo.IsPositive() {
		return geometry.Rect{}
	}

	w := container.Width * widthPercent / 100
	h := w * logo.Height / logo.Width

	cx := pos.X / 100 * container.Width
	cy := pos.Y / 100 * container.Height

	return geometry.NewRect(cx-w/2, cy-h/2, w, h)
}

// ClampInside shifts r so it lies fully inside bounds, shrinking it only if
// it is larger than bounds on an axis. Used at export time, where the logo
// must land entirely on the canvas.
func ClampInside(r, bounds geometry.Rect) geometry.Rect {
	if r.Width > bounds.Width {
		r.Width = bounds.Width
	}
	if r.Height > bounds.Height {
		r.Height = bounds.Height
	}
	r.X = geometry.Clamp(r.X, bounds.X, bounds.X+bounds.Width-r.Width)
	r.Y = geometry.Clamp(r.Y, bounds.Y, bounds.Y+bounds.Height-r.Height)
	return r
}
