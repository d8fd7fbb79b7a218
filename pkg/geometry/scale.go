package geometry

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to the unit interval [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ClampPoint limits both coordinates of p to the given range.
func ClampPoint(p Point2D, lo, hi float64) Point2D {
	return Point2D{X: Clamp(p.X, lo, hi), Y: Clamp(p.Y, lo, hi)}
}

// CoverScale returns the scale factor that makes src fully cover dst while
// preserving aspect ratio: the larger of the two axis-fit scales.
// Returns 0 if either size is degenerate.
func CoverScale(src, dst Size) float64 {
	if !src.IsPositive() || !dst.IsPositive() {
		return 0
	}
	if src.Aspect() > dst.Aspect() {
		return dst.Height / src.Height
	}
	return dst.Width / src.Width
}

// FitScale returns the scale factor that makes src fully fit inside dst
// while preserving aspect ratio: the smaller of the two axis-fit scales.
func FitScale(src, dst Size) float64 {
	if !src.IsPositive() || !dst.IsPositive() {
		return 0
	}
	sx := dst.Width / src.Width
	sy := dst.Height / src.Height
	if sy < sx {
		return sy
	}
	return sx
}
