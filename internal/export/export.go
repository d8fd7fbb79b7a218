// Package export renders the left and right slots plus the optional logo
// into a single high-resolution PNG composite.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"media-combiner/internal/render"
	"media-combiner/internal/session"
	"media-combiner/pkg/geometry"
)

// Filename is the deterministic name of the exported artifact.
const Filename = "combined-image.png"

// minHalfWidth floors each half of the composite so tiny sources still
// produce a usable file.
const minHalfWidth = 500.0

var (
	// ErrNotReady reports that the session state does not permit an export.
	ErrNotReady = errors.New("export not ready")
	// ErrInvalidDimensions reports a non-finite or non-positive output size.
	ErrInvalidDimensions = errors.New("invalid export dimensions")
	// ErrEncodeFailure reports that the encoder produced no usable output.
	ErrEncodeFailure = errors.New("encode failure")
)

// Check reports whether the session can export right now. Both halves must
// hold loaded still images; a logo slot with a pending or failed load also
// blocks. Check reads state only and performs no raster work.
func Check(s *session.Session) error {
	for _, id := range []session.SlotID{session.SlotLeft, session.SlotRight} {
		st := s.Slot(id)
		switch {
		case st.Loading:
			return fmt.Errorf("%w: %s slot is still loading", ErrNotReady, id)
		case st.Err != nil:
			return fmt.Errorf("%w: %s slot failed to load: %v", ErrNotReady, id, st.Err)
		case !st.HasElement():
			return fmt.Errorf("%w: %s slot is empty", ErrNotReady, id)
		case !st.IsImage():
			return fmt.Errorf("%w: %s slot holds a video", ErrNotReady, id)
		}
	}
	logo := s.Slot(session.SlotLogo)
	if logo.Loading {
		return fmt.Errorf("%w: logo is still loading", ErrNotReady)
	}
	if logo.Err != nil {
		return fmt.Errorf("%w: logo failed to load: %v", ErrNotReady, logo.Err)
	}
	return nil
}

// Dimensions computes the composite size: each half as wide as the widest
// source (floored at 500px), with the height matching the live preview aspect
// ratio so the export looks like what the user sees.
func Dimensions(s *session.Session, preview geometry.Size) (int, int, error) {
	halfW := minHalfWidth
	for _, id := range []session.SlotID{session.SlotLeft, session.SlotRight} {
		if st := s.Slot(id); st.HasElement() {
			halfW = math.Max(halfW, float64(st.Element.NaturalWidth()))
		}
	}
	width := 2 * halfW

	aspect := 16.0 / 9.0
	if preview.IsPositive() {
		aspect = preview.Aspect()
	}
	height := width / aspect

	if !finitePositive(width) || !finitePositive(height) {
		return 0, 0, fmt.Errorf("%w: %gx%g", ErrInvalidDimensions, width, height)
	}
	return int(math.Round(width)), int(math.Round(height)), nil
}

// Render produces the composite image: white background, each half drawn
// with the same cover-fit window math the preview uses, logo on top.
func Render(s *session.Session, preview geometry.Size) (*image.RGBA, error) {
	if err := Check(s); err != nil {
		return nil, err
	}
	w, h, err := Dimensions(s, preview)
	if err != nil {
		return nil, err
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	leftRect, rightRect := render.Halves(w, h)
	left, right := s.Slot(session.SlotLeft), s.Slot(session.SlotRight)
	render.DrawSlot(out, leftRect, left.Element.Frame(), left.Zoom, left.Focus)
	render.DrawSlot(out, rightRect, right.Element.Frame(), right.Zoom, right.Focus)

	if logo := s.Slot(session.SlotLogo); logo.HasElement() {
		if err := drawLogo(out, logo, preview); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Export renders the composite and writes Filename under dir. The file only
// appears once the encode has fully succeeded.
func Export(s *session.Session, preview geometry.Size, dir string) (string, error) {
	img, err := Render(s, preview)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Encode writes the image in the given format. PNG is lossless; quality
// options pass through for callers that want a lossy artifact instead.
func Encode(w io.Writer, img image.Image, format imaging.Format, opts ...imaging.EncodeOption) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailure, err)
	}
	if buf.Len() == 0 {
		return fmt.Errorf("%w: encoder produced no bytes", ErrEncodeFailure)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write encoded image: %w", err)
	}
	return nil
}

// drawLogo reproduces the preview's centered, aspect-locked logo placement
// at export resolution. The preview rectangle is mapped into export space
// with a fitted affine transform, then clamped fully inside the canvas.
func drawLogo(dst *image.RGBA, logo session.SlotState, preview geometry.Size) error {
	exportSize := geometry.NewSize(float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy()))
	if !preview.IsPositive() {
		preview = exportSize
	}

	logoSize := geometry.NewSize(
		float64(logo.Element.NaturalWidth()),
		float64(logo.Element.NaturalHeight()),
	)
	place := render.LogoPlacement(preview, logoSize, logo.Zoom, logo.Position)
	if place.Width <= 0 || place.Height <= 0 {
		return nil
	}

	tf, err := previewToExport(preview, exportSize)
	if err != nil {
		return fmt.Errorf("map logo placement: %w", err)
	}
	lo := tf.Apply(geometry.NewPoint2D(place.X, place.Y))
	hi := tf.Apply(geometry.NewPoint2D(place.X+place.Width, place.Y+place.Height))
	rect := render.ClampInside(
		geometry.NewRect(lo.X, lo.Y, hi.X-lo.X, hi.Y-lo.Y),
		geometry.NewRect(0, 0, exportSize.Width, exportSize.Height),
	)

	rw, rh := int(math.Round(rect.Width)), int(math.Round(rect.Height))
	if rw < 1 || rh < 1 {
		return nil
	}
	scaled := imaging.Resize(logo.Element.Frame(), rw, rh, imaging.Lanczos)
	origin := image.Pt(int(math.Round(rect.X)), int(math.Round(rect.Y)))
	draw.Draw(dst, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(rw, rh))},
		scaled, image.Point{}, draw.Over)
	return nil
}

// previewToExport fits the affine transform taking preview-space corners to
// export-space corners.
func previewToExport(preview, export geometry.Size) (geometry.AffineTransform, error) {
	src := []geometry.Point2D{
		{}, {X: preview.Width}, {X: preview.Width, Y: preview.Height}, {Y: preview.Height},
	}
	dst := []geometry.Point2D{
		{}, {X: export.Width}, {X: export.Width, Y: export.Height}, {Y: export.Height},
	}
	return geometry.FitAffine(src, dst)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
