// Package media provides loading and validation of drawable media elements.
package media

import (
	"image"
	"path/filepath"
	"strings"
	"time"
)

// Kind identifies the type of a media source.
type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "none"
	}
}

// Drawable is a decoded, dimension-validated media element. Both variants
// guarantee NaturalWidth() > 0 and NaturalHeight() > 0 and expose a raster
// frame that can be drawn without further decoding.
type Drawable interface {
	NaturalWidth() int
	NaturalHeight() int
	// Frame returns the current drawable raster: the image itself, or a
	// video's first decoded frame.
	Frame() image.Image
}

// Image is a decoded still image.
type Image struct {
	Img image.Image
}

// NaturalWidth returns the image width in pixels.
func (m *Image) NaturalWidth() int {
	return m.Img.Bounds().Dx()
}

// NaturalHeight returns the image height in pixels.
func (m *Image) NaturalHeight() int {
	return m.Img.Bounds().Dy()
}

// Frame returns the decoded image.
func (m *Image) Frame() image.Image {
	return m.Img
}

// Video is a video element primed for inline display: its metadata and first
// frame are decoded eagerly, it is muted, and playback is never started.
type Video struct {
	FirstFrame image.Image
	FPS        float64
	Frames     int
	Duration   time.Duration
	Muted      bool
}

// NaturalWidth returns the video frame width in pixels.
func (m *Video) NaturalWidth() int {
	return m.FirstFrame.Bounds().Dx()
}

// NaturalHeight returns the video frame height in pixels.
func (m *Video) NaturalHeight() int {
	return m.FirstFrame.Bounds().Dy()
}

// Frame returns the first decoded frame.
func (m *Video) Frame() image.Image {
	return m.FirstFrame
}

// NaturalSize returns a drawable's dimensions as floats.
func NaturalSize(d Drawable) (w, h float64) {
	return float64(d.NaturalWidth()), float64(d.NaturalHeight())
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true,
	".mkv": true, ".webm": true, ".m4v": true,
}

// KindForPath classifies a file by its extension. Unknown extensions are
// treated as images, since the image decoders are the ones that can say no
// cheaply.
func KindForPath(path string) Kind {
	if videoExtensions[strings.ToLower(filepath.Ext(path))] {
		return KindVideo
	}
	return KindImage
}
