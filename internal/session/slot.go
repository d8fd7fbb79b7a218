// Package session owns the editor's mutable state: three independent media
// slots with pan/zoom, asynchronous load lifecycle, and change events.
package session

import (
	"context"

	"media-combiner/internal/media"
	"media-combiner/pkg/geometry"
)

// SlotID identifies one of the three media carriers.
type SlotID int

const (
	SlotLeft SlotID = iota
	SlotRight
	SlotLogo
	slotCount
)

func (id SlotID) String() string {
	switch id {
	case SlotLeft:
		return "left"
	case SlotRight:
		return "right"
	case SlotLogo:
		return "logo"
	default:
		return "unknown"
	}
}

// Zoom ranges. Left/right zoom is a percentage of the cover-fit scale; the
// logo's "zoom" is its width as a percentage of the combined canvas.
const (
	MinZoom     = 10.0
	MaxZoom     = 500.0
	DefaultZoom = 100.0

	MinLogoScale     = 1.0
	MaxLogoScale     = 50.0
	DefaultLogoScale = 20.0
)

// slot is the session-private mutable state of one carrier.
type slot struct {
	id         SlotID
	sourceName string
	kind       media.Kind
	element    media.Drawable
	zoom       float64
	focus      geometry.Point2D // left/right: normalized [0,1] crop center
	position   geometry.Point2D // logo: center in percent of container [0,100]
	loading    bool
	err        error

	scratch *media.ScratchRef
	cancel  context.CancelFunc
	gen     int
}

func newSlot(id SlotID) *slot {
	s := &slot{
		id:    id,
		kind:  media.KindNone,
		zoom:  DefaultZoom,
		focus: geometry.NewPoint2D(0.5, 0.5),
	}
	if id == SlotLogo {
		s.zoom = DefaultLogoScale
		s.position = geometry.NewPoint2D(50, 50)
	}
	return s
}

func (s *slot) zoomRange() (lo, hi float64) {
	if s.id == SlotLogo {
		return MinLogoScale, MaxLogoScale
	}
	return MinZoom, MaxZoom
}

// SlotState is an immutable snapshot of a slot for readers (renderer,
// exporter, UI).
type SlotState struct {
	ID         SlotID
	SourceName string
	Kind       media.Kind
	Element    media.Drawable
	Zoom       float64
	Focus      geometry.Point2D
	Position   geometry.Point2D
	Loading    bool
	Err        error
}

// HasElement reports whether the slot holds a loaded drawable.
func (s SlotState) HasElement() bool {
	return s.Element != nil
}

// IsImage reports whether the slot holds a loaded still image.
func (s SlotState) IsImage() bool {
	_, ok := s.Element.(*media.Image)
	return ok
}

func (s *slot) snapshot() SlotState {
	return SlotState{
		ID:         s.id,
		SourceName: s.sourceName,
		Kind:       s.kind,
		Element:    s.element,
		Zoom:       s.zoom,
		Focus:      s.focus,
		Position:   s.position,
		Loading:    s.loading,
		Err:        s.err,
	}
}
