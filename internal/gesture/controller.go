// Package gesture unifies mouse drag, touch drag, pinch zoom and wheel zoom
// into slot-scoped pan/zoom updates on the editor session.
package gesture

import (
	"sync"

	"media-combiner/internal/render"
	"media-combiner/internal/session"
	"media-combiner/pkg/geometry"
)

// Phase is the controller's gesture state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhasePinching
)

func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhasePinching:
		return "pinching"
	default:
		return "idle"
	}
}

// pointerClass separates mouse and touch sessions; the two are mutually
// exclusive, one gesture session at a time.
type pointerClass int

const (
	pointerNone pointerClass = iota
	pointerMouse
	pointerTouch
)

// WheelZoomFactor converts a wheel delta into a zoom-percent delta.
const WheelZoomFactor = 1.0

// Layout reports the on-screen destination size of a slot: half the preview
// for left/right, the whole container for the logo. Drag deltas are divided
// by the effective scale derived from it.
type Layout interface {
	SlotDest(id session.SlotID) geometry.Size
}

type touchPoint struct {
	id   int
	slot session.SlotID
	pos  geometry.Point2D
}

// Controller is the gesture state machine. All methods are safe for the
// single event-dispatch goroutine plus tests; internal state is mutex
// guarded. Malformed pointer sequences are ignored, never raised.
type Controller struct {
	session *session.Session
	layout  Layout

	mu      sync.Mutex
	phase   Phase
	class   pointerClass
	slot    session.SlotID
	origin  geometry.Point2D
	base    geometry.Point2D // focus or logo-position snapshot at drag start
	touches []touchPoint

	pinchBaseDistance float64
	pinchBaseZoom     float64
}

// NewController creates a controller driving the given session.
func NewController(s *session.Session, layout Layout) *Controller {
	return &Controller{session: s, layout: layout}
}

// Phase returns the current gesture phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// MouseDown begins a mouse drag over the slot, provided the slot holds a
// loaded element and no touch session is active.
func (c *Controller) MouseDown(id session.SlotID, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.class == pointerTouch {
		return
	}
	c.beginDrag(id, geometry.NewPoint2D(x, y), pointerMouse)
}

// MouseMove continues an active mouse drag.
func (c *Controller) MouseMove(x, y float64) {
	c.mu.Lock()
	if c.phase != PhaseDragging || c.class != pointerMouse {
		c.mu.Unlock()
		return
	}
	slot, delta := c.slot, geometry.NewPoint2D(x, y).Sub(c.origin)
	base := c.base
	c.mu.Unlock()

	c.applyDrag(slot, base, delta)
}

// MouseUp ends the mouse drag.
func (c *Controller) MouseUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.class == pointerMouse {
		c.reset()
	}
}

// TouchStart registers a new touch. The first touch begins a drag
// (preempting any mouse drag); a second touch over a left/right slot
// preempts the drag and begins a pinch. Further touches are ignored.
func (c *Controller) TouchStart(touchID int, id session.SlotID, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tp := range c.touches {
		if tp.id == touchID {
			return
		}
	}

	pos := geometry.NewPoint2D(x, y)
	switch len(c.touches) {
	case 0:
		if c.class == pointerMouse {
			// A touch landing mid mouse-drag abandons the mouse session.
			c.reset()
		}
		c.touches = append(c.touches, touchPoint{id: touchID, slot: id, pos: pos})
		c.beginDrag(id, pos, pointerTouch)
	case 1:
		if id == session.SlotLogo {
			// The logo never pinches; the stray touch is dropped.
			return
		}
		c.touches = append(c.touches, touchPoint{id: touchID, slot: id, pos: pos})
		c.beginPinch(id)
	default:
		// Third and later touches are deliberately ignored.
	}
}

// TouchMove updates a touch position, continuing the drag or pinch it
// belongs to.
func (c *Controller) TouchMove(touchID int, x, y float64) {
	c.mu.Lock()
	idx := -1
	for i, tp := range c.touches {
		if tp.id == touchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.touches[idx].pos = geometry.NewPoint2D(x, y)

	switch c.phase {
	case PhaseDragging:
		if c.class != pointerTouch || idx != 0 {
			c.mu.Unlock()
			return
		}
		slot, base := c.slot, c.base
		delta := c.touches[0].pos.Sub(c.origin)
		c.mu.Unlock()
		c.applyDrag(slot, base, delta)
	case PhasePinching:
		if len(c.touches) < 2 || c.pinchBaseDistance <= 0 {
			c.mu.Unlock()
			return
		}
		slot := c.slot
		zoom := c.pinchBaseZoom * c.touches[0].pos.Distance(c.touches[1].pos) / c.pinchBaseDistance
		c.mu.Unlock()
		c.session.SetZoom(slot, zoom)
	default:
		c.mu.Unlock()
	}
}

// TouchEnd removes a touch. A pinch ends as soon as fewer than two touches
// remain; a drag ends when none remain.
func (c *Controller) TouchEnd(touchID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.touches[:0]
	for _, tp := range c.touches {
		if tp.id != touchID {
			kept = append(kept, tp)
		}
	}
	c.touches = kept

	switch {
	case c.phase == PhasePinching && len(c.touches) < 2:
		c.reset()
	case c.phase == PhaseDragging && c.class == pointerTouch && len(c.touches) == 0:
		c.reset()
	}
}

// TouchCancel drops the whole touch session.
func (c *Controller) TouchCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.class == pointerTouch {
		c.reset()
	}
	c.touches = c.touches[:0]
}

// Wheel adjusts the slot's zoom by a fixed multiple of the scroll delta,
// independent of any drag or pinch in progress.
func (c *Controller) Wheel(id session.SlotID, deltaY float64) {
	st := c.session.Slot(id)
	if !st.HasElement() {
		return
	}
	c.session.SetZoom(id, st.Zoom+deltaY*WheelZoomFactor)
}

// beginDrag starts a drag session if the slot is ready. Caller holds c.mu.
func (c *Controller) beginDrag(id session.SlotID, pos geometry.Point2D, class pointerClass) {
	st := c.session.Slot(id)
	if !st.HasElement() {
		return
	}
	c.phase = PhaseDragging
	c.class = class
	c.slot = id
	c.origin = pos
	if id == session.SlotLogo {
		c.base = st.Position
	} else {
		c.base = st.Focus
	}
}

// beginPinch preempts the current drag with a pinch on the given slot,
// using the current two-finger distance as the zoom baseline. Caller holds
// c.mu with two touches tracked.
func (c *Controller) beginPinch(id session.SlotID) {
	st := c.session.Slot(id)
	if !st.HasElement() {
		// Nothing to zoom; stay in whatever state the first touch built.
		c.touches = c.touches[:1]
		return
	}
	c.phase = PhasePinching
	c.class = pointerTouch
	c.slot = id
	c.pinchBaseDistance = c.touches[0].pos.Distance(c.touches[1].pos)
	c.pinchBaseZoom = st.Zoom
}

// applyDrag converts a screen-space delta into a focus/position update.
func (c *Controller) applyDrag(id session.SlotID, base, delta geometry.Point2D) {
	dest := c.layout.SlotDest(id)

	if id == session.SlotLogo {
		if !dest.IsPositive() {
			return
		}
		c.session.SetLogoPosition(geometry.NewPoint2D(
			base.X+delta.X/dest.Width*100,
			base.Y+delta.Y/dest.Height*100,
		))
		return
	}

	st := c.session.Slot(id)
	if !st.HasElement() {
		return
	}
	srcW, srcH := float64(st.Element.NaturalWidth()), float64(st.Element.NaturalHeight())
	scale := render.EffectiveScale(geometry.NewSize(srcW, srcH), dest, st.Zoom)
	if scale <= 0 {
		return
	}
	// Screen pixels → source pixels → normalized focus space; dragging the
	// content right moves the focus left.
	c.session.SetFocus(id, geometry.NewPoint2D(
		base.X-delta.X/scale/srcW,
		base.Y-delta.Y/scale/srcH,
	))
}

// reset returns the controller to idle. Caller holds c.mu.
func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.class = pointerNone
	c.pinchBaseDistance = 0
	c.pinchBaseZoom = 0
}
