package gesture

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"
	"time"

	"media-combiner/internal/media"
	"media-combiner/internal/session"
	"media-combiner/pkg/geometry"
)

// fixedLayout serves a constant destination size per slot.
type fixedLayout struct {
	half      geometry.Size
	container geometry.Size
}

func (l fixedLayout) SlotDest(id session.SlotID) geometry.Size {
	if id == session.SlotLogo {
		return l.container
	}
	return l.half
}

func pngReader(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

// newLoadedSession returns a session with 800x600 images in left and right
// and a 200x100 image in the logo slot.
func newLoadedSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(&media.Loader{Timeout: 2 * time.Second})
	t.Cleanup(s.Close)

	loaded := make(chan session.SlotID, 3)
	s.On(session.EventSlotLoaded, func(id session.SlotID) { loaded <- id })

	if err := s.Load(session.SlotLeft, "left.png", pngReader(t, 800, 600), media.KindImage); err != nil {
		t.Fatalf("load left: %v", err)
	}
	if err := s.Load(session.SlotRight, "right.png", pngReader(t, 800, 600), media.KindImage); err != nil {
		t.Fatalf("load right: %v", err)
	}
	if err := s.Load(session.SlotLogo, "logo.png", pngReader(t, 200, 100), media.KindImage); err != nil {
		t.Fatalf("load logo: %v", err)
	}
	for i := 0; i < 3; i++ {
		select {
		case <-loaded:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out loading fixtures")
		}
	}
	return s
}

func newTestController(t *testing.T) (*Controller, *session.Session) {
	s := newLoadedSession(t)
	layout := fixedLayout{
		half:      geometry.NewSize(400, 300),
		container: geometry.NewSize(1000, 500),
	}
	return NewController(s, layout), s
}

func TestMouseDragUpdatesFocus(t *testing.T) {
	c, s := newTestController(t)

	// 800x600 into 400x300: cover scale 0.5, effective scale 0.5 at 100%.
	c.MouseDown(session.SlotLeft, 100, 100)
	if c.Phase() != PhaseDragging {
		t.Fatalf("phase = %v, want dragging", c.Phase())
	}
	c.MouseMove(150, 120)

	focus := s.Slot(session.SlotLeft).Focus
	wantX := 0.5 - 50.0/0.5/800 // 0.375
	wantY := 0.5 - 20.0/0.5/600
	if math.Abs(focus.X-wantX) > 1e-9 || math.Abs(focus.Y-wantY) > 1e-9 {
		t.Errorf("focus = %+v, want (%v,%v)", focus, wantX, wantY)
	}

	c.MouseUp()
	if c.Phase() != PhaseIdle {
		t.Errorf("phase after mouse up = %v, want idle", c.Phase())
	}
}

func TestMouseDragClampsFocus(t *testing.T) {
	c, s := newTestController(t)

	c.MouseDown(session.SlotLeft, 0, 0)
	c.MouseMove(100000, -100000)

	focus := s.Slot(session.SlotLeft).Focus
	if focus.X < 0 || focus.X > 1 || focus.Y < 0 || focus.Y > 1 {
		t.Errorf("focus escaped its domain: %+v", focus)
	}
}

func TestDragRequiresLoadedElement(t *testing.T) {
	s := session.New(&media.Loader{Timeout: time.Second})
	t.Cleanup(s.Close)
	c := NewController(s, fixedLayout{half: geometry.NewSize(400, 300), container: geometry.NewSize(1000, 500)})

	c.MouseDown(session.SlotLeft, 10, 10)
	if c.Phase() != PhaseIdle {
		t.Errorf("drag started over an empty slot: %v", c.Phase())
	}
}

func TestLogoDragMovesPositionInPercent(t *testing.T) {
	c, s := newTestController(t)

	c.MouseDown(session.SlotLogo, 500, 250)
	c.MouseMove(600, 300) // +100px of 1000, +50px of 500 → +10%, +10%

	pos := s.Slot(session.SlotLogo).Position
	if math.Abs(pos.X-60) > 1e-9 || math.Abs(pos.Y-60) > 1e-9 {
		t.Errorf("position = %+v, want (60,60)", pos)
	}
}

func TestPinchPreemptsDrag(t *testing.T) {
	// A one-finger drag is mid-flight on the left slot when a second finger
	// lands; the drag session is canceled and the pinch baseline is the
	// current two-finger distance.
	c, s := newTestController(t)

	c.TouchStart(1, session.SlotLeft, 100, 100)
	if c.Phase() != PhaseDragging {
		t.Fatalf("phase = %v, want dragging", c.Phase())
	}
	c.TouchMove(1, 110, 100)

	c.TouchStart(2, session.SlotLeft, 200, 100)
	if c.Phase() != PhasePinching {
		t.Fatalf("phase = %v, want pinching", c.Phase())
	}

	// Distance grows 90 → 180: zoom doubles from its pinch-start snapshot.
	baseZoom := s.Slot(session.SlotLeft).Zoom
	c.TouchMove(2, 290, 100)
	if got := s.Slot(session.SlotLeft).Zoom; math.Abs(got-baseZoom*2) > 1e-6 {
		t.Errorf("zoom = %v, want %v", got, baseZoom*2)
	}

	// Extreme spread clamps to the upper bound.
	c.TouchMove(2, 100000, 100)
	if got := s.Slot(session.SlotLeft).Zoom; got != session.MaxZoom {
		t.Errorf("zoom = %v, want clamped %v", got, session.MaxZoom)
	}

	// Dropping below two touches ends the pinch.
	c.TouchEnd(2)
	if c.Phase() != PhaseIdle {
		t.Errorf("phase after pinch end = %v, want idle", c.Phase())
	}
}

func TestLogoNeverPinches(t *testing.T) {
	c, _ := newTestController(t)

	c.TouchStart(1, session.SlotLogo, 100, 100)
	if c.Phase() != PhaseDragging {
		t.Fatalf("phase = %v, want dragging", c.Phase())
	}
	c.TouchStart(2, session.SlotLogo, 200, 200)
	if c.Phase() != PhaseDragging {
		t.Errorf("second touch over the logo must not start a pinch: %v", c.Phase())
	}
}

func TestThirdTouchIgnored(t *testing.T) {
	c, s := newTestController(t)

	c.TouchStart(1, session.SlotLeft, 100, 100)
	c.TouchStart(2, session.SlotLeft, 200, 100)
	zoomBefore := s.Slot(session.SlotLeft).Zoom

	c.TouchStart(3, session.SlotLeft, 500, 500)
	c.TouchMove(3, 900, 900)

	if c.Phase() != PhasePinching {
		t.Errorf("phase = %v, want pinching", c.Phase())
	}
	if got := s.Slot(session.SlotLeft).Zoom; got != zoomBefore {
		t.Errorf("ignored touch changed zoom: %v → %v", zoomBefore, got)
	}
}

func TestTouchDragEndsWhenNoTouchesRemain(t *testing.T) {
	c, _ := newTestController(t)

	c.TouchStart(1, session.SlotRight, 50, 50)
	c.TouchEnd(1)
	if c.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want idle", c.Phase())
	}
}

func TestTouchCancelResets(t *testing.T) {
	c, _ := newTestController(t)

	c.TouchStart(1, session.SlotLeft, 50, 50)
	c.TouchCancel()
	if c.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want idle", c.Phase())
	}
}

func TestMouseIgnoredDuringTouchSession(t *testing.T) {
	c, s := newTestController(t)

	c.TouchStart(1, session.SlotLeft, 100, 100)
	c.MouseDown(session.SlotRight, 10, 10)

	if c.Phase() != PhaseDragging {
		t.Fatalf("phase = %v, want dragging", c.Phase())
	}
	// The drag still belongs to the touch on the left slot.
	c.TouchMove(1, 120, 100)
	if focus := s.Slot(session.SlotRight).Focus; focus.X != 0.5 || focus.Y != 0.5 {
		t.Errorf("mouse down during touch session moved the right slot: %+v", focus)
	}
}

func TestTouchPreemptsMouseDrag(t *testing.T) {
	c, _ := newTestController(t)

	c.MouseDown(session.SlotLeft, 100, 100)
	c.TouchStart(1, session.SlotRight, 50, 50)

	if c.Phase() != PhaseDragging {
		t.Fatalf("phase = %v, want dragging", c.Phase())
	}
	// The session now belongs to the touch; mouse moves are dropped.
	c.MouseMove(500, 500)
	c.MouseUp()
	if c.Phase() != PhaseDragging {
		t.Errorf("mouse up ended the touch drag: %v", c.Phase())
	}
	c.TouchEnd(1)
}

func TestWheelZoom(t *testing.T) {
	c, s := newTestController(t)

	before := s.Slot(session.SlotRight).Zoom
	c.Wheel(session.SlotRight, 10)
	if got := s.Slot(session.SlotRight).Zoom; math.Abs(got-(before+10*WheelZoomFactor)) > 1e-9 {
		t.Errorf("zoom = %v, want %v", got, before+10*WheelZoomFactor)
	}

	// Wheel works mid-drag, independent of the gesture session.
	c.MouseDown(session.SlotRight, 0, 0)
	c.Wheel(session.SlotRight, -5)
	if got := s.Slot(session.SlotRight).Zoom; math.Abs(got-(before+5)) > 1e-9 {
		t.Errorf("zoom after mid-drag wheel = %v, want %v", got, before+5)
	}
}

func TestWheelIgnoredOnEmptySlot(t *testing.T) {
	s := session.New(&media.Loader{Timeout: time.Second})
	t.Cleanup(s.Close)
	c := NewController(s, fixedLayout{half: geometry.NewSize(400, 300), container: geometry.NewSize(1000, 500)})

	before := s.Slot(session.SlotLeft).Zoom
	c.Wheel(session.SlotLeft, 10)
	if got := s.Slot(session.SlotLeft).Zoom; got != before {
		t.Errorf("wheel over empty slot changed zoom: %v → %v", before, got)
	}
}
