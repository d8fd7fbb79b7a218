package session

import (
	"context"
	"io"
	"log"
	"sync"

	"media-combiner/internal/media"
	"media-combiner/pkg/geometry"
)

// EventType identifies session events.
type EventType int

const (
	EventSlotLoading EventType = iota
	EventSlotLoaded
	EventSlotError
	EventSlotCleared
	EventViewChanged
)

// EventListener is called when an event occurs. The payload is the SlotID
// the event concerns.
type EventListener func(id SlotID)

// Session is the editor session: three slots, their load lifecycle, and a
// single redraw-request signal. All state transitions happen under one
// mutex, so observers never see a partial update.
type Session struct {
	mu        sync.RWMutex
	loader    *media.Loader
	scratch   *media.ScratchStore
	slots     [slotCount]*slot
	listeners map[EventType][]EventListener

	// invalidate requests (never forces) a redraw; set by the view layer.
	invalidate func()

	closed bool
}

// New creates a session with its own scratch store.
func New(loader *media.Loader) *Session {
	s := &Session{
		loader:    loader,
		scratch:   media.NewScratchStore(),
		listeners: make(map[EventType][]EventListener),
	}
	for id := SlotID(0); id < slotCount; id++ {
		s.slots[id] = newSlot(id)
	}
	return s
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

func (s *Session) emit(event EventType, id SlotID) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(id)
	}
}

// SetInvalidator installs the redraw-request hook (the frame scheduler's
// Invalidate). May be nil.
func (s *Session) SetInvalidator(fn func()) {
	s.mu.Lock()
	s.invalidate = fn
	s.mu.Unlock()
}

func (s *Session) requestRedraw() {
	s.mu.RLock()
	fn := s.invalidate
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Slot returns a snapshot of the given slot.
func (s *Session) Slot(id SlotID) SlotState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[id].snapshot()
}

// Load replaces the slot's source and starts an asynchronous, bounded load.
// A load still in flight for the same slot is superseded: its eventual
// result is discarded and its resources released.
func (s *Session) Load(id SlotID, name string, r io.Reader, kind media.Kind) error {
	ref, err := s.scratch.Acquire(name, r)
	if err != nil {
		return err
	}
	s.beginLoad(id, name, ref, kind)
	return nil
}

// LoadFile is Load for a file on disk, without copying it through the
// scratch store.
func (s *Session) LoadFile(id SlotID, path string, kind media.Kind) {
	src := media.FileSource(path)
	s.startLoad(id, src.Name(), src, nil, kind)
}

func (s *Session) beginLoad(id SlotID, name string, ref *media.ScratchRef, kind media.Kind) {
	s.startLoad(id, name, ref, ref, kind)
}

// startLoad transitions the slot to loading and spawns the load goroutine.
// ref may be nil when the source is not scratch-backed.
func (s *Session) startLoad(id SlotID, name string, src media.Source, ref *media.ScratchRef, kind media.Kind) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		s.scratch.Release(ref)
		return
	}
	sl := s.slots[id]
	sl.supersede(s.scratch)
	sl.gen++
	gen := sl.gen
	sl.sourceName = name
	sl.kind = kind
	sl.loading = true
	sl.err = nil
	sl.cancel = cancel
	s.mu.Unlock()

	s.emit(EventSlotLoading, id)
	s.requestRedraw()

	go func() {
		element, err := s.loader.Load(ctx, src, kind)

		s.mu.Lock()
		sl := s.slots[id]
		if sl.gen != gen || s.closed {
			// A newer load owns the slot now; this result is stale.
			s.mu.Unlock()
			s.scratch.Release(ref)
			return
		}
		sl.loading = false
		sl.cancel = nil
		if err != nil {
			sl.element = nil
			sl.err = err
			sl.scratch = nil
			s.mu.Unlock()
			s.scratch.Release(ref)
			log.Printf("session: %s load failed: %v", id, err)
			s.emit(EventSlotError, id)
			s.requestRedraw()
			return
		}
		sl.element = element
		sl.err = nil
		sl.scratch = ref
		s.mu.Unlock()
		s.emit(EventSlotLoaded, id)
		s.requestRedraw()
	}()
}

// supersede cancels any in-flight load and releases the slot's current
// scratch ref. Caller holds s.mu.
func (sl *slot) supersede(store *media.ScratchStore) {
	if sl.cancel != nil {
		sl.cancel()
		sl.cancel = nil
	}
	if sl.scratch != nil {
		store.Release(sl.scratch)
		sl.scratch = nil
	}
	sl.element = nil
	sl.loading = false
	sl.err = nil
}

// Clear empties the slot and releases its resources.
func (s *Session) Clear(id SlotID) {
	s.mu.Lock()
	sl := s.slots[id]
	sl.supersede(s.scratch)
	sl.gen++
	sl.sourceName = ""
	sl.kind = media.KindNone
	s.mu.Unlock()

	s.emit(EventSlotCleared, id)
	s.requestRedraw()
}

// SetZoom stores a clamped zoom for the slot and requests a redraw.
func (s *Session) SetZoom(id SlotID, zoom float64) {
	s.mu.Lock()
	sl := s.slots[id]
	lo, hi := sl.zoomRange()
	sl.zoom = geometry.Clamp(zoom, lo, hi)
	s.mu.Unlock()

	s.emit(EventViewChanged, id)
	s.requestRedraw()
}

// SetLogoScale stores a clamped logo width in percent of the container.
func (s *Session) SetLogoScale(scale float64) {
	s.SetZoom(SlotLogo, scale)
}

// SetFocus stores a clamped crop focus for a left/right slot.
func (s *Session) SetFocus(id SlotID, focus geometry.Point2D) {
	if id == SlotLogo {
		return
	}
	s.mu.Lock()
	s.slots[id].focus = geometry.ClampPoint(focus, 0, 1)
	s.mu.Unlock()

	s.emit(EventViewChanged, id)
	s.requestRedraw()
}

// SetLogoPosition stores a clamped logo center position in percent.
func (s *Session) SetLogoPosition(pos geometry.Point2D) {
	s.mu.Lock()
	s.slots[SlotLogo].position = geometry.ClampPoint(pos, 0, 100)
	s.mu.Unlock()

	s.emit(EventViewChanged, SlotLogo)
	s.requestRedraw()
}

// Close cancels in-flight loads and releases every slot's resources.
// The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, sl := range s.slots {
		sl.supersede(s.scratch)
	}
	s.mu.Unlock()

	s.scratch.Close()
}

// ScratchLiveCount reports the number of unreleased scratch refs; the
// steady-state invariant is at most one per loaded slot.
func (s *Session) ScratchLiveCount() int {
	return s.scratch.LiveCount()
}
