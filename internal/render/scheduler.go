package render

import (
	"sync"
	"sync/atomic"
	"time"
)

// defaultFrameInterval approximates one animation frame.
const defaultFrameInterval = time.Second / 60

// FrameScheduler coalesces redraw requests: any number of Invalidate calls
// between ticks produce exactly one redraw, and the redraw callback reads
// current state at fire time, never a snapshot from request time.
type FrameScheduler struct {
	interval time.Duration
	redraw   func()

	dirty    atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewFrameScheduler creates a scheduler that invokes redraw at most once
// per frame interval while dirty.
func NewFrameScheduler(redraw func()) *FrameScheduler {
	return &FrameScheduler{
		interval: defaultFrameInterval,
		redraw:   redraw,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the frame loop.
func (s *FrameScheduler) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if s.dirty.Swap(false) {
					s.redraw()
				}
			}
		}
	}()
}

// Invalidate requests a redraw on the next frame. Cheap and safe from any
// goroutine.
func (s *FrameScheduler) Invalidate() {
	s.dirty.Store(true)
}

// Stop halts the frame loop and waits for it to exit. Pending
// invalidations are dropped.
func (s *FrameScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
