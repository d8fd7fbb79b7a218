package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"media-combiner/internal/media"
	"media-combiner/internal/session"
	"media-combiner/pkg/geometry"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func loadSlot(t *testing.T, s *session.Session, id session.SlotID, name string, r io.Reader, kind media.Kind) {
	t.Helper()
	done := make(chan session.SlotID, 8)
	s.On(session.EventSlotLoaded, func(got session.SlotID) {
		if got == id {
			done <- got
		}
	})
	if err := s.Load(id, name, r, kind); err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out loading %s", id)
	}
}

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func newExportSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(&media.Loader{Timeout: 2 * time.Second})
	t.Cleanup(s.Close)
	loadSlot(t, s, session.SlotLeft, "left.png", solidPNG(t, 800, 600, red), media.KindImage)
	loadSlot(t, s, session.SlotRight, "right.png", solidPNG(t, 1200, 900, blue), media.KindImage)
	return s
}

func TestDimensions(t *testing.T) {
	s := newExportSession(t)

	tests := []struct {
		name    string
		preview geometry.Size
		wantW   int
		wantH   int
	}{
		{"sixteen by nine preview", geometry.NewSize(1600, 900), 2400, 1350},
		{"square preview", geometry.NewSize(600, 600), 2400, 2400},
		{"degenerate preview falls back", geometry.Size{}, 2400, 1350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := Dimensions(s, tt.preview)
			if err != nil {
				t.Fatalf("Dimensions: %v", err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDimensionsFloorsSmallSources(t *testing.T) {
	s := session.New(&media.Loader{Timeout: 2 * time.Second})
	t.Cleanup(s.Close)
	loadSlot(t, s, session.SlotLeft, "l.png", solidPNG(t, 40, 30, red), media.KindImage)
	loadSlot(t, s, session.SlotRight, "r.png", solidPNG(t, 60, 40, blue), media.KindImage)

	w, h, err := Dimensions(s, geometry.NewSize(1600, 900))
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 1000 || h != 563 {
		t.Errorf("got %dx%d, want 1000x563", w, h)
	}
}

func TestCheckBlocksWhenNotReady(t *testing.T) {
	t.Run("empty slots", func(t *testing.T) {
		s := session.New(&media.Loader{Timeout: time.Second})
		t.Cleanup(s.Close)
		if err := Check(s); !errors.Is(err, ErrNotReady) {
			t.Errorf("Check = %v, want ErrNotReady", err)
		}
	})

	t.Run("slot still loading", func(t *testing.T) {
		// A grabber that never returns keeps the left slot in its loading
		// state while we probe the preconditions.
		release := make(chan struct{})
		s := session.New(&media.Loader{Timeout: 10 * time.Second, Grabber: blockingGrabber{release: release}})
		t.Cleanup(s.Close)
		t.Cleanup(func() { close(release) })
		loadSlot(t, s, session.SlotRight, "r.png", solidPNG(t, 800, 600, blue), media.KindImage)
		s.LoadFile(session.SlotLeft, stubVideoFile(t), media.KindVideo)

		if err := Check(s); !errors.Is(err, ErrNotReady) {
			t.Errorf("Check = %v, want ErrNotReady", err)
		}
		if _, err := Render(s, geometry.NewSize(1600, 900)); !errors.Is(err, ErrNotReady) {
			t.Errorf("Render = %v, want ErrNotReady", err)
		}
	})

	t.Run("video blocks export", func(t *testing.T) {
		s := session.New(&media.Loader{
			Timeout: 2 * time.Second,
			Grabber: stubGrabber{frame: image.NewRGBA(image.Rect(0, 0, 320, 240))},
		})
		t.Cleanup(s.Close)
		loadSlot(t, s, session.SlotLeft, "l.png", solidPNG(t, 800, 600, red), media.KindImage)

		done := make(chan session.SlotID, 1)
		s.On(session.EventSlotLoaded, func(id session.SlotID) {
			if id == session.SlotRight {
				done <- id
			}
		})
		s.LoadFile(session.SlotRight, stubVideoFile(t), media.KindVideo)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out loading video")
		}
		if err := Check(s); !errors.Is(err, ErrNotReady) {
			t.Errorf("Check = %v, want ErrNotReady", err)
		}
	})
}

func TestRenderComposite(t *testing.T) {
	s := newExportSession(t)

	img, err := Render(s, geometry.NewSize(1600, 900))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 2400 || b.Dy() != 1350 {
		t.Fatalf("composite is %dx%d, want 2400x1350", b.Dx(), b.Dy())
	}
	if got := img.RGBAAt(600, 675); got != red {
		t.Errorf("left half center = %v, want red", got)
	}
	if got := img.RGBAAt(1800, 675); got != blue {
		t.Errorf("right half center = %v, want blue", got)
	}
}

func TestRenderPlacesLogo(t *testing.T) {
	s := newExportSession(t)
	loadSlot(t, s, session.SlotLogo, "logo.png", solidPNG(t, 200, 100, green), media.KindImage)

	img, err := Render(s, geometry.NewSize(1600, 900))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Default placement: 20% of canvas width, centered at (50%,50%).
	if got := img.RGBAAt(1200, 675); got != green {
		t.Errorf("canvas center = %v, want the logo", got)
	}
	// Well outside the 480x240 logo rect the halves show through.
	if got := img.RGBAAt(100, 100); got != red {
		t.Errorf("far corner = %v, want red", got)
	}
}

func TestRenderClampsLogoInside(t *testing.T) {
	s := newExportSession(t)
	loadSlot(t, s, session.SlotLogo, "logo.png", solidPNG(t, 200, 100, green), media.KindImage)
	s.SetLogoPosition(geometry.NewPoint2D(100, 0))

	img, err := Render(s, geometry.NewSize(1600, 900))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Pushed to the top-right corner the logo still sits fully on canvas.
	if got := img.RGBAAt(2399, 0); got != green {
		t.Errorf("top-right corner = %v, want the logo", got)
	}
	if got := img.RGBAAt(2399, 1349); got != blue {
		t.Errorf("bottom-right corner = %v, want blue", got)
	}
}

func TestExportWritesFile(t *testing.T) {
	s := newExportSession(t)
	dir := t.TempDir()

	path, err := Export(s, geometry.NewSize(1600, 900), dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(path) != Filename {
		t.Errorf("exported as %q, want %q", filepath.Base(path), Filename)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if cfg.Width != 2400 || cfg.Height != 1350 {
		t.Errorf("artifact is %dx%d, want 2400x1350", cfg.Width, cfg.Height)
	}
}

func TestExportLeavesNoFileWhenNotReady(t *testing.T) {
	s := session.New(&media.Loader{Timeout: time.Second})
	t.Cleanup(s.Close)
	dir := t.TempDir()

	if _, err := Export(s, geometry.NewSize(1600, 900), dir); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Export = %v, want ErrNotReady", err)
	}
	if _, err := os.Stat(filepath.Join(dir, Filename)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("artifact exists after a refused export")
	}
}

func stubVideoFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type stubGrabber struct{ frame image.Image }

func (g stubGrabber) Grab(context.Context, string) (*media.Video, error) {
	return &media.Video{FirstFrame: g.frame, FPS: 30, Frames: 1, Duration: time.Second, Muted: true}, nil
}

type blockingGrabber struct{ release chan struct{} }

func (g blockingGrabber) Grab(ctx context.Context, _ string) (*media.Video, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return nil, errors.New("grab abandoned")
}
