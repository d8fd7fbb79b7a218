package media

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	// Register decoders for the formats accepted by the file dialogs.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultLoadTimeout bounds every load attempt.
const DefaultLoadTimeout = 20 * time.Second

// Source is a byte source for a load attempt. Sources backed by a local
// file additionally report their path so video decoders can open it
// directly.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
	Path() (string, bool)
}

// FileSource is a Source reading directly from a file on disk.
type FileSource string

// Name returns the file's base name.
func (f FileSource) Name() string { return filepath.Base(string(f)) }

// Open opens the file for reading.
func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// Path returns the file path.
func (f FileSource) Path() (string, bool) { return string(f), true }

// FrameGrabber decodes a video file's metadata and first frame. Grab blocks
// until the first frame is available, decoding fails, or ctx is done; on
// cancellation the grabber must release its capture and return promptly.
type FrameGrabber interface {
	Grab(ctx context.Context, path string) (*Video, error)
}

// Loader turns byte sources into validated drawable elements.
//
// Every load is bounded by Timeout. Cancellation via the caller's context
// actively halts in-flight work (the source reader is closed under the
// image decoder; the video capture is released mid-grab) and guarantees the
// abandoned attempt's result is never surfaced.
type Loader struct {
	Timeout time.Duration
	Grabber FrameGrabber
}

// NewLoader creates a loader with the default timeout and the gocv-backed
// frame grabber.
func NewLoader() *Loader {
	return &Loader{
		Timeout: DefaultLoadTimeout,
		Grabber: NewVideoGrabber(),
	}
}

type loadResult struct {
	drawable Drawable
	err      error
}

// Load decodes the source as the declared kind and returns a validated
// drawable. Failures are classified as ErrDecode, ErrInvalidDimensions,
// ErrTimeout, ErrUnsupportedKind or ErrCanceled.
func (l *Loader) Load(ctx context.Context, src Source, kind Kind) (Drawable, error) {
	switch kind {
	case KindImage, KindVideo:
	default:
		return nil, loadError(ErrUnsupportedKind, src.Name(), nil)
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if kind == KindImage {
		return l.loadImage(ctx, src)
	}
	return l.loadVideo(ctx, src)
}

func (l *Loader) loadImage(ctx context.Context, src Source) (Drawable, error) {
	r, err := src.Open()
	if err != nil {
		return nil, loadError(ErrDecode, src.Name(), err)
	}

	ch := make(chan loadResult, 1)
	go func() {
		defer r.Close()
		img, _, err := image.Decode(r)
		if err != nil {
			ch <- loadResult{err: loadError(ErrDecode, src.Name(), err)}
			return
		}
		ch <- loadResult{drawable: &Image{Img: img}}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return validateDimensions(res.drawable, src.Name())
	case <-ctx.Done():
		// Closing under the decoder forces it to fail promptly rather than
		// letting the read run to completion in the background.
		r.Close()
		<-ch
		return nil, classifyCtx(ctx, src.Name())
	}
}

func (l *Loader) loadVideo(ctx context.Context, src Source) (Drawable, error) {
	grabber := l.Grabber
	if grabber == nil {
		grabber = NewVideoGrabber()
	}

	path, ok := src.Path()
	if !ok {
		return nil, loadError(ErrDecode, src.Name(), errors.New("video source has no local file"))
	}

	ch := make(chan loadResult, 1)
	go func() {
		vid, err := grabber.Grab(ctx, path)
		if err != nil {
			ch <- loadResult{err: loadError(ErrDecode, src.Name(), err)}
			return
		}
		ch <- loadResult{drawable: vid}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, classifyCtx(ctx, src.Name())
			}
			return nil, res.err
		}
		return validateDimensions(res.drawable, src.Name())
	case <-ctx.Done():
		// The grabber sees the same context and releases its capture; wait
		// for it so no decode outlives the attempt.
		<-ch
		return nil, classifyCtx(ctx, src.Name())
	}
}

// validateDimensions rejects drawables whose natural size is degenerate.
func validateDimensions(d Drawable, name string) (Drawable, error) {
	if d.NaturalWidth() <= 0 || d.NaturalHeight() <= 0 {
		return nil, loadError(ErrInvalidDimensions, name, nil)
	}
	return d, nil
}

func classifyCtx(ctx context.Context, name string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return loadError(ErrTimeout, name, nil)
	}
	return loadError(ErrCanceled, name, nil)
}
