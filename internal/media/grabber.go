package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// VideoGrabber reads video metadata and the first frame through OpenCV.
type VideoGrabber struct{}

// NewVideoGrabber creates the default gocv-backed grabber.
func NewVideoGrabber() *VideoGrabber {
	return &VideoGrabber{}
}

// Grab opens the video, reads its metadata and decodes the first frame.
// The returned element is muted and playback is never started; holding the
// first frame is what makes it immediately drawable.
//
// When ctx is done the capture is released out from under the decoder,
// which forces the in-flight read to fail instead of running on.
func (g *VideoGrabber) Grab(ctx context.Context, path string) (*Video, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}

	var once sync.Once
	release := func() { once.Do(func() { capture.Close() }) }
	defer release()
	stop := context.AfterFunc(ctx, release)
	defer stop()

	fps := capture.Get(gocv.VideoCaptureFPS)
	frames := int(capture.Get(gocv.VideoCaptureFrameCount))

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := capture.Read(&mat); !ok || mat.Empty() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("video %s: grab aborted: %w", path, err)
		}
		return nil, fmt.Errorf("video %s: no decodable frame", path)
	}

	frame, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("video %s: convert frame: %w", path, err)
	}

	var duration time.Duration
	if fps > 0 && frames > 0 {
		duration = time.Duration(float64(frames) / fps * float64(time.Second))
	}

	return &Video{
		FirstFrame: frame,
		FPS:        fps,
		Frames:     frames,
		Duration:   duration,
		Muted:      true,
	}, nil
}
