package media

import (
	"errors"
	"fmt"
)

// Load failure classification. Callers distinguish these with errors.Is;
// each failed load reports exactly one of them.
var (
	// ErrDecode indicates the underlying decode/parsing failed.
	ErrDecode = errors.New("media: decode failed")
	// ErrInvalidDimensions indicates decode succeeded but width or height is zero.
	ErrInvalidDimensions = errors.New("media: invalid dimensions")
	// ErrTimeout indicates decode did not complete within the load timeout.
	ErrTimeout = errors.New("media: load timed out")
	// ErrUnsupportedKind indicates the declared kind is not image or video.
	ErrUnsupportedKind = errors.New("media: unsupported kind")
	// ErrCanceled indicates the caller abandoned the load before completion.
	ErrCanceled = errors.New("media: load canceled")
)

// loadError wraps a classification sentinel with source context.
func loadError(sentinel error, name string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", sentinel, name)
	}
	return fmt.Errorf("%w: %s: %v", sentinel, name, cause)
}
