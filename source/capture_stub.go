//go:build !withcv
// +build !withcv

package source

import (
	"context"
	"image"
)

// Capture is a placeholder for builds without OpenCV. It never yields frames.
type Capture struct{}

// OpenCapture always fails with ErrCaptureUnavailable in builds without OpenCV.
func OpenCapture(target string) (*Capture, error) {
	return nil, ErrCaptureUnavailable
}

// Next always fails with ErrCaptureUnavailable.
func (c *Capture) Next(ctx context.Context) (image.Image, error) {
	return nil, ErrCaptureUnavailable
}

// Close does nothing.
func (c *Capture) Close() error {
	return nil
}
