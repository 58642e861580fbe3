//go:build !withcv
// +build !withcv

package display

import (
	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/motion"
)

// Window is a placeholder for builds without OpenCV.
type Window struct{}

// Open always fails with ErrDisplayUnavailable in builds without OpenCV.
func Open(opts Options) (*Window, error) {
	return nil, ErrDisplayUnavailable
}

// Consume always fails with ErrDisplayUnavailable.
func (w *Window) Consume(frame controller.Frame, result motion.Result) error {
	return ErrDisplayUnavailable
}

// Close does nothing.
func (w *Window) Close() error {
	return nil
}
