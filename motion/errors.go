package motion

import (
	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidFrame is returned when a frame is nil, empty or malformed.
	// The frame can be skipped and the stream continued.
	ErrInvalidFrame = images.ErrInvalidFrame
	// ErrDimensionMismatch is returned when a normalized frame no longer has
	// the geometry of the background reference.
	ErrDimensionMismatch = images.ErrDimensionMismatch
	// ErrAlreadyInitialized is returned by a strict Background on a second Initialize.
	ErrAlreadyInitialized = errors.New("background already initialized")
)
