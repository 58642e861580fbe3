package motion

import (
	"image"

	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
)

// BackgroundPolicy decides what a second Initialize does.
type BackgroundPolicy int

const (
	// PolicyIdempotent ignores every Initialize after the first one.
	PolicyIdempotent BackgroundPolicy = iota
	// PolicyStrict rejects every Initialize after the first one with ErrAlreadyInitialized.
	PolicyStrict
)

func (p BackgroundPolicy) String() string {
	switch p {
	case PolicyIdempotent:
		return "idempotent"
	case PolicyStrict:
		return "strict"
	}
	return "unknown"
}

// Background holds the reference frame every later frame is compared against.
//
// The reference is set once from the first normalized frame and is never
// blended with later frames. Only Reset clears it.
type Background struct {
	policy BackgroundPolicy
	frame  *image.Gray
}

// NewBackground creates an empty background holder.
func NewBackground(policy BackgroundPolicy) *Background {
	return &Background{policy: policy}
}

// Policy returns the policy applied to repeated Initialize calls.
func (b *Background) Policy() BackgroundPolicy {
	return b.policy
}

// IsInitialized reports whether a reference frame has been stored.
func (b *Background) IsInitialized() bool {
	return b.frame != nil
}

// Initialize stores a private copy of frame as the reference.
//
// Arguments:
//   - frame: The normalized frame to adopt.
//
// Returns:
//   - error: ErrInvalidFrame for a nil or empty frame, ErrAlreadyInitialized on
//     a repeated call under PolicyStrict. Under PolicyIdempotent a repeated call
//     returns nil and keeps the existing reference.
func (b *Background) Initialize(frame *image.Gray) error {
	if frame == nil || frame.Bounds().Empty() {
		return errors.Wrap(ErrInvalidFrame, "background frame is empty")
	}
	if b.frame != nil {
		if b.policy == PolicyStrict {
			return ErrAlreadyInitialized
		}
		return nil
	}

	b.frame = images.CloneGray(frame)
	return nil
}

// Get returns the stored reference, or nil before Initialize.
// Callers must treat the returned frame as read-only.
func (b *Background) Get() *image.Gray {
	return b.frame
}

// Reset discards the reference.
func (b *Background) Reset() {
	b.frame = nil
}
