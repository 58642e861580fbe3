package source

import (
	"context"
	"image"
)

// Sequence replays frames held in memory.
type Sequence struct {
	frames []image.Image
	pos    int
}

// NewSequence creates a source that yields frames in order.
func NewSequence(frames ...image.Image) *Sequence {
	return &Sequence{frames: frames}
}

// Next returns the next frame, or ErrEndOfStream after the last one.
func (s *Sequence) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.frames) {
		return nil, ErrEndOfStream
	}

	frame := s.frames[s.pos]
	s.pos++
	return frame, nil
}

// Len returns the total number of frames.
func (s *Sequence) Len() int {
	return len(s.frames)
}

// Close drops the remaining frames.
func (s *Sequence) Close() error {
	s.pos = len(s.frames)
	return nil
}
