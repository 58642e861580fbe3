// Package motion - Frame differencing motion detection against a fixed background.
//
// A Detector adopts the first frame it sees as the background reference and
// compares every later frame against it:
//
//	normalize -> absolute difference -> threshold -> dilate -> external contours -> area filter
//
// The reference is never updated, so anything that moves into the scene and
// stays there keeps being reported.
package motion

import (
	"image"

	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
)

// State is the lifecycle state of a Detector.
type State int

const (
	// StateUninitialized means no background reference has been set yet.
	StateUninitialized State = iota
	// StateRunning means frames are compared against the background.
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "uninitialized"
}

// MismatchPolicy decides what happens when a frame no longer matches the
// background geometry, for example after a camera changes resolution.
type MismatchPolicy int

const (
	// MismatchFail returns ErrDimensionMismatch and keeps the background.
	MismatchFail MismatchPolicy = iota
	// MismatchRebaseline discards the background and adopts the frame as the new reference.
	MismatchRebaseline
)

func (p MismatchPolicy) String() string {
	if p == MismatchRebaseline {
		return "rebaseline"
	}
	return "fail"
}

// Stage names reported to a StageTimer.
const (
	StageNormalize = "normalize"
	StageDiff      = "diff"
	StageBinarize  = "binarize"
	StageExtract   = "extract"
)

// StageTimer receives the duration of each pipeline stage.
// The returned function is called when the stage completes.
type StageTimer interface {
	StartOperation(name string) func()
}

// Option customizes a Detector.
type Option func(*Detector)

// WithBackgroundPolicy sets the policy of the detector's Background.
func WithBackgroundPolicy(policy BackgroundPolicy) Option {
	return func(d *Detector) {
		d.background = NewBackground(policy)
	}
}

// WithMismatchPolicy sets how a change of frame geometry is handled.
func WithMismatchPolicy(policy MismatchPolicy) Option {
	return func(d *Detector) {
		d.mismatch = policy
	}
}

// WithStageTimer reports stage durations to timer.
func WithStageTimer(timer StageTimer) Option {
	return func(d *Detector) {
		d.timer = timer
	}
}

// Detector runs the motion pipeline on a sequence of frames.
//
// A Detector is not safe for concurrent use. Frames must be processed by a
// single consumer, one after another.
type Detector struct {
	config     Config
	background *Background
	mismatch   MismatchPolicy
	timer      StageTimer
	state      State
	frames     uint64
}

// New creates a motion detector.
//
// Arguments:
//   - config: The pipeline configuration, validated before use.
//   - opts: Optional policies and hooks.
//
// Returns:
//   - *Detector: A detector in StateUninitialized.
//   - error: An error if the configuration is out of range.
//
// @example
// detector, err := motion.New(motion.DefaultConfig(), motion.WithMismatchPolicy(motion.MismatchRebaseline))
// result, err := detector.Process(frame)
func New(config Config, opts ...Option) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid motion config")
	}

	d := &Detector{
		config:     config,
		background: NewBackground(PolicyIdempotent),
		mismatch:   MismatchFail,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Config returns the configuration the detector was created with.
func (d *Detector) Config() Config {
	return d.config
}

// State returns the current lifecycle state.
func (d *Detector) State() State {
	return d.state
}

// Background returns the detector's background holder.
func (d *Detector) Background() *Background {
	return d.background
}

// MismatchPolicy returns the configured geometry mismatch policy.
func (d *Detector) MismatchPolicy() MismatchPolicy {
	return d.mismatch
}

// Frames returns how many frames were handed to Process, including rejected ones.
func (d *Detector) Frames() uint64 {
	return d.frames
}

// Process runs one frame through the pipeline.
//
// The first frame that normalizes successfully becomes the background and
// yields an Unoccupied baseline result without any detection. Every later frame
// is differenced against that background, binarized and reduced to regions.
//
// Errors leave the background untouched, so the caller may skip the frame and
// carry on with the next one.
//
// Arguments:
//   - frame: The raw frame, any size, color or grayscale.
//
// Returns:
//   - Result: The occupancy status and regions, in normalized coordinates.
//   - error: ErrInvalidFrame for unusable frames, ErrDimensionMismatch when the
//     frame geometry changed and the policy is MismatchFail.
func (d *Detector) Process(frame image.Image) (Result, error) {
	d.frames++

	done := d.stage(StageNormalize)
	gray, err := images.Normalize(frame, d.config.TargetWidth)
	done()
	if err != nil {
		return Result{}, errors.Wrapf(err, "frame %d", d.frames)
	}

	if d.state == StateUninitialized {
		return d.baseline(gray)
	}

	reference := d.background.Get()
	if !images.SameSize(gray, reference) {
		if d.mismatch == MismatchRebaseline {
			d.background.Reset()
			return d.baseline(gray)
		}
		return Result{}, errors.Wrapf(ErrDimensionMismatch, "frame %d is %v, background is %v",
			d.frames, gray.Bounds().Size(), reference.Bounds().Size())
	}

	done = d.stage(StageDiff)
	delta, err := images.AbsDiff(gray, reference)
	done()
	if err != nil {
		return Result{}, errors.Wrapf(err, "frame %d", d.frames)
	}

	done = d.stage(StageBinarize)
	mask := Binarize(delta, d.config)
	done()

	done = d.stage(StageExtract)
	regions := ExtractRegions(mask, d.config.MinRegionArea)
	done()

	result := Result{
		Status:  Unoccupied,
		Regions: regions,
		Frame:   d.frames,
		Delta:   delta,
		Mask:    mask,
	}
	if len(regions) > 0 {
		result.Status = Occupied
	}

	return result, nil
}

// Close discards the background reference at the end of a run. A closed
// detector treats its next frame as a new baseline.
func (d *Detector) Close() {
	d.background.Reset()
	d.state = StateUninitialized
}

// baseline adopts gray as the background reference.
func (d *Detector) baseline(gray *image.Gray) (Result, error) {
	if err := d.background.Initialize(gray); err != nil {
		return Result{}, errors.Wrapf(err, "frame %d", d.frames)
	}
	d.state = StateRunning

	return Result{
		Status:   Unoccupied,
		Regions:  []Region{},
		Frame:    d.frames,
		Baseline: true,
	}, nil
}

func (d *Detector) stage(name string) func() {
	if d.timer == nil {
		return func() {}
	}
	return d.timer.StartOperation(name)
}
