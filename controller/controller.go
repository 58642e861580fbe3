// Package controller - Routes frames from a source through the motion detector to result consumers.
package controller

import (
	"context"
	"image"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/source"
	"github.com/pkg/errors"
)

// ErrStop is returned by a Consumer to end the run cleanly, for example when
// the user closes the preview window.
var ErrStop = errors.New("stop requested")

// Frame is a single frame of video.
type Frame struct {
	// ID is the 1-based position of the frame in the stream.
	ID        uint64
	Image     image.Image
	Timestamp time.Time
}

// MotionDetector is an interface for a motion detector.
type MotionDetector interface {
	Process(frame image.Image) (motion.Result, error)
	MismatchPolicy() motion.MismatchPolicy
}

// Consumer receives every frame together with its detection result.
type Consumer interface {
	Consume(frame Frame, result motion.Result) error
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(frame Frame, result motion.Result) error

// Consume calls f.
func (f ConsumerFunc) Consume(frame Frame, result motion.Result) error {
	return f(frame, result)
}

// Options configures a Runner.
type Options struct {
	// ID identifies the run. A random id is generated when it is zero.
	ID uuid.UUID
	// Logger receives run lifecycle and skipped frame messages. Defaults to log.Default().
	Logger *log.Logger
	// Stats accumulates counters for the run. A fresh Stats is created when nil.
	Stats *motion.Stats
	// Verbose logs every skipped frame instead of only the first of a streak.
	Verbose bool
}

// Runner pulls frames from a source, runs them through a detector and hands
// the results to consumers, one frame at a time.
type Runner struct {
	id        uuid.UUID
	source    source.Source
	detector  MotionDetector
	consumers []Consumer
	logger    *log.Logger
	stats     *motion.Stats
	verbose   bool
	now       func() time.Time
}

// NewRunner creates a runner for one stream.
//
// Arguments:
//   - src: The frame source. The runner does not close it.
//   - detector: The motion detector.
//   - opts: Logging and statistics options.
//   - consumers: Called in order for every processed frame.
//
// Returns:
//   - *Runner: The configured runner.
//
// @example
// runner := controller.NewRunner(src, detector, controller.Options{}, controller.NewLogConsumer(nil, false))
// err := runner.Run(ctx)
func NewRunner(src source.Source, detector MotionDetector, opts Options, consumers ...Consumer) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Stats == nil {
		opts.Stats = motion.NewStats()
	}
	if opts.ID == uuid.Nil {
		opts.ID = uuid.New()
	}

	return &Runner{
		id:        opts.ID,
		source:    src,
		detector:  detector,
		consumers: consumers,
		logger:    opts.Logger,
		stats:     opts.Stats,
		verbose:   opts.Verbose,
		now:       time.Now,
	}
}

// ID returns the unique id of this run.
func (r *Runner) ID() uuid.UUID {
	return r.id
}

// Stats returns the run statistics.
func (r *Runner) Stats() *motion.Stats {
	return r.stats
}

// Run processes frames until the source ends, ctx is cancelled or a consumer
// returns ErrStop. All three are clean terminations and return nil.
//
// Invalid frames, from the source or the detector, are logged, counted as
// skipped and the stream continues. A dimension mismatch is fatal unless the
// detector re-baselines on mismatch. Any other source, detector or consumer
// error ends the run and is returned.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Printf("run %s started", r.id)

	var (
		frames  uint64
		skipped int
	)
	for {
		if ctx.Err() != nil {
			r.logger.Printf("run %s stopped after %d frames", r.id, frames)
			return nil
		}

		img, err := r.source.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, source.ErrEndOfStream):
			r.logger.Printf("run %s reached the end of the stream after %d frames", r.id, frames)
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			r.logger.Printf("run %s stopped after %d frames", r.id, frames)
			return nil
		case errors.Is(err, motion.ErrInvalidFrame):
			r.skip(err, &skipped)
			continue
		default:
			return errors.Wrap(err, "read frame")
		}

		frames++
		frame := Frame{ID: frames, Image: img, Timestamp: r.now()}

		result, err := r.detector.Process(img)
		switch {
		case err == nil:
			skipped = 0
		case errors.Is(err, motion.ErrInvalidFrame):
			r.skip(err, &skipped)
			continue
		case errors.Is(err, motion.ErrDimensionMismatch):
			return errors.Wrap(err, "frame geometry changed; enable re-baselining to continue")
		default:
			return errors.Wrapf(err, "process frame %d", frame.ID)
		}

		if result.Baseline {
			if r.stats.Snapshot().Frames > 0 {
				r.logger.Printf("frame %d: geometry changed, background re-initialized", frame.ID)
			} else {
				r.logger.Printf("frame %d: background initialized", frame.ID)
			}
		}
		r.stats.Observe(result)

		for _, consumer := range r.consumers {
			if err := consumer.Consume(frame, result); err != nil {
				if errors.Is(err, ErrStop) {
					r.logger.Printf("run %s stopped by consumer after %d frames", r.id, frames)
					return nil
				}
				return errors.Wrapf(err, "consume frame %d", frame.ID)
			}
		}
	}
}

// skip records a rejected frame. Only the first of a streak is logged unless verbose.
func (r *Runner) skip(err error, streak *int) {
	r.stats.Skip()
	*streak++
	if *streak == 1 || r.verbose {
		r.logger.Printf("skipping frame: %v", err)
	}
}
