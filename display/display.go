// Package display - Live preview windows for a motion run.
package display

import (
	"image"
	"time"

	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/overlay"
	"github.com/pkg/errors"
)

// ErrDisplayUnavailable is returned by Open in builds without OpenCV.
var ErrDisplayUnavailable = errors.New("preview windows need a build with the withcv tag")

// Window titles.
const (
	FeedWindow  = "Security Feed"
	MaskWindow  = "Thresh"
	DeltaWindow = "Frame Delta"
)

// QuitKey closes the preview and stops the run.
const QuitKey = 'q'

// Options configures the preview.
type Options struct {
	// Width is the normalization width of the detector.
	Width int
	Style overlay.Style
	// Debug also shows the binary mask and the difference map.
	Debug bool
}

// frames renders the images shown for one result. Baseline results carry no
// mask or delta, so only the feed is returned for them.
func frames(frame controller.Frame, result motion.Result, opts Options) (feed, mask, delta *image.RGBA, err error) {
	ts := frame.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	feed, err = overlay.Annotate(frame.Image, result, opts.Width, opts.Style, ts)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "annotate frame %d", frame.ID)
	}
	if !opts.Debug || result.Mask == nil || result.Delta == nil {
		return feed, nil, nil, nil
	}

	return feed, overlay.MaskToRGBA(result.Mask), overlay.MaskToRGBA(result.Delta), nil
}
