//go:build withcv
// +build withcv

package display

import (
	"image"

	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Window shows annotated frames in OpenCV windows.
type Window struct {
	opts  Options
	feed  *gocv.Window
	mask  *gocv.Window
	delta *gocv.Window
}

// Open creates the preview windows.
//
// Arguments:
// - opts: Preview width, style and whether the debug windows are shown.
//
// Returns:
// - *Window: The preview, to be passed to the runner as a consumer.
// - error: Error if the style is invalid.
func Open(opts Options) (*Window, error) {
	if err := opts.Style.Validate(); err != nil {
		return nil, err
	}

	w := &Window{opts: opts, feed: gocv.NewWindow(FeedWindow)}
	if opts.Debug {
		w.mask = gocv.NewWindow(MaskWindow)
		w.delta = gocv.NewWindow(DeltaWindow)
	}
	return w, nil
}

// Consume implements controller.Consumer. Pressing QuitKey returns controller.ErrStop.
func (w *Window) Consume(frame controller.Frame, result motion.Result) error {
	feed, mask, delta, err := frames(frame, result, w.opts)
	if err != nil {
		return err
	}

	if err := show(w.feed, FeedWindow, feed); err != nil {
		return err
	}
	if mask != nil && w.mask != nil {
		if err := show(w.mask, MaskWindow, mask); err != nil {
			return err
		}
		if err := show(w.delta, DeltaWindow, delta); err != nil {
			return err
		}
	}

	if key := w.feed.WaitKey(1); key&0xff == QuitKey {
		return controller.ErrStop
	}
	return nil
}

// Close destroys the windows.
func (w *Window) Close() error {
	for _, win := range []*gocv.Window{w.feed, w.mask, w.delta} {
		if win != nil {
			win.Close()
		}
	}
	return nil
}

func show(win *gocv.Window, name string, img *image.RGBA) error {
	mat, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return errors.Wrapf(err, "convert preview for %s", name)
	}
	defer mat.Close()

	win.IMShow(mat)
	return nil
}
