//go:build withcv
// +build withcv

package source

import (
	"context"
	"image"

	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Capture reads frames from a camera device or a video file through OpenCV.
type Capture struct {
	target string
	vc     *gocv.VideoCapture
	img    gocv.Mat
}

// OpenCapture opens a capture target. A numeric target selects a camera
// device, anything else is opened as a video file.
//
// Arguments:
// - target: A device id such as "0" or the path of a video file.
//
// Returns:
// - *Capture: The opened capture.
// - error: Error if the device or file cannot be opened.
func OpenCapture(target string) (*Capture, error) {
	var (
		vc  *gocv.VideoCapture
		err error
	)
	if id := ParseDevice(target); id >= 0 {
		vc, err = gocv.OpenVideoCapture(id)
	} else {
		if err := ValidateVideoFile(target); err != nil {
			return nil, err
		}
		vc, err = gocv.OpenVideoCapture(target)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open video capture %s", target)
	}

	return &Capture{target: target, vc: vc, img: gocv.NewMat()}, nil
}

// Next reads the next frame. An empty read yields an error wrapping
// images.ErrInvalidFrame; a failed read means the device closed or the video
// ended and yields ErrEndOfStream.
func (c *Capture) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := c.vc.Read(&c.img); !ok {
		return nil, ErrEndOfStream
	}
	if c.img.Empty() {
		return nil, errors.Wrapf(images.ErrInvalidFrame, "empty frame from %s", c.target)
	}

	img, err := c.img.ToImage()
	if err != nil {
		return nil, errors.Wrapf(images.ErrInvalidFrame, "convert frame from %s: %v", c.target, err)
	}
	return img, nil
}

// Close releases the capture device.
func (c *Capture) Close() error {
	c.img.Close()
	return c.vc.Close()
}
