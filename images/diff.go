package images

import (
	"image"

	"github.com/pkg/errors"
)

// AbsDiff computes the per-pixel absolute difference between two grayscale frames.
//
// diff[x,y] = |current[x,y] - reference[x,y]|
//
// The function is pure: neither input is modified and the result is a new
// frame with the same size as the inputs, based at the origin.
//
// Arguments:
//   - current: The normalized frame being examined.
//   - reference: The background reference it is compared against.
//
// Returns:
//   - *image.Gray: The difference map.
//   - error: ErrDimensionMismatch if the two frames differ in size,
//     ErrInvalidFrame if either is nil.
//
// Built with the withcv tag the difference is taken by OpenCV.
func AbsDiff(current, reference *image.Gray) (*image.Gray, error) {
	if current == nil || reference == nil {
		return nil, errors.Wrap(ErrInvalidFrame, "difference needs two frames")
	}
	if !SameSize(current, reference) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "current %v, reference %v",
			current.Bounds().Size(), reference.Bounds().Size())
	}

	return absDiff(current, reference)
}

// absDiffPixels is the pure Go difference used when OpenCV is unavailable.
func absDiffPixels(current, reference *image.Gray) *image.Gray {
	cb, rb := current.Bounds(), reference.Bounds()
	w, h := cb.Dx(), cb.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		c := current.Pix[current.PixOffset(cb.Min.X, cb.Min.Y+y):]
		r := reference.Pix[reference.PixOffset(rb.Min.X, rb.Min.Y+y):]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range d {
			if c[x] > r[x] {
				d[x] = c[x] - r[x]
			} else {
				d[x] = r[x] - c[x]
			}
		}
	}

	return dst
}
