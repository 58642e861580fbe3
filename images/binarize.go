package images

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Binarizer defaults.
const (
	DefaultDiffThreshold      = 25
	DefaultDilationIterations = 2
	// MaxValue is the sample assigned to foreground pixels of a binary mask.
	MaxValue = 255
)

// Threshold converts a difference map into a binary mask.
//
// Samples strictly greater than t become maxVal, every other sample becomes 0.
// This mirrors a THRESH_BINARY pass: a difference equal to the threshold is
// not considered a change.
//
// Arguments:
//   - diff: The difference map.
//   - t: The intensity threshold (0-255).
//   - maxVal: The value written for foreground pixels, usually MaxValue.
//
// Returns:
//   - *image.Gray: The binary mask, based at the origin.
func Threshold(diff *image.Gray, t, maxVal uint8) *image.Gray {
	return threshold(diff, t, maxVal)
}

func thresholdPixels(diff *image.Gray, t, maxVal uint8) *image.Gray {
	b := diff.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := 0; y < b.Dy(); y++ {
		s := diff.Pix[diff.PixOffset(b.Min.X, b.Min.Y+y):]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
		for x := range d {
			if s[x] > t {
				d[x] = maxVal
			}
		}
	}

	return dst
}

// Dilate grows the foreground of a binary mask outward.
//
// Each iteration replaces every pixel with the maximum of its 3x3
// neighborhood, so a region grows by one pixel on every side per iteration.
// Nearby fragments merge and holes narrower than two pixels per iteration
// close up. Pixels beyond the frame edge do not contribute foreground.
//
// Arguments:
//   - mask: The binary mask to dilate.
//   - iterations: How many times the 3x3 dilation is applied. Values <= 0
//     return an unmodified copy.
//
// Returns:
//   - *image.Gray: The dilated mask, based at the origin.
func Dilate(mask *image.Gray, iterations int) *image.Gray {
	return dilate(mask, iterations)
}

func dilatePixels(mask *image.Gray, iterations int) *image.Gray {
	out := CloneGray(mask)
	for i := 0; i < iterations; i++ {
		// Radius 1 gives bild a 3x3 window. Its edge-extended padding only
		// repeats samples already inside the window, so the maximum is unchanged.
		out = grayFromRGBA(effect.Dilate(out, 1))
	}
	return out
}

// grayFromRGBA keeps the red channel of an RGBA image produced from a gray one.
func grayFromRGBA(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
		for x := range d {
			d[x] = s[x*4]
		}
	}
	return dst
}
