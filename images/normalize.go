package images

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// DefaultTargetWidth is the width every frame is normalized to unless configured otherwise.
const DefaultTargetWidth = 500

// ResampleFilter is the interpolation used when a frame has to be resized.
// Box averages the covered source pixels when shrinking, which is the closest
// match to the area interpolation most capture pipelines use for previews.
var ResampleFilter = imaging.Box

// Normalize converts a raw frame into the fixed-width grayscale representation
// the motion pipeline compares.
//
// The frame is first resized so that its width equals width, with the height
// scaled proportionally and rounded to the nearest pixel (minimum 1). It is then
// converted to luminance using the ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B, rounded). A frame that already has the target
// width is copied rather than resampled, so its samples survive unchanged.
//
// Arguments:
//   - img: The raw frame, color or grayscale, any resolution.
//   - width: The target width in pixels. Must be positive.
//
// Returns:
//   - *image.Gray: The normalized frame with bounds starting at (0,0).
//   - error: ErrInvalidFrame if img is nil, empty or malformed.
//
// @example
// gray, err := images.Normalize(frame, images.DefaultTargetWidth)
// fmt.Println(gray.Bounds().Dx()) // 500
func Normalize(img image.Image, width int) (*image.Gray, error) {
	if width <= 0 {
		return nil, errors.Errorf("target width must be positive, got %d", width)
	}
	if err := ValidateFrame(img); err != nil {
		return nil, err
	}

	resized := imaging.Resize(img, width, 0, ResampleFilter)
	if resized.Bounds().Empty() {
		return nil, errors.Wrap(ErrInvalidFrame, "frame could not be resized")
	}

	return grayFromNRGBA(imaging.Grayscale(resized)), nil
}

// grayFromNRGBA keeps the red channel of an image whose channels are already equal.
func grayFromNRGBA(src *image.NRGBA) *image.Gray {
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
