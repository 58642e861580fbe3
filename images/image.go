// Package images - Grayscale frame primitives for the motion pipeline.
//
// Every function in this package takes its inputs read-only and returns a
// freshly allocated image. Frames handed to the pipeline are never mutated.
package images

import (
	"image"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidFrame is returned for nil, zero-sized or malformed frames.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrDimensionMismatch is returned when two frames that must share geometry do not.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ValidateFrame checks that img can be read pixel by pixel.
//
// A frame is rejected when it is nil (including a typed nil pointer), when
// either dimension is zero, or when one of the standard library image types
// carries a pixel buffer that is shorter than its bounds require (for example
// a frame that lost a channel). Paletted frames must also have a palette entry
// for every index they use.
//
// Arguments:
//   - img: The frame to validate.
//
// Returns:
//   - error: ErrInvalidFrame wrapped with the reason, nil when the frame is usable.
func ValidateFrame(img image.Image) error {
	if img == nil {
		return errors.Wrap(ErrInvalidFrame, "frame is nil")
	}
	if v := reflect.ValueOf(img); v.Kind() == reflect.Ptr && v.IsNil() {
		return errors.Wrapf(ErrInvalidFrame, "frame is a nil %T", img)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return errors.Wrapf(ErrInvalidFrame, "frame has no pixels (%dx%d)", b.Dx(), b.Dy())
	}

	switch m := img.(type) {
	case *image.Gray:
		return checkBuffer(len(m.Pix), m.Stride, b, 1)
	case *image.Gray16:
		return checkBuffer(len(m.Pix), m.Stride, b, 2)
	case *image.RGBA:
		return checkBuffer(len(m.Pix), m.Stride, b, 4)
	case *image.NRGBA:
		return checkBuffer(len(m.Pix), m.Stride, b, 4)
	case *image.CMYK:
		return checkBuffer(len(m.Pix), m.Stride, b, 4)
	case *image.RGBA64:
		return checkBuffer(len(m.Pix), m.Stride, b, 8)
	case *image.NRGBA64:
		return checkBuffer(len(m.Pix), m.Stride, b, 8)
	case *image.Alpha:
		return checkBuffer(len(m.Pix), m.Stride, b, 1)
	case *image.Alpha16:
		return checkBuffer(len(m.Pix), m.Stride, b, 2)
	case *image.Paletted:
		return checkPaletted(m, b)
	case *image.YCbCr:
		return checkYCbCr(m, b)
	case *image.NYCbCrA:
		if err := checkYCbCr(&m.YCbCr, b); err != nil {
			return err
		}
		if err := checkBuffer(len(m.A), m.AStride, b, 1); err != nil {
			return errors.Wrap(err, "alpha plane")
		}
	}

	return nil
}

// checkYCbCr verifies the luma plane and both chroma planes.
func checkYCbCr(m *image.YCbCr, b image.Rectangle) error {
	if err := checkBuffer(len(m.Y), m.YStride, b, 1); err != nil {
		return err
	}
	last := m.COffset(b.Max.X-1, b.Max.Y-1)
	if last < 0 || last >= len(m.Cb) || last >= len(m.Cr) {
		return errors.Wrap(ErrInvalidFrame, "chroma planes are truncated")
	}
	return nil
}

// checkPaletted verifies the index buffer and that every index inside bounds
// names a palette entry.
func checkPaletted(m *image.Paletted, b image.Rectangle) error {
	if len(m.Palette) == 0 {
		return errors.Wrap(ErrInvalidFrame, "palette is empty")
	}
	if err := checkBuffer(len(m.Pix), m.Stride, b, 1); err != nil {
		return err
	}
	for y := 0; y < b.Dy(); y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+b.Dx()]
		for x, idx := range row {
			if int(idx) >= len(m.Palette) {
				return errors.Wrapf(ErrInvalidFrame, "pixel (%d,%d) uses index %d of a %d colour palette",
					b.Min.X+x, b.Min.Y+y, idx, len(m.Palette))
			}
		}
	}
	return nil
}

// checkBuffer verifies that a packed pixel buffer covers every row of bounds.
func checkBuffer(n, stride int, b image.Rectangle, bytesPerPixel int) error {
	row := b.Dx() * bytesPerPixel
	if stride < row {
		return errors.Wrapf(ErrInvalidFrame, "stride %d shorter than a row of %d bytes", stride, row)
	}
	if need := (b.Dy()-1)*stride + row; n < need {
		return errors.Wrapf(ErrInvalidFrame, "pixel buffer has %d bytes, need %d", n, need)
	}
	return nil
}

// SameSize reports whether a and b have identical width and height.
func SameSize(a, b *image.Gray) bool {
	return a.Bounds().Size() == b.Bounds().Size()
}

// CloneGray returns a copy of src re-based at the origin.
func CloneGray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return dst
}

// CountNonZero returns the number of foreground samples in a mask.
func CountNonZero(img *image.Gray) int {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y) : img.PixOffset(b.Min.X, y)+b.Dx()]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
