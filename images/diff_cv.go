//go:build withcv
// +build withcv

package images

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Backend names the implementation behind the pixel primitives.
const Backend = "gocv"

// dilationKernel is the 3x3 rectangle applied by every dilation pass.
var dilationKernel = gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))

// absDiff runs gocv.AbsDiff over the two frames.
func absDiff(current, reference *image.Gray) (*image.Gray, error) {
	a, err := gocv.ImageGrayToMatGray(current)
	if err != nil {
		return nil, errors.Wrap(err, "current frame to mat")
	}
	defer a.Close()

	b, err := gocv.ImageGrayToMatGray(reference)
	if err != nil {
		return nil, errors.Wrap(err, "reference frame to mat")
	}
	defer b.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.AbsDiff(a, b, &dst)
	return matToGray(dst)
}

// threshold is a THRESH_BINARY pass. A frame OpenCV cannot hold falls back
// to the pure Go loop.
func threshold(diff *image.Gray, t, maxVal uint8) *image.Gray {
	src, err := gocv.ImageGrayToMatGray(diff)
	if err != nil {
		return thresholdPixels(diff, t, maxVal)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.Threshold(src, &dst, float32(t), float32(maxVal), gocv.ThresholdBinary)

	out, err := matToGray(dst)
	if err != nil {
		return thresholdPixels(diff, t, maxVal)
	}
	return out
}

func dilate(mask *image.Gray, iterations int) *image.Gray {
	m, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return dilatePixels(mask, iterations)
	}
	defer m.Close()

	for i := 0; i < iterations; i++ {
		if err := gocv.Dilate(m, &m, dilationKernel); err != nil {
			return dilatePixels(mask, iterations)
		}
	}

	out, err := matToGray(m)
	if err != nil {
		return dilatePixels(mask, iterations)
	}
	return out
}

// matToGray copies a single channel 8 bit Mat into a new gray frame.
func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "mat to image")
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, errors.Errorf("mat type %v is not single channel", m.Type())
	}
	return g, nil
}
