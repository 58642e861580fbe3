//go:build !withcv
// +build !withcv

package images

import "image"

// Backend names the implementation behind the pixel primitives.
const Backend = "go"

func absDiff(current, reference *image.Gray) (*image.Gray, error) {
	return absDiffPixels(current, reference), nil
}

func threshold(diff *image.Gray, t, maxVal uint8) *image.Gray {
	return thresholdPixels(diff, t, maxVal)
}

func dilate(mask *image.Gray, iterations int) *image.Gray {
	return dilatePixels(mask, iterations)
}
