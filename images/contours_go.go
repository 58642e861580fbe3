//go:build !withcv
// +build !withcv

package images

import "image"

func findContours(mask *image.Gray) []Contour {
	return traceExternalContours(mask)
}

func contourArea(points []image.Point) float64 {
	return polygonArea(points)
}

func contourBounds(points []image.Point) image.Rectangle {
	return pointBounds(points)
}
