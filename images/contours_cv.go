//go:build withcv
// +build withcv

package images

import (
	"image"
	"slices"

	"gocv.io/x/gocv"
)

// findContours retrieves external contours with OpenCV. ChainApproxNone keeps
// every boundary pixel so Points match the pure Go tracer. OpenCV reports
// contours last-found first, so they are put back into raster order.
func findContours(mask *image.Gray) []Contour {
	m, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return traceExternalContours(mask)
	}
	defer m.Close()

	found := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		contours = append(contours, Contour{Points: found.At(i).ToPoints()})
	}

	slices.SortStableFunc(contours, func(a, b Contour) int {
		pa, pb := firstPixel(a.Points), firstPixel(b.Points)
		if pa.Y != pb.Y {
			return pa.Y - pb.Y
		}
		return pa.X - pb.X
	})
	return contours
}

// firstPixel returns the topmost, then leftmost, point.
func firstPixel(points []image.Point) image.Point {
	first := points[0]
	for _, p := range points[1:] {
		if p.Y < first.Y || (p.Y == first.Y && p.X < first.X) {
			first = p
		}
	}
	return first
}

func contourArea(points []image.Point) float64 {
	pv := gocv.NewPointVectorFromPoints(points)
	defer pv.Close()
	return gocv.ContourArea(pv)
}

func contourBounds(points []image.Point) image.Rectangle {
	pv := gocv.NewPointVectorFromPoints(points)
	defer pv.Close()
	return gocv.BoundingRect(pv)
}
