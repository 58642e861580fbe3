//go:build withcv
// +build withcv

package images

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// regionGeometry reduces contours to the area and box pairs regions are built from.
func regionGeometry(contours []Contour) ([]float64, []image.Rectangle) {
	areas := make([]float64, 0, len(contours))
	boxes := make([]image.Rectangle, 0, len(contours))
	for _, c := range contours {
		areas = append(areas, polygonArea(c.Points))
		boxes = append(boxes, pointBounds(c.Points))
	}
	return areas, boxes
}

func TestOpenCVContoursMatchPureGo(t *testing.T) {
	masks := map[string]*image.Gray{}
	for _, shape := range contourShapes {
		masks[shape.name] = shapeMask(shape.rects)
	}

	nested := image.NewGray(image.Rect(0, 0, 40, 40))
	fillRect(nested, image.Rect(2, 2, 22, 22), MaxValue)
	fillRect(nested, image.Rect(4, 4, 20, 20), 0)
	fillRect(nested, image.Rect(8, 8, 14, 14), MaxValue)
	masks["island inside a hole"] = nested

	scattered := image.NewGray(image.Rect(0, 0, 40, 30))
	fillRect(scattered, image.Rect(2, 10, 6, 14), MaxValue)
	fillRect(scattered, image.Rect(20, 2, 24, 6), MaxValue)
	fillRect(scattered, image.Rect(30, 10, 34, 14), MaxValue)
	masks["three blocks"] = scattered

	masks["dilated noise"] = Dilate(Threshold(randomGray(64, 48, 7), 250, MaxValue), 1)

	for name, mask := range masks {
		t.Run(name, func(t *testing.T) {
			wantAreas, wantBoxes := regionGeometry(traceExternalContours(mask))

			contours := FindExternalContours(mask)
			require.Len(t, contours, len(wantBoxes))

			gotAreas := make([]float64, 0, len(contours))
			gotBoxes := make([]image.Rectangle, 0, len(contours))
			for _, c := range contours {
				gotAreas = append(gotAreas, c.Area())
				gotBoxes = append(gotBoxes, c.BoundingRect())
			}
			assert.Equal(t, wantBoxes, gotBoxes)
			assert.InDeltaSlice(t, wantAreas, gotAreas, 1e-9)
		})
	}
}

func TestOpenCVPixelOpsMatchPureGo(t *testing.T) {
	current := randomGray(64, 48, 11)
	reference := randomGray(64, 48, 12)

	diff, err := AbsDiff(current, reference)
	require.NoError(t, err)
	assert.Equal(t, absDiffPixels(current, reference).Pix, diff.Pix)

	mask := Threshold(diff, DefaultDiffThreshold, MaxValue)
	assert.Equal(t, thresholdPixels(diff, DefaultDiffThreshold, MaxValue).Pix, mask.Pix)

	sparse := Threshold(diff, 240, MaxValue)
	assert.Equal(t, dilatePixels(sparse, DefaultDilationIterations).Pix, Dilate(sparse, DefaultDilationIterations).Pix)
}

func TestBackendIsOpenCV(t *testing.T) {
	assert.Equal(t, "gocv", Backend)
}
