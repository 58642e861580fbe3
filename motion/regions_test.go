package motion

import (
	"encoding/json"
	"image"
	"image/color"
	"sort"
	"testing"

	"github.com/nvr-ai/go-motion/images"
	"github.com/nvr-ai/go-motion/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRegionsIsAreaMonotonic(t *testing.T) {
	gen := test.NewMockFrameGenerator(300, 200)
	mask := gen.GenerateRectFrame(0, 255,
		image.Rect(5, 5, 8, 8),
		image.Rect(20, 20, 40, 30),
		image.Rect(60, 10, 100, 60),
		image.Rect(150, 100, 280, 190),
		image.Rect(120, 20, 121, 80),
	)

	var areas []float64
	for _, c := range images.FindExternalContours(mask) {
		areas = append(areas, c.Area())
	}
	sort.Float64s(areas)

	previous := -1
	for minArea := 15000; minArea >= 0; minArea -= 50 {
		count := len(ExtractRegions(mask, minArea))
		require.GreaterOrEqual(t, count, previous, "lowering minArea to %d dropped regions", minArea)
		previous = count
	}
	assert.Equal(t, len(areas), previous, "minArea 0 keeps every contour")
}

func TestExtractRegionsBoundary(t *testing.T) {
	mask := test.NewMockFrameGenerator(100, 100).GenerateRectFrame(0, 255, image.Rect(10, 10, 31, 31))

	// A filled 21x21 block encloses 20*20.
	assert.Len(t, ExtractRegions(mask, 400), 1, "area equal to the minimum is kept")
	assert.Empty(t, ExtractRegions(mask, 401))
	assert.NotNil(t, ExtractRegions(mask, 401))
}

func TestBinarizeClampsThreshold(t *testing.T) {
	diff := test.NewMockFrameGenerator(50, 50).GenerateRectFrame(0, 255, image.Rect(10, 10, 20, 20))
	diff.SetGray(40, 40, color.Gray{Y: 44})
	diff.SetGray(42, 40, color.Gray{Y: 45})

	tests := []struct {
		name      string
		threshold int
		expected  int
	}{
		// 300 would wrap to 44 as a uint8 and let the 45 pixel through.
		{name: "above range", threshold: 300, expected: 0},
		{name: "at the top", threshold: 255, expected: 0},
		{name: "below range", threshold: -20, expected: 100 + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.DiffThreshold = tt.threshold
			config.DilationIterations = 0
			assert.Equal(t, tt.expected, images.CountNonZero(Binarize(diff, config)))
		})
	}
}

// A region is filtered on its dilated contour area, not on the size of the
// change that produced it.
func TestMinAreaAppliesAfterDilation(t *testing.T) {
	background := image.NewGray(image.Rect(0, 0, images.DefaultTargetWidth, 375))
	frame := test.NewMockFrameGenerator(images.DefaultTargetWidth, 375).
		GenerateRectFrame(0, 255, image.Rect(100, 100, 124, 120))

	diff, err := images.AbsDiff(frame, background)
	require.NoError(t, err)

	config := DefaultConfig()
	require.Less(t, 24*20, config.MinRegionArea, "the changed block alone is below the minimum")

	regions := ExtractRegions(Binarize(diff, config), config.MinRegionArea)
	require.Len(t, regions, 1)
	assert.Equal(t, "(98,98) 28x24", regions[0].Box.String())
	assert.InDelta(t, 27*23, regions[0].Area, 1e-9)
}

func TestBinarizeUsesConfig(t *testing.T) {
	diff := test.NewMockFrameGenerator(50, 50).GenerateRectFrame(0, 30, image.Rect(20, 20, 21, 21))

	config := DefaultConfig()
	assert.Equal(t, 25, images.CountNonZero(Binarize(diff, config)))

	config.DiffThreshold = 30
	assert.Equal(t, 0, images.CountNonZero(Binarize(diff, config)))

	config.DiffThreshold = 0
	config.DilationIterations = 1
	assert.Equal(t, 9, images.CountNonZero(Binarize(diff, config)))
}

func TestResultJSON(t *testing.T) {
	result := Result{Status: Occupied, Regions: []Region{}, Frame: 7, Mask: image.NewGray(image.Rect(0, 0, 2, 2))}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Occupied","regions":[],"frame":7,"baseline":false}`, string(data))

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Occupied, decoded.Status)

	var status Status
	assert.Error(t, status.UnmarshalText([]byte("Busy")))
}
