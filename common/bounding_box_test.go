package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxRectRoundTrip(t *testing.T) {
	r := image.Rect(10, 20, 30, 25)
	box := FromRect(r)

	assert.Equal(t, BoundingBox{X: 10, Y: 20, Width: 20, Height: 5}, box)
	assert.Equal(t, r, box.ToRect())
	assert.Equal(t, 100, box.Area())
	assert.Equal(t, "(10,20) 20x5", box.String())
	assert.Equal(t, box, FromRect(image.Rectangle{Min: r.Max, Max: r.Min}))
}

func TestBoundingBoxNegativeExtentHasNoArea(t *testing.T) {
	assert.Zero(t, BoundingBox{Width: -3, Height: 4}.Area())
	assert.Zero(t, BoundingBox{Width: 3, Height: -4}.Area())
}
