package common

import (
	"fmt"
	"image"
)

// BoundingBox is an axis-aligned box in pixel coordinates.
//
// X and Y are the top-left corner (inclusive). Width and Height are the extent
// in pixels, so the box covers the columns X..X+Width-1 and the rows Y..Y+Height-1.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromRect converts an image.Rectangle (exclusive Max) into a BoundingBox.
//
// @example
// box := FromRect(image.Rect(10, 20, 30, 25))
// fmt.Println(box) // (10,20) 20x5
func FromRect(r image.Rectangle) BoundingBox {
	r = r.Canon()
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// ToRect converts the bounding box to an image.Rectangle.
//
// Returns:
// - An image.Rectangle whose Max corner is exclusive.
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Area returns the number of pixels covered by the box.
func (b BoundingBox) Area() int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d) %dx%d", b.X, b.Y, b.Width, b.Height)
}
