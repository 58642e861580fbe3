// Package overlay - Draws detection results onto preview frames.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nvr-ai/go-motion/images"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay defaults.
const (
	DefaultBoxColor  = "#ff3333"
	DefaultThickness = 5
	// TimestampLayout renders as "Monday 02 January 2006 03:04:05PM".
	TimestampLayout = "Monday 02 January 2006 03:04:05PM"
)

// Style controls how results are drawn.
type Style struct {
	// BoxColor is a hex color such as "#ff3333".
	BoxColor string `mapstructure:"box_color" json:"box_color"`
	// Thickness is the line width of region boxes in pixels.
	Thickness int `mapstructure:"thickness" json:"thickness"`
}

// DefaultStyle returns red boxes five pixels wide.
func DefaultStyle() Style {
	return Style{BoxColor: DefaultBoxColor, Thickness: DefaultThickness}
}

// Validate checks that the color parses and the thickness is positive.
func (s Style) Validate() error {
	if _, err := ParseColor(s.BoxColor); err != nil {
		return err
	}
	if s.Thickness < 1 {
		return errors.Errorf("box thickness must be at least 1, got %d", s.Thickness)
	}
	return nil
}

// ParseColor parses a hex color string into an opaque RGBA color.
//
// Arguments:
//   - hex: A "#rrggbb" color.
//
// Returns:
//   - color.RGBA: The parsed color.
//   - error: An error if hex is not a valid color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid color %q", hex)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Annotate draws a detection result onto a copy of the raw frame.
//
// The frame is resized to width with the same filter the detector uses, so
// region boxes, which are in normalized coordinates, line up with the
// picture. Each region gets a box, the status is written in the top-left
// corner and the timestamp along the bottom edge.
//
// Arguments:
//   - frame: The raw frame the result was computed from.
//   - result: The detection result.
//   - width: The normalization width of the detector.
//   - style: Box color and thickness.
//   - ts: The time printed on the frame.
//
// Returns:
//   - *image.RGBA: The annotated preview, based at the origin.
//   - error: ErrInvalidFrame for unusable frames, or an invalid style.
func Annotate(frame image.Image, result motion.Result, width int, style Style, ts time.Time) (*image.RGBA, error) {
	if width <= 0 {
		return nil, errors.Errorf("target width must be positive, got %d", width)
	}
	if err := images.ValidateFrame(frame); err != nil {
		return nil, err
	}
	c, err := ParseColor(style.BoxColor)
	if err != nil {
		return nil, err
	}

	resized := imaging.Resize(frame, width, 0, images.ResampleFilter)
	dst := image.NewRGBA(resized.Bounds())
	draw.Draw(dst, dst.Bounds(), resized, image.Point{}, draw.Src)

	for _, region := range result.Regions {
		DrawRect(dst, region.Box.ToRect(), c, style.Thickness)
	}

	DrawText(dst, "Status: "+result.Status.String(), 10, 20, c)
	DrawText(dst, ts.Format(TimestampLayout), 10, dst.Bounds().Dy()-10, c)

	return dst, nil
}

// DrawRect outlines r with a line of the given thickness centered on its edge
// pixels. Parts outside dst are clipped.
func DrawRect(dst draw.Image, r image.Rectangle, c color.Color, thickness int) {
	if r.Empty() || thickness < 1 {
		return
	}

	// The edge pixels are Min and Max-1; grow the outline around them.
	edge := image.Rectangle{Min: r.Min, Max: r.Max.Sub(image.Pt(1, 1))}
	half := thickness / 2
	outer := image.Rectangle{
		Min: edge.Min.Sub(image.Pt(half, half)),
		Max: edge.Max.Add(image.Pt(thickness-half, thickness-half)),
	}
	inner := outer.Inset(thickness)

	src := image.NewUniform(c)
	bands := []image.Rectangle{
		{Min: outer.Min, Max: image.Pt(outer.Max.X, outer.Min.Y+thickness)},
		{Min: image.Pt(outer.Min.X, outer.Max.Y-thickness), Max: outer.Max},
		{Min: outer.Min, Max: image.Pt(outer.Min.X+thickness, outer.Max.Y)},
		{Min: image.Pt(outer.Max.X-thickness, outer.Min.Y), Max: outer.Max},
	}
	if inner.Empty() {
		bands = []image.Rectangle{outer}
	}
	for _, band := range bands {
		draw.Draw(dst, band.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// DrawText writes text with its baseline starting at (x, y).
func DrawText(dst draw.Image, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// MaskToRGBA renders a single channel frame, such as a delta map or binary
// mask, as an RGBA image for display or encoding.
func MaskToRGBA(gray *image.Gray) *image.RGBA {
	if gray == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	dst := image.NewRGBA(image.Rect(0, 0, gray.Bounds().Dx(), gray.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), gray, gray.Bounds().Min, draw.Src)
	return dst
}
