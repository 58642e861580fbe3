package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	grayMax  = color.Gray{Y: MaxValue}
	grayZero = color.Gray{}
)

// fillRect paints r with v.
func fillRect(img *image.Gray, r image.Rectangle, v uint8) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

func TestValidateFrame(t *testing.T) {
	assert.NoError(t, ValidateFrame(image.NewGray(image.Rect(0, 0, 1, 1))))
	assert.NoError(t, ValidateFrame(image.NewYCbCr(image.Rect(0, 0, 16, 9), image.YCbCrSubsampleRatio420)))
	assert.NoError(t, ValidateFrame(image.NewUniform(color.White)), "unbounded images are not pixel buffers")
	assert.Error(t, ValidateFrame(image.NewRGBA(image.Rect(5, 5, 5, 9))))
}

func TestCloneGrayRebasesAtOrigin(t *testing.T) {
	parent := randomGray(10, 10, 7)
	sub := parent.SubImage(image.Rect(3, 4, 8, 9)).(*image.Gray)

	clone := CloneGray(sub)
	assert.Equal(t, image.Rect(0, 0, 5, 5), clone.Bounds())
	assert.Equal(t, sub.GrayAt(3, 4), clone.GrayAt(0, 0))
	assert.Equal(t, sub.GrayAt(7, 8), clone.GrayAt(4, 4))
	assert.Equal(t, Checksum(sub), Checksum(clone))
}

func TestChecksum(t *testing.T) {
	a := randomGray(16, 16, 9)
	b := CloneGray(a)
	assert.Equal(t, Checksum(a), Checksum(b))

	b.Pix[0]++
	assert.NotEqual(t, Checksum(a), Checksum(b))
	assert.Equal(t, "empty", Checksum(nil))
	assert.Equal(t, "empty", Checksum(image.NewGray(image.Rectangle{})))
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected ImageFormat
		ok       bool
	}{
		{path: "frame-1.jpg", expected: FormatJPEG, ok: true},
		{path: "frame-2.JPEG", expected: FormatJPEG, ok: true},
		{path: "/tmp/a.png", expected: FormatPNG, ok: true},
		{path: "clip.webp", expected: FormatWebP, ok: true},
		{path: "anim.gif", expected: FormatGIF, ok: true},
		{path: "notes.txt", ok: false},
		{path: "noext", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, ok := FormatFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, format)
		})
	}

	assert.Equal(t, "image/jpeg", FormatJPEG.MimeType())
}
