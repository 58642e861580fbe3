package images

import (
	"crypto/md5"
	"fmt"
	"image"
)

// Checksum generates a deterministic checksum for a grayscale frame.
//
// Only the visible samples are hashed, so two frames with the same content but
// different strides or origins produce the same checksum.
//
// Arguments:
// - img: The frame to compute the checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for a nil or zero-sized frame.
//
// Example:
//
// ```go
//
//	before := Checksum(reference)
//	// ... process more frames ...
//	fmt.Println(before == Checksum(reference)) // true, the reference is never updated
//
// ```
func Checksum(img *image.Gray) string {
	if img == nil || img.Bounds().Empty() {
		return "empty"
	}

	b := img.Bounds()
	hash := md5.New()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		hash.Write(img.Pix[off : off+b.Dx()])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
