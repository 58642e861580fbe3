package images

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported still-frame encodings.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatWebP ImageFormat = "webp"
	FormatPNG  ImageFormat = "png"
	FormatGIF  ImageFormat = "gif"
)

// FormatFromPath maps a file extension to its ImageFormat.
// The second return value is false for extensions that are not frame encodings.
func FormatFromPath(path string) (ImageFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, true
	case ".png":
		return FormatPNG, true
	case ".webp":
		return FormatWebP, true
	case ".gif":
		return FormatGIF, true
	}
	return "", false
}

// MimeType returns the HTTP content type of the format.
func (f ImageFormat) MimeType() string {
	return "image/" + string(f)
}
