// Package source - Frame sources for the motion pipeline.
//
// A Source yields frames one at a time until it returns ErrEndOfStream.
package source

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrEndOfStream signals that a source has no more frames. It is a normal
	// termination, not a failure.
	ErrEndOfStream = io.EOF
	// ErrCaptureUnavailable is returned when the binary was built without OpenCV support.
	ErrCaptureUnavailable = errors.New("video capture requires a build with the withcv tag")
)

// Source produces frames for the detector.
type Source interface {
	// Next blocks until the next frame is available. It returns ErrEndOfStream
	// once the source is exhausted and ctx.Err() when ctx is done first.
	Next(ctx context.Context) (image.Image, error)
	// Close releases the underlying device or files.
	Close() error
}

// Supported video file extensions
var supportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// ParseDevice interprets a capture target: a number selects a camera device,
// anything else is treated as the path of a video file.
//
// Returns:
// - The device id, or -1 when target is a path.
func ParseDevice(target string) int {
	id, err := strconv.Atoi(strings.TrimSpace(target))
	if err != nil || id < 0 {
		return -1
	}
	return id
}

// ValidateVideoFile checks if the file exists and has a supported extension.
func ValidateVideoFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.Errorf("file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range supportedVideoExtensions {
		if ext == supported {
			return nil
		}
	}

	return errors.Errorf("unsupported file extension: %s. Supported extensions: %v", ext, supportedVideoExtensions)
}
