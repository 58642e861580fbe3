package source

import (
	"context"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Frame is the frame number parsed from a "frame-<n>" name, or -1.
	Frame int
	// Format is the encoding implied by the file extension.
	Format images.ImageFormat
}

// ListImageFiles lists the frame files of a directory in playback order.
//
// Files named frame-<n> are ordered by n. Other image files follow, ordered by
// name. Subdirectories and files that are not images are ignored.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files in playback order.
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		format, ok := images.FormatFromPath(entry.Name())
		if !ok {
			continue
		}
		files = append(files, ImageFile{
			Path:   filepath.Join(dir, entry.Name()),
			Frame:  frameNumber(entry.Name()),
			Format: format,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if (a.Frame < 0) != (b.Frame < 0) {
			return a.Frame >= 0
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Path < b.Path
	})

	return files, nil
}

// frameNumber extracts n from a "frame-<n>.<ext>" file name.
func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// DecodeFile reads and decodes one image file.
//
// A file that cannot be decoded yields an error wrapping images.ErrInvalidFrame,
// so a stream can skip it and carry on.
func DecodeFile(file ImageFile) (image.Image, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", file.Path)
	}
	defer f.Close()

	var img image.Image
	if file.Format == images.FormatWebP {
		img, err = webp.Decode(f)
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, errors.Wrapf(images.ErrInvalidFrame, "decode %s: %v", file.Path, err)
	}

	return img, nil
}

// Directory replays the image files of a directory as a stream.
type Directory struct {
	dir   string
	files []ImageFile
	pos   int
}

// OpenDirectory prepares a directory of frame images for playback.
//
// Returns:
// - *Directory: A source positioned at the first frame.
// - error: Error if the directory cannot be read or holds no images.
func OpenDirectory(dir string) (*Directory, error) {
	files, err := ListImageFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no image files in %s", dir)
	}

	return &Directory{dir: dir, files: files}, nil
}

// Files returns the files in playback order.
func (d *Directory) Files() []ImageFile {
	return d.files
}

// Next decodes the next file. A file that fails to decode is consumed and its
// error returned, so the following call moves on to the next file.
func (d *Directory) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.pos >= len(d.files) {
		return nil, ErrEndOfStream
	}

	file := d.files[d.pos]
	d.pos++
	return DecodeFile(file)
}

// Close stops playback.
func (d *Directory) Close() error {
	d.pos = len(d.files)
	return nil
}
