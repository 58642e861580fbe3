package motion

import (
	"image"

	"github.com/nvr-ai/go-motion/common"
	"github.com/nvr-ai/go-motion/images"
)

// Binarize turns a difference map into the dilated foreground mask.
//
// Pixels whose difference is strictly greater than cfg.DiffThreshold become
// foreground (255), then the mask is dilated cfg.DilationIterations times with
// a 3x3 square element so that nearby fragments merge. A threshold outside
// 0-255 is clamped into that range, so 255 or more yields an empty mask.
//
// Arguments:
//   - diff: The difference map from images.AbsDiff.
//   - cfg: The pipeline configuration.
//
// Returns:
//   - *image.Gray: A mask holding only 0 and 255.
func Binarize(diff *image.Gray, cfg Config) *image.Gray {
	t := uint8(min(max(cfg.DiffThreshold, 0), images.MaxValue))
	mask := images.Threshold(diff, t, images.MaxValue)
	return images.Dilate(mask, cfg.DilationIterations)
}

// ExtractRegions reports the outer contours of a mask as regions.
//
// Contours whose area is strictly less than minArea are dropped. The remaining
// regions keep the raster order of images.FindExternalContours. The returned
// slice is never nil.
//
// Arguments:
//   - mask: A binary mask.
//   - minArea: The smallest contour area that is kept.
//
// Returns:
//   - []Region: The surviving regions, possibly empty.
func ExtractRegions(mask *image.Gray, minArea int) []Region {
	contours := images.FindExternalContours(mask)
	regions := make([]Region, 0, len(contours))

	for _, c := range contours {
		area := c.Area()
		if area < float64(minArea) {
			continue
		}
		regions = append(regions, Region{
			Box:  common.FromRect(c.BoundingRect()),
			Area: area,
		})
	}

	return regions
}
