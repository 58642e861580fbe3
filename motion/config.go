package motion

import (
	"github.com/nvr-ai/go-motion/images"
	"github.com/pkg/errors"
)

// Config contains the tunables of the detection pipeline.
type Config struct {
	// TargetWidth is the width every frame is resized to before comparison.
	TargetWidth int `mapstructure:"target_width" json:"target_width"`
	// DiffThreshold is the intensity difference a pixel must exceed to count as changed.
	DiffThreshold int `mapstructure:"diff_threshold" json:"diff_threshold"`
	// DilationIterations is how many 3x3 dilation passes are applied to the mask.
	DilationIterations int `mapstructure:"dilation_iterations" json:"dilation_iterations"`
	// MinRegionArea is the smallest contour area reported as a region.
	MinRegionArea int `mapstructure:"min_region_area" json:"min_region_area"`
}

// DefaultConfig returns the default pipeline configuration.
//
// Returns:
//   - Config: Width 500, threshold 25, 2 dilation iterations, minimum area 500.
//
// @example
// cfg := motion.DefaultConfig()
// cfg.MinRegionArea = 1500
// detector, err := motion.New(cfg)
func DefaultConfig() Config {
	return Config{
		TargetWidth:        images.DefaultTargetWidth,
		DiffThreshold:      images.DefaultDiffThreshold,
		DilationIterations: images.DefaultDilationIterations,
		MinRegionArea:      500,
	}
}

// Validate reports the first option that is out of range.
func (c Config) Validate() error {
	switch {
	case c.TargetWidth <= 0:
		return errors.Errorf("target width must be positive, got %d", c.TargetWidth)
	case c.DiffThreshold < 0 || c.DiffThreshold > 255:
		return errors.Errorf("diff threshold must be within 0-255, got %d", c.DiffThreshold)
	case c.DilationIterations < 0:
		return errors.Errorf("dilation iterations must not be negative, got %d", c.DilationIterations)
	case c.MinRegionArea < 0:
		return errors.Errorf("minimum region area must not be negative, got %d", c.MinRegionArea)
	}
	return nil
}
