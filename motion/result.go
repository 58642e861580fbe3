package motion

import (
	"image"

	"github.com/nvr-ai/go-motion/common"
	"github.com/pkg/errors"
)

// Status is the occupancy verdict for one frame.
type Status int

const (
	// Unoccupied means no region survived the area filter.
	Unoccupied Status = iota
	// Occupied means at least one region was found.
	Occupied
)

func (s Status) String() string {
	if s == Occupied {
		return "Occupied"
	}
	return "Unoccupied"
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Occupied":
		*s = Occupied
	case "Unoccupied":
		*s = Unoccupied
	default:
		return errors.Errorf("unknown status %q", text)
	}
	return nil
}

// Region is one area of change in a normalized frame.
type Region struct {
	// Box is the tight bounding box of the region's outer contour.
	Box common.BoundingBox `json:"box"`
	// Area is the area enclosed by the outer contour.
	Area float64 `json:"area"`
}

// Result is the outcome of processing one frame.
type Result struct {
	Status  Status   `json:"status"`
	Regions []Region `json:"regions"`
	// Frame is the 1-based number of the Process call that produced the result.
	Frame uint64 `json:"frame"`
	// Baseline is set when the frame was adopted as the background reference
	// instead of being compared against it.
	Baseline bool `json:"baseline"`

	// Delta and Mask are the intermediate difference map and dilated mask.
	// They are nil on baseline frames.
	Delta *image.Gray `json:"-"`
	Mask  *image.Gray `json:"-"`
}

// Occupied reports whether any region was detected.
func (r Result) Occupied() bool {
	return r.Status == Occupied
}
