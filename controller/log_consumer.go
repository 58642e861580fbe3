package controller

import (
	"log"

	"github.com/nvr-ai/go-motion/motion"
)

// LogConsumer logs occupancy changes.
type LogConsumer struct {
	logger  *log.Logger
	verbose bool
	last    motion.Status
}

// NewLogConsumer creates a consumer that logs to logger, or log.Default() when nil.
// With verbose set every frame is logged, otherwise only status transitions.
func NewLogConsumer(logger *log.Logger, verbose bool) *LogConsumer {
	if logger == nil {
		logger = log.Default()
	}
	return &LogConsumer{logger: logger, verbose: verbose}
}

// Consume implements Consumer.
func (c *LogConsumer) Consume(frame Frame, result motion.Result) error {
	changed := result.Status != c.last
	c.last = result.Status

	if !changed && !c.verbose {
		return nil
	}

	var largest float64
	for _, region := range result.Regions {
		largest = max(largest, region.Area)
	}

	c.logger.Printf("[%s] frame %d: %s | regions: %d | largest area: %.0f",
		frame.Timestamp.Format("15:04:05.000"), frame.ID, result.Status, len(result.Regions), largest)
	return nil
}
