package motion

import (
	"sync"
	"time"
)

// Stats accumulates per-run counters from detection results.
//
// Unlike a Detector, Stats is safe for concurrent use: the runner records
// results while the profiler and the status API read them.
type Stats struct {
	mu sync.Mutex

	frames      uint64
	skipped     uint64
	occupied    uint64
	transitions uint64
	rebaselines uint64
	regions     int
	last        Status

	// FPS tracking
	windowStart  time.Time
	windowFrames int
	fps          float64

	now func() time.Time
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Frames      uint64  `json:"frames"`
	Skipped     uint64  `json:"skipped"`
	Occupied    uint64  `json:"occupied"`
	Transitions uint64  `json:"transitions"`
	Rebaselines uint64  `json:"rebaselines"`
	Regions     int     `json:"regions"`
	Status      Status  `json:"status"`
	FPS         float64 `json:"fps"`
}

// NewStats creates an empty statistics tracker.
func NewStats() *Stats {
	return newStats(time.Now)
}

func newStats(now func() time.Time) *Stats {
	return &Stats{now: now, windowStart: now()}
}

// Observe records a processed frame.
//
// Baseline results count as frames but never as occupied. A baseline after the
// first frame counts as a rebaseline. Transitions count every change of status
// between consecutive results.
func (s *Stats) Observe(result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames++
	if result.Baseline && s.frames > 1 {
		s.rebaselines++
	}
	if result.Status == Occupied {
		s.occupied++
	}
	if result.Status != s.last {
		s.transitions++
	}
	s.last = result.Status
	s.regions = len(result.Regions)

	s.tick()
}

// Skip records a frame that was rejected before producing a result.
func (s *Stats) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.skipped++
	s.tick()
}

// tick updates the FPS calculation. Callers hold mu.
func (s *Stats) tick() {
	s.windowFrames++

	elapsed := s.now().Sub(s.windowStart).Seconds()
	if elapsed >= 1.0 {
		s.fps = float64(s.windowFrames) / elapsed

		// Reset counters
		s.windowFrames = 0
		s.windowStart = s.now()
	}
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StatsSnapshot{
		Frames:      s.frames,
		Skipped:     s.skipped,
		Occupied:    s.occupied,
		Transitions: s.transitions,
		Rebaselines: s.rebaselines,
		Regions:     s.regions,
		Status:      s.last,
		FPS:         s.fps,
	}
}

// CollectMetrics implements the profiler.MetricsCollector interface.
//
// Returns:
// - A map of metric names to their current values
func (s *Stats) CollectMetrics() map[string]float64 {
	snap := s.Snapshot()

	metrics := make(map[string]float64)
	metrics["frames_total"] = float64(snap.Frames)
	metrics["frames_skipped"] = float64(snap.Skipped)
	metrics["frames_occupied"] = float64(snap.Occupied)
	metrics["status_transitions"] = float64(snap.Transitions)
	metrics["regions"] = float64(snap.Regions)
	metrics["fps"] = snap.FPS

	return metrics
}
