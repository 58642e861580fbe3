// Package profiler - Periodic runtime and pipeline stage reports for a motion run.
package profiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/nvr-ai/go-motion/motion"
)

// MetricsCollector defines the interface for collecting custom metrics.
// motion.Stats implements it.
type MetricsCollector interface {
	CollectMetrics() map[string]float64
}

// stageOrder lists the pipeline stages in the order they run. Reports list
// them first, followed by any other operation in name order.
var stageOrder = []string{
	motion.StageNormalize,
	motion.StageDiff,
	motion.StageBinarize,
	motion.StageExtract,
}

// RuntimeProfiler samples the Go runtime, times pipeline stages and collects
// run metrics, and prints a report at a fixed interval.
//
// It implements motion.StageTimer and is safe for concurrent use.
type RuntimeProfiler struct {
	// Configuration
	reportInterval time.Duration
	sampleInterval time.Duration
	maxSamples     int
	out            io.Writer

	// State management
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	startTime time.Time
	running   bool

	// System metrics
	memStats    runtime.MemStats
	samples     []runtimeSample
	lastGCCount uint32

	// Custom metrics
	customMetrics map[string]*MetricTracker
	collectors    []MetricsCollector

	// Stage timing
	operationTimes map[string]*TimeTracker
}

// runtimeSample is one reading of the runtime.
type runtimeSample struct {
	timestamp  time.Time
	goroutines int
	heapAlloc  uint64
}

// MetricTracker tracks statistics for a custom metric over a sliding window.
type MetricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

// TimeTracker tracks operation timing statistics over a sliding window.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// MetricSummary summarizes a custom metric.
type MetricSummary struct {
	Last    float64 `json:"last"`
	Avg     float64 `json:"avg"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Samples int     `json:"samples"`
}

// StageSummary summarizes the timing of one operation.
type StageSummary struct {
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Count int64         `json:"count"`
}

// Report is a point-in-time copy of the profiler state.
type Report struct {
	Uptime     time.Duration            `json:"uptime"`
	Goroutines int                      `json:"goroutines"`
	HeapAlloc  uint64                   `json:"heap_alloc"`
	Samples    int                      `json:"samples"`
	Metrics    map[string]MetricSummary `json:"metrics"`
	Stages     map[string]StageSummary  `json:"stages"`
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often to emit status reports (default: 2s)
	ReportInterval time.Duration
	// SampleInterval specifies how often to collect samples (default: 100ms)
	SampleInterval time.Duration
	// MaxSamples specifies maximum number of samples to keep (default: 600)
	MaxSamples int
	// Output receives the reports (default: os.Stdout)
	Output io.Writer
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler
//
// Returns:
// - A configured RuntimeProfiler instance
func NewRuntimeProfiler(opts ProfilingOptions) *RuntimeProfiler {
	// Set defaults
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = 100 * time.Millisecond
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 600 // 1 minute of samples at 100ms intervals
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		out:            opts.Output,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		samples:        make([]runtimeSample, 0, opts.MaxSamples),
		customMetrics:  make(map[string]*MetricTracker),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// Start begins sampling and reporting in the background. Calling it on a
// running profiler does nothing. A stopped profiler cannot be restarted.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running || rp.ctx.Err() != nil {
		return
	}

	rp.running = true
	rp.startTime = time.Now()

	rp.wg.Add(2)
	go rp.loop(rp.sampleInterval, rp.sample)
	go rp.loop(rp.reportInterval, func() { rp.WriteReport(rp.out) })
}

// Stop stops the background goroutines and waits for them to exit.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

func (rp *RuntimeProfiler) loop(interval time.Duration, fn func()) {
	defer rp.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rp.ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// AddMetricsCollector registers a collector polled on every sample.
//
// Arguments:
// - collector: An implementation of MetricsCollector, such as motion.Stats
func (rp *RuntimeProfiler) AddMetricsCollector(collector MetricsCollector) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.collectors = append(rp.collectors, collector)
}

// RecordMetric records a custom metric value.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (rp *RuntimeProfiler) RecordMetric(name string, value float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.track(name, value)
}

// track adds value to the named metric. Callers hold mu.
func (rp *RuntimeProfiler) track(name string, value float64) {
	tracker, exists := rp.customMetrics[name]
	if !exists {
		tracker = &MetricTracker{
			values: make([]float64, 0, rp.maxSamples),
			min:    value,
			max:    value,
		}
		rp.customMetrics[name] = tracker
	}

	tracker.values = append(tracker.values, value)
	tracker.sum += value
	if len(tracker.values) > rp.maxSamples {
		// Remove oldest sample
		tracker.sum -= tracker.values[0]
		tracker.values = tracker.values[1:]
	}
	tracker.count++
	tracker.min = min(tracker.min, value)
	tracker.max = max(tracker.max, value)
}

// StartOperation begins timing an operation. It implements motion.StageTimer.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.recordOperationTime(name, time.Since(start))
	}
}

// recordOperationTime records the completion time of an operation.
func (rp *RuntimeProfiler) recordOperationTime(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			minTime: duration,
			maxTime: duration,
		}
		rp.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	tracker.totalTime += duration
	if len(tracker.durations) > rp.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++
	tracker.minTime = min(tracker.minTime, duration)
	tracker.maxTime = max(tracker.maxTime, duration)
}

// sample reads the runtime and polls every collector.
func (rp *RuntimeProfiler) sample() {
	rp.mu.Lock()
	collectors := append([]MetricsCollector(nil), rp.collectors...)
	rp.mu.Unlock()

	// Collectors take their own locks, so poll them before taking ours.
	collected := make([]map[string]float64, 0, len(collectors))
	for _, collector := range collectors {
		collected = append(collected, collector.CollectMetrics())
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	runtime.ReadMemStats(&rp.memStats)
	rp.samples = append(rp.samples, runtimeSample{
		timestamp:  time.Now(),
		goroutines: runtime.NumGoroutine(),
		heapAlloc:  rp.memStats.HeapAlloc,
	})
	if len(rp.samples) > rp.maxSamples {
		rp.samples = rp.samples[1:]
	}

	for _, metrics := range collected {
		for name, value := range metrics {
			rp.track(name, value)
		}
	}
}

// Snapshot returns the current statistics.
func (rp *RuntimeProfiler) Snapshot() Report {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	rp.mu.RLock()
	defer rp.mu.RUnlock()

	report := Report{
		Uptime:     time.Since(rp.startTime),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Samples:    len(rp.samples),
		Metrics:    make(map[string]MetricSummary, len(rp.customMetrics)),
		Stages:     make(map[string]StageSummary, len(rp.operationTimes)),
	}

	for name, tracker := range rp.customMetrics {
		if n := len(tracker.values); n > 0 {
			report.Metrics[name] = MetricSummary{
				Last:    tracker.values[n-1],
				Avg:     tracker.sum / float64(n),
				Min:     tracker.min,
				Max:     tracker.max,
				Samples: n,
			}
		}
	}
	for name, tracker := range rp.operationTimes {
		if n := len(tracker.durations); n > 0 {
			report.Stages[name] = StageSummary{
				Avg:   tracker.totalTime / time.Duration(n),
				Min:   tracker.minTime,
				Max:   tracker.maxTime,
				Count: tracker.count,
			}
		}
	}

	return report
}

// WriteReport prints a status report to w.
func (rp *RuntimeProfiler) WriteReport(w io.Writer) {
	report := rp.Snapshot()

	rp.mu.Lock()
	numGC, lastGC, gcFraction := rp.memStats.NumGC, rp.memStats.LastGC, rp.memStats.GCCPUFraction
	newGC := numGC - rp.lastGCCount
	rp.lastGCCount = numGC
	rp.mu.Unlock()

	fmt.Fprintf(w, "MOTION RUN REPORT - %s\n", time.Now().Format("15:04:05.000"))
	fmt.Fprintf(w, "Uptime: %v\n", report.Uptime.Truncate(time.Millisecond))

	fmt.Fprintf(w, "\nSYSTEM:\n")
	fmt.Fprintf(w, "  Goroutines: %d\n", report.Goroutines)
	fmt.Fprintf(w, "  Heap Alloc: %s\n", formatBytes(report.HeapAlloc))
	if newGC > 0 {
		fmt.Fprintf(w, "  GC Cycles: %d (new: %d), last %v ago, CPU %.4f%%\n",
			numGC, newGC, time.Since(time.Unix(0, int64(lastGC))).Truncate(time.Millisecond), gcFraction*100)
	}

	if len(report.Metrics) > 0 {
		fmt.Fprintf(w, "\nRUN METRICS:\n")
		for _, name := range sortedKeys(report.Metrics) {
			m := report.Metrics[name]
			fmt.Fprintf(w, "  %s: last=%.2f, avg=%.2f, min=%.2f, max=%.2f\n", name, m.Last, m.Avg, m.Min, m.Max)
		}
	}

	if len(report.Stages) > 0 {
		fmt.Fprintf(w, "\nSTAGE TIMINGS:\n")
		for _, name := range stageNames(report.Stages) {
			s := report.Stages[name]
			fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
				name, s.Avg.Truncate(time.Microsecond), s.Min.Truncate(time.Microsecond),
				s.Max.Truncate(time.Microsecond), s.Count)
		}
	}
}

// stageNames returns the pipeline stages present in stages in pipeline order,
// followed by every other operation sorted by name.
func stageNames(stages map[string]StageSummary) []string {
	names := make([]string, 0, len(stages))
	known := make(map[string]bool, len(stageOrder))
	for _, name := range stageOrder {
		known[name] = true
		if _, ok := stages[name]; ok {
			names = append(names, name)
		}
	}

	var rest []string
	for name := range stages {
		if !known[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func sortedKeys(m map[string]MetricSummary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
