package profiler

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticCollector reports a fixed set of metrics.
type staticCollector map[string]float64

func (c staticCollector) CollectMetrics() map[string]float64 {
	return c
}

var _ motion.StageTimer = (*RuntimeProfiler)(nil)

func TestRecordMetric(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{MaxSamples: 3})

	for _, v := range []float64{4, 1, 7, 2} {
		rp.RecordMetric("regions", v)
	}

	m := rp.Snapshot().Metrics["regions"]
	assert.Equal(t, 3, m.Samples, "window keeps the newest samples")
	assert.Equal(t, 2.0, m.Last)
	assert.InDelta(t, (1.0+7+2)/3, m.Avg, 1e-9)
	assert.Equal(t, 1.0, m.Min)
	assert.Equal(t, 7.0, m.Max)
}

func TestStartOperation(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})

	for i := 0; i < 3; i++ {
		done := rp.StartOperation(motion.StageDiff)
		done()
	}

	stage, ok := rp.Snapshot().Stages[motion.StageDiff]
	require.True(t, ok)
	assert.Equal(t, int64(3), stage.Count)
	assert.LessOrEqual(t, stage.Min, stage.Avg)
	assert.LessOrEqual(t, stage.Avg, stage.Max)
}

func TestDetectorStagesAreTimed(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})
	detector, err := motion.New(motion.DefaultConfig(), motion.WithStageTimer(rp))
	require.NoError(t, err)

	gen := test.NewMockFrameGenerator(500, 375)
	_, err = detector.Process(gen.GenerateStaticFrame())
	require.NoError(t, err)
	_, err = detector.Process(gen.GenerateMotionFrame(50, 50, 40))
	require.NoError(t, err)

	stages := rp.Snapshot().Stages
	assert.Equal(t, int64(2), stages[motion.StageNormalize].Count)
	for _, name := range []string{motion.StageDiff, motion.StageBinarize, motion.StageExtract} {
		assert.Equal(t, int64(1), stages[name].Count, name)
	}
}

func TestSamplePollsCollectors(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})
	stats := motion.NewStats()
	stats.Observe(motion.Result{Status: motion.Occupied, Regions: []motion.Region{{Area: 900}}})

	rp.AddMetricsCollector(stats)
	rp.AddMetricsCollector(staticCollector{"custom": 3})
	rp.sample()
	rp.sample()

	report := rp.Snapshot()
	assert.Equal(t, 2, report.Samples)
	assert.Equal(t, 1.0, report.Metrics["frames_total"].Last)
	assert.Equal(t, 1.0, report.Metrics["frames_occupied"].Last)
	assert.Equal(t, 2, report.Metrics["custom"].Samples)
}

func TestWriteReport(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})
	rp.RecordMetric("fps", 12.5)
	for _, name := range []string{"frame", motion.StageExtract, motion.StageNormalize} {
		rp.StartOperation(name)()
	}

	var buf bytes.Buffer
	rp.WriteReport(&buf)
	out := buf.String()

	assert.Contains(t, out, "MOTION RUN REPORT")
	assert.Contains(t, out, "fps: last=12.50")

	normalize := strings.Index(out, "  normalize:")
	extract := strings.Index(out, "  extract:")
	frame := strings.Index(out, "  frame:")
	require.True(t, normalize >= 0 && extract >= 0 && frame >= 0, out)
	assert.Less(t, normalize, extract, "pipeline stages are listed in order")
	assert.Less(t, extract, frame, "other operations follow the pipeline stages")
}

// syncBuffer is a bytes.Buffer safe for the report goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartStop(t *testing.T) {
	out := &syncBuffer{}
	rp := NewRuntimeProfiler(ProfilingOptions{
		ReportInterval: 20 * time.Millisecond,
		SampleInterval: 5 * time.Millisecond,
		Output:         out,
	})

	rp.Start()
	rp.Start()
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "MOTION RUN REPORT") && rp.Snapshot().Samples > 0
	}, 2*time.Second, 10*time.Millisecond)

	rp.Stop()
	rp.Stop()

	samples := rp.Snapshot().Samples
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, samples, rp.Snapshot().Samples, "no sampling after Stop")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}
