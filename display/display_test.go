package display

import (
	"image"
	"testing"
	"time"

	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/overlay"
	"github.com/nvr-ai/go-motion/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramesForDetectionResult(t *testing.T) {
	gen := test.NewMockFrameGenerator(640, 480)
	detector, err := motion.New(motion.DefaultConfig())
	require.NoError(t, err)

	_, err = detector.Process(gen.GenerateStaticFrame())
	require.NoError(t, err)
	current := gen.GenerateMotionFrame(200, 200, 100)
	result, err := detector.Process(current)
	require.NoError(t, err)

	opts := Options{Width: 500, Style: overlay.DefaultStyle(), Debug: true}
	feed, mask, delta, err := frames(controller.Frame{ID: 2, Image: current, Timestamp: time.Now()}, result, opts)
	require.NoError(t, err)

	want := image.Rect(0, 0, 500, 375)
	assert.Equal(t, want, feed.Bounds())
	require.NotNil(t, mask)
	require.NotNil(t, delta)
	assert.Equal(t, want, mask.Bounds())
	assert.Equal(t, want, delta.Bounds())
}

func TestFramesWithoutDebug(t *testing.T) {
	gen := test.NewMockFrameGenerator(500, 375)
	frame := controller.Frame{ID: 1, Image: gen.GenerateStaticFrame()}

	feed, mask, delta, err := frames(frame, motion.Result{Baseline: true}, Options{Width: 500, Style: overlay.DefaultStyle(), Debug: true})
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Nil(t, mask, "baseline results have no mask")
	assert.Nil(t, delta)

	result := motion.Result{Mask: image.NewGray(image.Rect(0, 0, 500, 375)), Delta: image.NewGray(image.Rect(0, 0, 500, 375))}
	_, mask, _, err = frames(frame, result, Options{Width: 500, Style: overlay.DefaultStyle()})
	require.NoError(t, err)
	assert.Nil(t, mask)
}

func TestFramesRejectsInvalidFrame(t *testing.T) {
	_, _, _, err := frames(controller.Frame{ID: 1}, motion.Result{}, Options{Width: 500, Style: overlay.DefaultStyle()})
	assert.Error(t, err)
}
