package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/overlay"
	"github.com/nvr-ai/go-motion/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer runs a baseline frame and one motion frame through a real
// detector and feeds both to a new server.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	gen := test.NewMockFrameGenerator(500, 375)
	detector, err := motion.New(motion.DefaultConfig())
	require.NoError(t, err)

	stats := motion.NewStats()
	s := NewServer(uuid.New(), stats, 500, overlay.DefaultStyle())

	frames := []controller.Frame{
		{ID: 1, Image: gen.GenerateStaticFrame(), Timestamp: time.Now()},
		{ID: 2, Image: gen.GenerateMotionFrame(100, 100, 80), Timestamp: time.Now()},
	}
	for _, frame := range frames {
		result, err := detector.Process(frame.Image)
		require.NoError(t, err)
		stats.Observe(result)
		require.NoError(t, s.Consume(frame, result))
	}
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(t, NewServer(uuid.New(), nil, 500, overlay.DefaultStyle()), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatusBeforeFirstFrame(t *testing.T) {
	id := uuid.New()
	w := get(t, NewServer(id, nil, 500, overlay.DefaultStyle()), "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	var body Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id, body.RunID)
	assert.False(t, body.Ready)
	assert.Nil(t, body.Last)
}

func TestStatusReportsLatestResult(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	var body Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Ready)
	require.NotNil(t, body.Last)
	assert.Equal(t, motion.Occupied, body.Last.Status)
	assert.Equal(t, uint64(2), body.Last.Frame)
	require.Len(t, body.Last.Regions, 1)
	assert.Equal(t, 84, body.Last.Regions[0].Box.Width)
	assert.Equal(t, uint64(2), body.Stats.Frames)
	assert.Equal(t, uint64(1), body.Stats.Occupied)
	assert.NotNil(t, body.Seen)
}

func TestSnapshot(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantWidth int
	}{
		{"annotated feed", "/api/snapshot", http.StatusOK, 500},
		{"downscaled", "/api/snapshot?width=250", http.StatusOK, 250},
		{"never upscaled", "/api/snapshot?width=1000", http.StatusOK, 500},
		{"mask view", "/api/snapshot?view=mask", http.StatusOK, 500},
		{"delta view", "/api/snapshot?view=delta&width=100", http.StatusOK, 100},
		{"bad width", "/api/snapshot?width=abc", http.StatusBadRequest, 0},
		{"negative width", "/api/snapshot?width=-5", http.StatusBadRequest, 0},
		{"unknown view", "/api/snapshot?view=thermal", http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, tt.target)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}

			assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
			img, err := jpeg.Decode(bytes.NewReader(w.Body.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, img.Bounds().Dx())
		})
	}
}

func TestSnapshotBeforeFirstFrame(t *testing.T) {
	w := get(t, NewServer(uuid.New(), nil, 500, overlay.DefaultStyle()), "/api/snapshot")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSnapshotOfBaselineHasNoMask(t *testing.T) {
	gen := test.NewMockFrameGenerator(500, 375)
	s := NewServer(uuid.New(), nil, 500, overlay.DefaultStyle())
	require.NoError(t, s.Consume(controller.Frame{ID: 1, Image: gen.GenerateStaticFrame()}, motion.Result{Baseline: true}))

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/snapshot?view=mask").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/snapshot").Code)
}

func TestShutdownWithoutServe(t *testing.T) {
	s := NewServer(uuid.New(), nil, 500, overlay.DefaultStyle())
	assert.NoError(t, s.Shutdown(context.Background()))
}
