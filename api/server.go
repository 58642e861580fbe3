// Package api - HTTP status and snapshot endpoints for a running motion detector.
package api

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/nvr-ai/go-motion/controller"
	"github.com/nvr-ai/go-motion/images"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/overlay"
	"github.com/pkg/errors"
)

// JPEGQuality is the quality of snapshot images.
const JPEGQuality = 85

// Snapshot views.
const (
	ViewFeed  = "feed"
	ViewMask  = "mask"
	ViewDelta = "delta"
)

// Status is the body of GET /api/status.
type Status struct {
	RunID uuid.UUID            `json:"run_id"`
	Ready bool                 `json:"ready"`
	Last  *motion.Result       `json:"last,omitempty"`
	Seen  *time.Time           `json:"seen,omitempty"`
	Stats motion.StatsSnapshot `json:"stats"`
}

// Server keeps the latest detection result and serves it over HTTP.
// It implements controller.Consumer.
type Server struct {
	runID uuid.UUID
	stats *motion.Stats
	width int
	style overlay.Style

	mu     sync.RWMutex
	frame  controller.Frame
	result motion.Result
	ready  bool

	srv *http.Server
}

// NewServer creates a server for one run.
//
// Arguments:
//   - runID: The id of the run being served.
//   - stats: The run statistics, shared with the runner.
//   - width: The normalization width of the detector.
//   - style: How region boxes are drawn on snapshots.
//
// Returns:
//   - *Server: The server. Call ListenAndServe to start it.
func NewServer(runID uuid.UUID, stats *motion.Stats, width int, style overlay.Style) *Server {
	if stats == nil {
		stats = motion.NewStats()
	}
	return &Server{runID: runID, stats: stats, width: width, style: style}
}

// Consume implements controller.Consumer by keeping the latest frame and result.
func (s *Server) Consume(frame controller.Frame, result motion.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame = frame
	s.result = result
	s.ready = true
	return nil
}

// latest returns the last frame and result, and whether there is one.
func (s *Server) latest() (controller.Frame, motion.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.result, s.ready
}

// Router builds the gin engine serving the API.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiRoutes := r.Group("/api")
	apiRoutes.GET("/status", s.handleStatus)
	apiRoutes.GET("/snapshot", s.handleSnapshot)

	return r
}

func (s *Server) handleStatus(ctx *gin.Context) {
	body := Status{RunID: s.runID, Stats: s.stats.Snapshot()}

	if frame, result, ok := s.latest(); ok {
		body.Ready = true
		body.Last = &result
		if !frame.Timestamp.IsZero() {
			body.Seen = &frame.Timestamp
		}
	}

	ctx.JSON(http.StatusOK, body)
}

// handleSnapshot serves the latest frame as a JPEG.
//
// Query parameters:
//   - view: feed (annotated frame, default), mask or delta.
//   - width: Optional output width, only used to shrink the image.
func (s *Server) handleSnapshot(ctx *gin.Context) {
	width := 0
	if raw := ctx.Query("width"); raw != "" {
		w, err := strconv.Atoi(raw)
		if err != nil || w <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "width must be a positive integer"})
			return
		}
		width = w
	}

	frame, result, ok := s.latest()
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no frame processed yet"})
		return
	}

	img, err := s.render(frame, result, ctx.DefaultQuery("view", ViewFeed))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if width > 0 && width < img.Bounds().Dx() {
		img = resize.Resize(uint(width), 0, img, resize.Bilinear)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		log.Printf("api/snapshot: could not encode frame %d, got '%v'", frame.ID, err)
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ctx.Data(http.StatusOK, images.FormatJPEG.MimeType(), buf.Bytes())
}

func (s *Server) render(frame controller.Frame, result motion.Result, view string) (image.Image, error) {
	switch view {
	case ViewFeed:
		ts := frame.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		return overlay.Annotate(frame.Image, result, s.width, s.style, ts)
	case ViewMask:
		if result.Mask == nil {
			return nil, errors.Errorf("frame %d has no mask", frame.ID)
		}
		return result.Mask, nil
	case ViewDelta:
		if result.Delta == nil {
			return nil, errors.Errorf("frame %d has no difference map", frame.ID)
		}
		return result.Delta, nil
	default:
		return nil, errors.Errorf("unknown view %q", view)
	}
}

// ListenAndServe serves the API on addr until Shutdown is called.
// It returns nil after a clean shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.srv = &http.Server{Addr: addr, Handler: s.Router()}
	srv := s.srv
	s.mu.Unlock()

	log.Printf("api: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "serve api on %s", addr)
	}
	return nil
}

// Shutdown gracefully stops a server started with ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.srv
	s.mu.RUnlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
