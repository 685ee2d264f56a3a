// Package server exposes the HTTP render-control/progress API named
// in SPEC_FULL.md §8: poll a render's progress, cancel it, and pull a
// PNG preview of the film mid-render. Renders are started from Go
// through StartRender; no HTTP route starts one. It is a direct
// generalization of the teacher's net/http-based web/server package
// (console + inspect + render endpoints) onto gin-gonic/gin.
package server

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumetrace/lumetrace/internal/logging"
	"github.com/lumetrace/lumetrace/internal/renderer"
)

// Job tracks one in-flight or completed render, addressable by ID.
type Job struct {
	ID       string
	Renderer *renderer.Renderer
	cancel   context.CancelFunc

	mu           sync.RWMutex
	tilesDone    int
	tilesTotal   int
	saturation   int64
	done         bool
	err          error
	renderStats  renderer.RenderStats
	startedAt    time.Time
}

func (j *Job) setProgress(done, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.tilesDone, j.tilesTotal = done, total
}

func (j *Job) finish(stats renderer.RenderStats, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.done = true
	j.err = err
	j.renderStats = stats
	j.saturation = stats.SaturatedCount
}

func (j *Job) snapshot() (done, total int, saturation int64, finished bool, err error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.tilesDone, j.tilesTotal, j.saturation, j.done, j.err
}

// Server owns the job table and the gin engine; previewers holds, per
// job ID, the function the preview endpoint calls to snapshot the
// current film state as an image.Image.
type Server struct {
	engine *gin.Engine
	logger logging.Logger

	mu   sync.RWMutex
	jobs map[string]*Job

	previewers map[string]func() image.Image
}

// New builds a gin engine with the render-control routes wired in.
func New(logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop{}
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:     gin.New(),
		logger:     logger,
		jobs:       make(map[string]*Job),
		previewers: make(map[string]func() image.Image),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api/render")
	api.GET("/:id/progress", s.handleProgress)
	api.POST("/:id/cancel", s.handleCancel)
	api.GET("/:id/preview", s.handlePreview)
}

// Run starts the HTTP listener; blocks until the server errors or the
// process is killed, the same contract as net/http.ListenAndServe.
func (s *Server) Run(addr string) error {
	s.logger.Infof("server listening on %s", addr)
	return s.engine.Run(addr)
}

// Engine exposes the underlying gin.Engine for tests (httptest.Server
// wraps Engine directly, avoiding a real network listener).
func (s *Server) Engine() *gin.Engine { return s.engine }

// StartRender registers a new job and runs it in its own goroutine,
// returning immediately with the job's ID. preview is called by the
// preview endpoint to snapshot the film's current state as an image.
func (s *Server) StartRender(id string, r *renderer.Renderer, tilesTotal int, preview func() image.Image) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{ID: id, Renderer: r, cancel: cancel, tilesTotal: tilesTotal, startedAt: time.Now()}

	s.mu.Lock()
	s.jobs[id] = job
	s.previewers[id] = preview
	s.mu.Unlock()

	go func() {
		stats, err := r.Render(ctx)
		job.finish(stats, err)
		if err != nil {
			s.logger.Warnf("render %s ended: %v", id, err)
		} else {
			s.logger.Infof("render %s completed in %s", id, time.Since(job.startedAt))
		}
	}()

	return job
}

func (s *Server) getJob(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

// handleProgress answers GET /api/render/:id/progress with
// {tiles_done, tiles_total, saturation_count}, per SPEC_FULL.md §8.
func (s *Server) handleProgress(c *gin.Context) {
	job, ok := s.getJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown render id"})
		return
	}
	done, total, saturation, finished, err := job.snapshot()
	resp := gin.H{
		"tiles_done":       done,
		"tiles_total":      total,
		"saturation_count": saturation,
		"finished":         finished,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// handleCancel answers POST /api/render/:id/cancel by setting the
// render's cancellation flag (spec.md §5): the context is cancelled,
// in-flight tiles finish, and the render returns whatever was
// accumulated.
func (s *Server) handleCancel(c *gin.Context) {
	job, ok := s.getJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown render id"})
		return
	}
	job.cancel()
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

// handlePreview answers GET /api/render/:id/preview with the current
// film state tone-mapped to a PNG, so a client can poll a progressive
// render without waiting for completion.
func (s *Server) handlePreview(c *gin.Context) {
	id := c.Param("id")
	s.mu.RLock()
	preview, ok := s.previewers[id]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown render id"})
		return
	}

	img := preview()
	if img == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no samples accumulated yet"})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := png.Encode(c.Writer, img); err != nil {
		s.logger.Errorf("preview encode for %s: %v", id, err)
	}
}

// blankPreview is a 1x1 placeholder used only by tests that don't
// want to wire a real film into the preview path.
func blankPreview() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.Black)
	return img
}
