package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProgressUnknownID(t *testing.T) {
	s := New(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/render/missing/progress", nil)
	s.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
}

func TestCancelInvokesCancelFunc(t *testing.T) {
	s := New(nil)

	var cancelled bool
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{ID: "job-1", cancel: cancel, tilesTotal: 4}
	s.mu.Lock()
	s.jobs["job-1"] = job
	s.previewers["job-1"] = blankPreview
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		cancelled = true
	}()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/render/job-1/cancel", nil)
	s.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202 Accepted, got %d", rec.Code)
	}
	<-ctx.Done()
	if !cancelled {
		t.Error("expected context to be cancelled by handleCancel")
	}
}

func TestProgressReportsSnapshot(t *testing.T) {
	s := New(nil)
	job := &Job{ID: "job-2", tilesTotal: 10}
	job.setProgress(3, 10)
	s.mu.Lock()
	s.jobs["job-2"] = job
	s.mu.Unlock()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/render/job-2/progress", nil)
	s.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPreviewServesPNG(t *testing.T) {
	s := New(nil)
	s.mu.Lock()
	s.previewers["job-2"] = blankPreview
	s.mu.Unlock()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/render/job-2/preview", nil)
	s.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png content type, got %q", ct)
	}
}
