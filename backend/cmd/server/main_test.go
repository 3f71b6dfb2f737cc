package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"solar-system/backend/internal/transport/ws"
)

func TestPauseHandler(t *testing.T) {
	srv := ws.NewWSServer(ws.Options{Logger: log.New(io.Discard, "", 0)})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	rec := httptest.NewRecorder()
	pauseHandler(srv, true)(rec, httptest.NewRequest(http.MethodGet, "/pause", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405 for GET, got %d", rec.Code)
	}
	if srv.Paused() {
		t.Fatal("GET must not pause the server")
	}

	rec = httptest.NewRecorder()
	pauseHandler(srv, true)(rec, httptest.NewRequest(http.MethodPost, "/pause", nil))
	if rec.Code != http.StatusOK || !srv.Paused() {
		t.Fatalf("Expected paused server, got code %d paused %v", rec.Code, srv.Paused())
	}
	if !strings.Contains(rec.Body.String(), `"paused":true`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	pauseHandler(srv, false)(rec, httptest.NewRequest(http.MethodPost, "/resume", nil))
	if srv.Paused() {
		t.Error("Resume should clear pause")
	}
}
