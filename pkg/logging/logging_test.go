package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		verbosity string
		count     int
		want      slog.Level
	}{
		{"", 0, slog.LevelInfo},
		{"", 1, slog.LevelDebug},
		{"", 3, LevelTrace},
		{"WARN", 2, slog.LevelWarn},
		{"error", 0, slog.LevelError},
		{"trace", 0, LevelTrace},
		{"bogus", 1, slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.verbosity, tt.count); got != tt.want {
			t.Errorf("ParseLevel(%q, %d) = %v, want %v", tt.verbosity, tt.count, got, tt.want)
		}
	}
}

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With("mapID", "mindmap_3").Info("map created", "nodes", 7, "title", "Climate Change", "durationMs", 12)

	line := buf.String()
	for _, want := range []string{"[INFO]  ", "map created |", "map=mindmap_3", "nodes=7", `title="Climate Change"`, "duration=12ms"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
	if strings.Index(line, "map=") > strings.Index(line, "nodes=") {
		t.Errorf("Expected handler attributes before record attributes: %q", line)
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected debug to be filtered, got %q", buf.String())
	}

	buf.Reset()
	trace := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))
	trace.Log(context.Background(), LevelTrace, "iteration")
	if !strings.HasPrefix(buf.String(), "[TRACE] ") {
		t.Errorf("Expected TRACE prefix, got %q", buf.String())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, slog.LevelDebug, false)
	defer Setup(os.Stderr, slog.LevelInfo, false)

	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/maps/nope", nil)
	req.Header.Set("X-Request-ID", "abcdef0123456789")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "abcdef0123456789" {
		t.Errorf("Expected request ID to be propagated, got %q", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("Expected response header %q, got %q", seen, got)
	}
	out := buf.String()
	if !strings.Contains(out, "[WARN]  ") || !strings.Contains(out, "req=abcdef01") {
		t.Errorf("Expected a WARN line with shortened request ID, got %q", out)
	}
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(rec.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("Expected a generated UUID, got %q", rec.Header().Get("X-Request-ID"))
	}
}
