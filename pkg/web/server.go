package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/concept-mapper/pkg/logging"
	"github.com/ritzau/concept-mapper/pkg/model"
	"github.com/ritzau/concept-mapper/pkg/palette"
	"github.com/ritzau/concept-mapper/pkg/pubsub"
	"github.com/ritzau/concept-mapper/pkg/render"
	"github.com/ritzau/concept-mapper/pkg/store"
)

// CreateRequest is the body of POST /api/maps
type CreateRequest struct {
	Text        string `json:"text"`
	Title       string `json:"title"`
	Layout      string `json:"layout"`
	ColorScheme string `json:"colorScheme"`
}

// CreateResponse is returned for a created map
type CreateResponse struct {
	ID string `json:"id"`
}

// StatusResponse describes what the server can do
type StatusResponse struct {
	RenderAvailable bool     `json:"renderAvailable"`
	Schemes         []string `json:"schemes"`
	Layouts         []string `json:"layouts"`
	Formats         []string `json:"formats"`
	Maps            int      `json:"maps"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	store     *store.Store
	publisher pubsub.Publisher

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a new web server around a store
func NewServer(st *store.Store) *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// maps: buffer the last 20 lifecycle events, replay all of them so a new
	// subscriber sees recent activity
	ssePublisher.ConfigureTopic(pubsub.TopicMaps, pubsub.TopicConfig{
		BufferSize: 20,
		ReplayAll:  true,
	})

	s := &Server{
		router:    mux.NewRouter(),
		store:     st,
		publisher: ssePublisher,
	}
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler with request logging applied
func (s *Server) Handler() http.Handler {
	return s.router
}

// PublishMapCreated announces a new map. Source tells subscribers where it
// came from (api, watch or cli).
func (s *Server) PublishMapCreated(id, source string) error {
	event := pubsub.MapEvent{ID: id, Source: source}
	if m, err := s.store.Get(id); err == nil {
		event.Title = m.Title
		event.NodeCount = len(m.Nodes)
		event.Layout = string(m.Layout)
	}
	return s.publisher.Publish(pubsub.TopicMaps, pubsub.EventMapCreated, event)
}

// PublishMapDeleted announces a removed map
func (s *Server) PublishMapDeleted(id, source string) error {
	return s.publisher.Publish(pubsub.TopicMaps, pubsub.EventMapDeleted, pubsub.MapEvent{ID: id, Source: source})
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/maps", s.handleSubscribeMaps).Methods("GET")

	// API routes - more specific routes must come first
	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/api/maps/{id}/render", s.handleRender).Methods("GET")
	s.router.HandleFunc("/api/maps/{id}", s.handleGetMap).Methods("GET")
	s.router.HandleFunc("/api/maps/{id}", s.handleDeleteMap).Methods("DELETE")
	s.router.HandleFunc("/api/maps", s.handleListMaps).Methods("GET")
	s.router.HandleFunc("/api/maps", s.handleCreateMap).Methods("POST")

	// Standalone radial page for browsers
	s.router.HandleFunc("/maps/{id}", s.handleMapPage).Methods("GET")
}

func (s *Server) handleSubscribeMaps(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	// A reconnecting EventSource sends the last id it saw; only newer
	// events are replayed to it
	since := pubsub.ParseLastEventID(r.Header.Get("Last-Event-ID"))
	if since == 0 {
		since = pubsub.ParseLastEventID(r.URL.Query().Get("lastEventId"))
	}
	sub, err := s.publisher.SubscribeSince(r.Context(), pubsub.TopicMaps, since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	// Stream events until the client goes away or the publisher closes
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "error writing SSE event", "error", err)
				return
			}
			flush(w)
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	layouts := make([]string, len(model.Layouts))
	for i, l := range model.Layouts {
		layouts[i] = string(l)
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		RenderAvailable: s.store.IsAvailable(),
		Schemes:         palette.Names(),
		Layouts:         layouts,
		Formats:         render.Formats,
		Maps:            s.store.Len(),
	})
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed request body: %v", model.ErrInvalidArgument, err))
		return
	}

	id, err := s.store.Create(req.Text, req.Title, req.Layout, req.ColorScheme)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.PublishMapCreated(id, "api"); err != nil {
		logging.WarnContext(r.Context(), "could not publish map event", "mapID", id, "error", err)
	}
	writeJSON(w, http.StatusCreated, CreateResponse{ID: id})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	out, err := s.store.Render(r.Context(), mux.Vars(r)["id"], render.Data{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Export)
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.Delete(id) {
		writeError(w, r, fmt.Errorf("%w: map %q", model.ErrNotFound, id))
		return
	}
	if err := s.PublishMapDeleted(id, "api"); err != nil {
		logging.WarnContext(r.Context(), "could not publish map event", "mapID", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	name := r.URL.Query().Get("format")
	if name == "" {
		name = render.FormatData
	}
	format, err := render.ParseFormat(name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var png bytes.Buffer
	if _, ok := format.(render.GraphImage); ok {
		format = render.GraphImage{Writer: &png}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	out, err := s.store.Render(ctx, id, format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch format.(type) {
	case render.GraphImage:
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png.Bytes())
	case render.Radial:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, out.HTML)
	default:
		writeJSON(w, http.StatusOK, out.Export)
	}
}

func (s *Server) handleMapPage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	out, err := s.store.Render(r.Context(), id, render.Radial{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.store.Get(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(m.Title), out.HTML)
}

// statusFor maps core errors onto HTTP status codes
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest, ""
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, ""
	case errors.Is(err, model.ErrRenderUnavailable):
		return http.StatusServiceUnavailable, "use format=data or format=radial"
	case errors.Is(err, model.ErrBuildFailed):
		return http.StatusUnprocessableEntity, ""
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ""
	}
	return http.StatusInternalServerError, ""
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, hint := statusFor(err)
	if status >= 500 && status != http.StatusServiceUnavailable {
		logging.ErrorContext(r.Context(), "request error", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Hint: hint})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Start starts the web server on the specified port. It blocks until the
// server stops; Shutdown makes it return http.ErrServerClosed.
func (s *Server) Start(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
	return srv.ListenAndServe()
}

// Shutdown stops the server and closes all event streams
func (s *Server) Shutdown(ctx context.Context) error {
	s.publisher.Close()
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
