// Package store keeps the mind maps created in this process and renders them
// on demand.
package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ritzau/concept-mapper/pkg/builder"
	"github.com/ritzau/concept-mapper/pkg/logging"
	"github.com/ritzau/concept-mapper/pkg/model"
	"github.com/ritzau/concept-mapper/pkg/render"
)

// IDPrefix prefixes every map id.
const IDPrefix = "mindmap_"

// Summary describes a stored map in listings.
type Summary struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	NodeCount int          `json:"node_count"`
	Layout    model.Layout `json:"layout"`
}

// Store is an in-memory index of maps. Maps are never modified after
// creation; callers get deep copies.
type Store struct {
	builder  *builder.Builder
	renderer *render.Renderer

	mu    sync.RWMutex
	maps  map[string]*model.Map
	order []string
	next  int
}

// New creates an empty store. A nil builder uses default extraction and a
// nil renderer has no rasterizer.
func New(b *builder.Builder, r *render.Renderer) *Store {
	if b == nil {
		b = builder.New(nil)
	}
	if r == nil {
		r = render.NewRenderer(nil, render.Options{})
	}
	return &Store{
		builder:  b,
		renderer: r,
		maps:     make(map[string]*model.Map),
	}
}

// Create builds a map from text and stores it under a new id, starting at
// mindmap_1. Nothing is stored when building fails.
func (s *Store) Create(text, title, layout, scheme string) (string, error) {
	m, err := s.builder.Build(text, title, layout, scheme)
	if err != nil {
		logging.Warn("map creation failed", "title", title, "error", err)
		return "", err
	}

	id := s.add(m)
	logging.Info("map created", "mapID", id, "title", m.Title, "nodes", len(m.Nodes))
	return id, nil
}

// Import stores a map restored from a data export under a new id. The
// snapshot must describe a valid tree; otherwise nothing is stored.
func (s *Store) Import(e *render.Export) (string, error) {
	m, err := render.FromExport(e)
	if err != nil {
		logging.Warn("map import failed", "title", e.Title, "error", err)
		return "", err
	}

	id := s.add(m)
	logging.Info("map imported", "mapID", id, "title", m.Title, "nodes", len(m.Nodes))
	return id, nil
}

func (s *Store) add(m *model.Map) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := IDPrefix + strconv.Itoa(s.next)
	s.maps[id] = m
	s.order = append(s.order, id)
	return id
}

// Get returns a copy of the map with the given id.
func (s *Store) Get(id string) (*model.Map, error) {
	m, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

func (s *Store) lookup(id string) (*model.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.maps[id]
	if !ok {
		return nil, fmt.Errorf("%w: map %q", model.ErrNotFound, id)
	}
	return m, nil
}

// List summarises all maps in creation order.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		m := s.maps[id]
		out = append(out, Summary{
			ID:        id,
			Title:     m.Title,
			NodeCount: len(m.Nodes),
			Layout:    m.Layout,
		})
	}
	return out
}

// Delete removes a map and reports whether it existed. Ids are not reused.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.maps[id]; !ok {
		return false
	}
	delete(s.maps, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	logging.Info("map deleted", "mapID", id)
	return true
}

// Len returns the number of stored maps.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.maps)
}

// IsAvailable reports whether graph images can be rendered. Maps can be
// created and rendered in the other formats either way.
func (s *Store) IsAvailable() bool {
	return s.renderer.Available()
}

// Render renders the map with the given id. Stored maps are immutable, so
// renders run without holding the lock.
func (s *Store) Render(ctx context.Context, id string, f render.Format) (render.Output, error) {
	m, err := s.lookup(id)
	if err != nil {
		return render.Output{}, err
	}
	return s.renderer.Render(ctx, m, f)
}
