package watcher

import (
	"context"
	"os"
	"time"

	"github.com/ritzau/concept-mapper/pkg/finder"
	"github.com/ritzau/concept-mapper/pkg/logging"
)

// Creator builds and stores a map, returning its id
type Creator interface {
	Create(text, title, layout, scheme string) (string, error)
}

// Regenerator turns debounced input changes into fresh maps. Earlier maps
// are left untouched; every change produces a new id.
type Regenerator struct {
	Creator Creator
	Title   string
	Layout  string
	Scheme  string

	// OnCreated is called for every map built from a change
	OnCreated func(id, path string)
}

// Run consumes events until the channel closes or ctx is cancelled
func (r *Regenerator) Run(ctx context.Context, events <-chan ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.Handle(event)
		}
	}
}

// Handle builds one map per existing path in the event
func (r *Regenerator) Handle(event ChangeEvent) []string {
	var ids []string
	for _, path := range event.Paths {
		if _, err := os.Stat(path); err != nil {
			logging.Debug("skipping vanished input", "path", path)
			continue
		}

		start := time.Now()
		in, err := finder.ReadFile(path)
		if err != nil {
			logging.Warn("could not read changed input", "path", path, "error", err)
			continue
		}

		title := r.Title
		if title == "" {
			title = in.Title
		}

		id, err := r.Creator.Create(in.Text, title, r.Layout, r.Scheme)
		if err != nil {
			logging.Error("failed to rebuild map", "path", path, "error", err)
			continue
		}

		logging.Info("rebuilt map from change", "mapID", id, "path", path,
			"durationMs", time.Since(start).Milliseconds())
		ids = append(ids, id)
		if r.OnCreated != nil {
			r.OnCreated(id, path)
		}
	}
	return ids
}
