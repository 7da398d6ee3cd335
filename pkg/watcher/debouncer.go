package watcher

import (
	"context"
	"time"

	"github.com/ritzau/concept-mapper/pkg/logging"
)

// Debouncer batches rapid change events so that a burst of saves rebuilds
// once. Paths are deduplicated and keep first-seen order.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A batch is released after
// quietPeriod without new events, or maxWait after its first event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	var (
		quiet     <-chan time.Time
		deadline  <-chan time.Time
		paths     []string
		seen      = make(map[string]bool)
		batchSize int
	)

	flush := func() {
		quiet, deadline = nil, nil
		if len(paths) == 0 {
			return
		}
		logging.Debug("flushing accumulated events", "count", batchSize, "paths", len(paths))
		select {
		case d.output <- ChangeEvent{Paths: paths, Timestamp: time.Now()}:
		case <-ctx.Done():
		}
		paths = nil
		seen = make(map[string]bool)
		batchSize = 0
	}

	defer close(d.output)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			for _, p := range event.Paths {
				if !seen[p] {
					seen[p] = true
					paths = append(paths, p)
				}
			}
			batchSize++

			quiet = time.After(d.quietPeriod)
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
