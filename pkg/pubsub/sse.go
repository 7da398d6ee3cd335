package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/ritzau/concept-mapper/pkg/logging"
)

// ErrClosed is returned once the publisher has been closed
var ErrClosed = errors.New("publisher is closed")

// subscriberBuffer is the channel capacity of every subscription
const subscriberBuffer = 100

// TopicConfig configures the history kept for a topic
type TopicConfig struct {
	BufferSize int  // events kept for replay (0 = none)
	ReplayAll  bool // fresh subscribers get the whole history, otherwise only the newest event
}

// topicState is everything the publisher tracks for one topic
type topicState struct {
	config  TopicConfig
	version int
	history []Event
	subs    map[*feedSubscription]struct{}
}

// replay picks the history a new subscriber receives. A subscriber that
// has seen lastVersion gets what it missed; an unknown version (for example
// from before a restart) is treated as a fresh subscriber.
func (t *topicState) replay(lastVersion int) []Event {
	if len(t.history) == 0 {
		return nil
	}
	if lastVersion > 0 && lastVersion <= t.version {
		for i, e := range t.history {
			if e.Version > lastVersion {
				return t.history[i:]
			}
		}
		return nil
	}
	if t.config.ReplayAll {
		return t.history
	}
	return t.history[len(t.history)-1:]
}

// SSEPublisher is an in-process Publisher whose events are streamed to
// browsers as Server-Sent Events. Versions are per topic and start at 1;
// they double as SSE event ids.
type SSEPublisher struct {
	mu     sync.Mutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a publisher without any topic history
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{topics: make(map[string]*topicState)}
}

// topic returns the state for name, creating it. Callers hold p.mu.
func (p *SSEPublisher) topic(name string) *topicState {
	t, ok := p.topics[name]
	if !ok {
		t = &topicState{subs: make(map[*feedSubscription]struct{})}
		p.topics[name] = t
	}
	return t
}

// ConfigureTopic sets the history kept for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic(topic).config = config
}

// Subscribe starts a fresh subscription with the topic's configured replay
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	return p.SubscribeSince(ctx, topic, 0)
}

// SubscribeSince resumes a subscription after lastVersion. Replay and
// registration happen under one lock, so no event is delivered twice or
// lost in between.
func (p *SSEPublisher) SubscribeSince(ctx context.Context, topic string, lastVersion int) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	t := p.topic(topic)
	sub := &feedSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}

	missed := t.replay(lastVersion)
	for _, e := range missed {
		select {
		case sub.events <- e:
		default:
			logging.Warn("could not replay event to new subscriber", "topic", topic, "version", e.Version)
		}
	}
	if len(missed) > 0 {
		logging.Debug("replayed events to new subscriber", "topic", topic, "since", lastVersion, "count", len(missed))
	}

	t.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return sub, nil
}

// Publish encodes data and fans it out to every subscriber of the topic.
// Slow subscribers lose events instead of blocking the publisher.
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	t := p.topic(topic)
	t.version++
	event := Event{Topic: topic, Type: eventType, Data: payload, Version: t.version}

	if n := t.config.BufferSize; n > 0 {
		t.history = append(t.history, event)
		if len(t.history) > n {
			t.history = append([]Event(nil), t.history[len(t.history)-n:]...)
		}
	}

	for sub := range t.subs {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscription channel full, dropping event", "topic", topic, "type", eventType, "version", event.Version)
		}
	}
	return nil
}

// Close ends every subscription; their event channels are closed
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			close(sub.events)
		}
		t.subs = make(map[*feedSubscription]struct{})
	}
	return nil
}

func (p *SSEPublisher) unsubscribe(sub *feedSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[sub.topic]; ok {
		delete(t.subs, sub)
	}
}

// feedSubscription is one subscriber of an SSEPublisher topic
type feedSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	once      sync.Once
}

func (s *feedSubscription) Events() <-chan Event {
	return s.events
}

func (s *feedSubscription) Close() error {
	s.once.Do(func() { s.publisher.unsubscribe(s) })
	return nil
}

// ParseLastEventID reads the version from a Last-Event-ID header. Anything
// that is not a positive number yields 0.
func ParseLastEventID(value string) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// WriteSSE writes one event frame. The id line lets a reconnecting client
// resume with Last-Event-ID.
func WriteSSE(w io.Writer, event Event) error {
	frame, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Version, event.Type, frame)
	return err
}
