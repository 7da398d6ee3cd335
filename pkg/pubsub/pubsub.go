package pubsub

import (
	"context"
	"encoding/json"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "maps")
	Type    string          `json:"type"`    // Event type (e.g., "map_created", "map_deleted")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// SubscribeSince resumes a subscription after the given event version,
	// replaying only the buffered events that came later
	SubscribeSince(ctx context.Context, topic string, lastVersion int) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// TopicMaps carries map lifecycle events
const TopicMaps = "maps"

// Map lifecycle event types
const (
	EventMapCreated = "map_created"
	EventMapDeleted = "map_deleted"
)

// MapEvent is the payload of map lifecycle events
type MapEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	NodeCount int    `json:"node_count,omitempty"`
	Layout    string `json:"layout,omitempty"`
	Source    string `json:"source,omitempty"` // api, watch or cli
}
