// Package pubsub fans draft events out to in-process subscribers (SSE,
// WebSocket and gRPC streams) and, optionally, across instances via NATS.
package pubsub

import (
	"sync"
	"time"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
)

const defaultRecent = 200

// Event represents a pubsub event
type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	TS      int64                  `json:"ts"`
}

// SessionID returns the draft session the event belongs to, if any
func (e Event) SessionID() string {
	id, _ := e.Payload["sessionId"].(string)
	return id
}

// Upstream is an interface for upstream publishers (e.g., NATS)
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// PubSub implements a simple publish-subscribe system and keeps a short
// backlog so late stream subscribers can catch up
type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream
	recent      []Event
	maxRecent   int
}

// New creates a new PubSub instance
func New() *PubSub {
	return &PubSub{
		subscribers: []chan Event{},
		maxRecent:   defaultRecent,
	}
}

// NewWithUpstream creates a PubSub that bridges to an upstream publisher.
// Publish goes to the upstream, which broadcasts back to every instance;
// upstream events are forwarded to local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := New()
	ps.upstream = upstream

	go func() {
		ch := upstream.Subscribe()
		logger.Debug("PubSub: Subscribed to upstream, waiting for events")
		for event := range ch {
			ps.publishLocal(event)
		}
		logger.Debug("PubSub: Upstream channel closed")
	}()

	return ps
}

// Subscribe adds a new subscriber and returns a channel for receiving events
func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, 64)
	ps.subscribers = append(ps.subscribers, ch)
	logger.Debug("PubSub: New subscriber added", "totalSubscribers", len(ps.subscribers))
	return ch
}

// Unsubscribe removes a subscriber
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			break
		}
	}
}

// SubscriberCount returns the number of local subscribers
func (ps *PubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers)
}

// Publish sends an event to all subscribers, through the upstream when one
// is configured
func (ps *PubSub) Publish(event Event) {
	if event.TS == 0 {
		event.TS = time.Now().UnixMilli()
	}
	if ps.upstream != nil {
		logger.Debug("PubSub: Forwarding to upstream", "type", event.Type)
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

// Notify publishes a draft session event. Its signature matches the draft
// session notifier.
func (ps *PubSub) Notify(eventType string, payload map[string]interface{}) {
	ps.Publish(Event{Type: eventType, Payload: payload})
}

// Recent returns up to n of the latest events, oldest first
func (ps *PubSub) Recent(n int) []Event {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	if n <= 0 || n > len(ps.recent) {
		n = len(ps.recent)
	}
	return append([]Event(nil), ps.recent[len(ps.recent)-n:]...)
}

// publishLocal sends an event to local subscribers only
func (ps *PubSub) publishLocal(event Event) {
	ps.mu.Lock()
	ps.recent = append(ps.recent, event)
	if len(ps.recent) > ps.maxRecent {
		ps.recent = ps.recent[len(ps.recent)-ps.maxRecent:]
	}
	subs := make([]chan Event, len(ps.subscribers))
	copy(subs, ps.subscribers)
	ps.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			logger.Warn("PubSub: Skipping slow subscriber", "type", event.Type)
		}
	}
}
