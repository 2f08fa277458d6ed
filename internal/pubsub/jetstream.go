package pubsub

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
)

// SubjectFor maps an event type onto a token under the base subject, so
// "draft:pick" on "draft.events" is published to "draft.events.draft_pick"
func SubjectFor(base, eventType string) string {
	token := strings.NewReplacer(":", "_", ".", "_", " ", "_", "*", "_", ">", "_").Replace(eventType)
	if token == "" {
		token = "unknown"
	}
	return base + "." + token
}

// streamOptions describes the JetStream stream backing a bridge
type streamOptions struct {
	subject string
	stream  string
	storage nats.StorageType
	maxAge  time.Duration
}

// jetStream bridges a JetStream stream to local subscriber channels
type jetStream struct {
	nc          *nats.Conn
	js          nats.JetStreamContext
	subject     string
	sub         *nats.Subscription
	subscribers []chan Event
	mu          sync.RWMutex
}

func newJetStream(nc *nats.Conn, opts streamOptions) (*jetStream, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(opts.stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     opts.stream,
			Subjects: []string{opts.subject + ".>"},
			Storage:  opts.storage,
			MaxAge:   opts.maxAge,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
		logger.Info("JetStream stream created", "stream", opts.stream, "subject", opts.subject)
	}

	b := &jetStream{
		nc:          nc,
		js:          js,
		subject:     opts.subject,
		subscribers: make([]chan Event, 0),
	}
	b.sub, err = js.Subscribe(opts.subject+".>", b.deliver, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", opts.subject, err)
	}
	return b, nil
}

func (b *jetStream) deliver(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to unmarshal event from JetStream", "error", err, "subject", msg.Subject)
		msg.Term()
		return
	}

	b.mu.RLock()
	subs := make([]chan Event, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			logger.Warn("JetStream: Skipping slow subscriber", "event_type", event.Type)
		}
	}
	msg.Ack()
}

// Publish publishes an event to the stream
func (b *jetStream) Publish(event Event) {
	if event.TS == 0 {
		event.TS = time.Now().UnixMilli()
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}
	subject := SubjectFor(b.subject, event.Type)
	msg := nats.NewMsg(subject)
	msg.Data = data
	if id := event.SessionID(); id != "" {
		msg.Header.Set("Draft-Session", id)
	}
	if _, err := b.js.PublishMsg(msg); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", subject, "event_type", event.Type)
		return
	}
	logger.Debug("Published event to NATS", "event_type", event.Type, "subject", subject)
}

// Subscribe creates a subscription channel for events
func (b *jetStream) Subscribe() chan Event {
	ch := make(chan Event, 100)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription channel
func (b *jetStream) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SubscribeDurable creates a durable consumer so several workers can share
// the event stream, for example an analytics sink
func (b *jetStream) SubscribeDurable(consumer string, handler func(Event)) error {
	_, err := b.js.Subscribe(b.subject+".>", func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to unmarshal event", "error", err, "consumer", consumer)
			msg.Nak()
			return
		}
		handler(event)
		msg.Ack()
	}, nats.Durable(consumer), nats.ManualAck())
	return err
}

// GetSubscriberCount returns the number of active local subscribers
func (b *jetStream) GetSubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *jetStream) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		b.sub.Unsubscribe()
	}
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
	if b.nc != nil {
		b.nc.Close()
	}
}
