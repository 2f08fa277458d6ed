package pubsub

import (
	"testing"
	"time"
)

func newEmbedded(t *testing.T) *EmbeddedNATSPubSub {
	t.Helper()
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	t.Cleanup(ps.Close)
	return ps
}

func TestSubjectFor(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
	}{
		{"draft:pick", "draft.events.draft_pick"},
		{"roster:move", "draft.events.roster_move"},
		{"a.b>*", "draft.events.a_b__"},
		{"", "draft.events.unknown"},
	}
	for _, tt := range tests {
		if got := SubjectFor("draft.events", tt.eventType); got != tt.want {
			t.Errorf("SubjectFor(%q) = %q, want %q", tt.eventType, got, tt.want)
		}
	}
}

func TestEmbeddedNATSStarts(t *testing.T) {
	ps := newEmbedded(t)
	if ps.server == nil || ps.nc == nil || ps.js == nil {
		t.Fatal("embedded server, connection and JetStream context should all be set")
	}
	if ps.GetServerURL() == "" {
		t.Error("server URL should not be empty")
	}
}

func TestEmbeddedNATSPublishAndReceive(t *testing.T) {
	ps := newEmbedded(t)
	ch := ps.Subscribe()
	if ps.GetSubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", ps.GetSubscriberCount())
	}

	ps.Publish(Event{
		Type:    "draft:pick",
		Payload: map[string]interface{}{"sessionId": "s1", "pickNumber": 3},
	})

	select {
	case got := <-ch:
		if got.Type != "draft:pick" {
			t.Errorf("expected draft:pick, got %s", got.Type)
		}
		if got.SessionID() != "s1" {
			t.Errorf("expected session s1, got %q", got.SessionID())
		}
		// JSON numbers decode as float64
		if got.Payload["pickNumber"] != float64(3) {
			t.Errorf("unexpected pick number %v", got.Payload["pickNumber"])
		}
		if got.TS == 0 {
			t.Error("expected timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEmbeddedNATSAsUpstream(t *testing.T) {
	up := newEmbedded(t)
	ps := NewWithUpstream(up)

	deadline := time.Now().Add(time.Second)
	for up.GetSubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ch := ps.Subscribe()
	ps.Notify("draft:start", map[string]interface{}{"sessionId": "s2"})

	select {
	case got := <-ch:
		if got.Type != "draft:start" {
			t.Errorf("expected draft:start, got %s", got.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for upstream event")
	}
}

func TestEmbeddedNATSUnsubscribe(t *testing.T) {
	ps := newEmbedded(t)
	ch := ps.Subscribe()
	ps.Unsubscribe(ch)

	if ps.GetSubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", ps.GetSubscriberCount())
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}

func TestDefaultEmbeddedNATSOptions(t *testing.T) {
	opts := DefaultEmbeddedNATSOptions()
	if opts.Port != -1 {
		t.Errorf("expected port -1, got %d", opts.Port)
	}
	if opts.Subject != "draft.events" {
		t.Errorf("expected subject draft.events, got %s", opts.Subject)
	}
	if opts.StreamName != "DRAFT_EVENTS" {
		t.Errorf("expected stream DRAFT_EVENTS, got %s", opts.StreamName)
	}
}
