package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/pubsub"
)

const (
	keepaliveInterval = 30 * time.Second
	wsWriteWait       = 10 * time.Second
	wsPongWait        = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are already filtered by the CORS layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *APIHandlers) streamOpened(transport string) func() {
	if h.metrics == nil {
		return func() {}
	}
	g := h.metrics.ActiveStreams.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}

// backlog returns the recent events a client asked to replay with ?replay=N
func (h *APIHandlers) backlog(r *http.Request) []pubsub.Event {
	n, err := strconv.Atoi(r.URL.Query().Get("replay"))
	if err != nil || n <= 0 {
		return nil
	}
	return h.pubsub.Recent(n)
}

// EventsSSE provides Server-Sent Events for realtime draft updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)
	defer h.streamOpened("sse")()

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	for _, event := range h.backlog(r) {
		writeSSE(w, event)
	}
	flusher.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			writeSSE(w, event)
			flusher.Flush()
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event pubsub.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn("Failed to encode event", "type", event.Type, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
}

// EventsWS streams draft events over a WebSocket
func (h *APIHandlers) EventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer h.streamOpened("websocket")()

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	// the read loop only handles control frames and notices the client leaving
	done := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(v interface{}) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(v); err != nil {
			logger.Debug("WebSocket write failed", "error", err)
			return false
		}
		return true
	}

	if !send(pubsub.Event{Type: "connected", TS: time.Now().UnixMilli()}) {
		return
	}
	for _, event := range h.backlog(r) {
		if !send(event) {
			return
		}
	}

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case event, ok := <-eventChan:
			if !ok || !send(event) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			logger.Debug("WebSocket client disconnected")
			return
		}
	}
}
