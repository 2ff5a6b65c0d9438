package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sweeney/button-monitor/internal/monitor"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// eventJSON is the wire form of a button event on the websocket stream.
type eventJSON struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Pin       int    `json:"pin"`
}

// Hub fans accepted button events out to connected websocket clients.
// Slow clients have events dropped rather than blocking the broadcaster.
type Hub struct {
	log *zap.SugaredLogger

	mu      sync.Mutex
	clients map[chan monitor.Event]struct{}
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.SugaredLogger) *Hub {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Hub{
		log:     logger,
		clients: make(map[chan monitor.Event]struct{}),
	}
}

// Broadcast delivers evt to every connected client. Never blocks: a client
// whose buffer is full misses the event.
func (h *Hub) Broadcast(evt monitor.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}

// ClientCount returns the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(ch chan monitor.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
}

func (h *Hub) unregister(ch chan monitor.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
}

// handleEvents upgrades the connection and streams button events as JSON
// text messages until the client goes away.
func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	ch := make(chan monitor.Event, 8)
	h.register(ch)
	defer h.unregister(ch)

	h.log.Debugf("web: websocket client connected from %s", r.RemoteAddr)

	for evt := range ch {
		msg, err := json.Marshal(eventJSON{
			Timestamp: evt.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(evt.Type),
			Pin:       evt.Pin,
		})
		if err != nil {
			h.log.Warnf("web: marshal event: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debugf("web: websocket client %s gone: %v", r.RemoteAddr, err)
			return
		}
	}
}
