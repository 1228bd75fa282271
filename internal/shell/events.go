package shell

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/MFE-Works/shell_layer/internal/boundary"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

// EventHub fans boundary state transitions out to websocket subscribers,
// so a developer can watch remotes load and fail live.
type EventHub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan boundary.Event
	closed  bool
}

// NewEventHub creates an empty hub.
func NewEventHub(log *logger.Logger) *EventHub {
	if log == nil {
		log = logger.NewDefault("events")
	}
	return &EventHub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local development tool; the shell and its assets live on
			// different localhost ports.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan boundary.Event),
	}
}

// Broadcast queues an event for every connected subscriber. Slow
// subscribers drop events rather than stall the boundary.
func (h *EventHub) Broadcast(evt boundary.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}

// ServeHTTP upgrades the request and streams events until the peer goes
// away.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	ch := make(chan boundary.Event, 16)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[conn] = ch
	h.mu.Unlock()

	go h.writePump(conn, ch)
	h.readPump(conn)
}

func (h *EventHub) writePump(conn *websocket.Conn, ch chan boundary.Event) {
	for evt := range ch {
		if err := conn.WriteJSON(evt); err != nil {
			h.drop(conn)
			return
		}
	}
	_ = conn.Close()
}

// readPump discards inbound frames; its job is to notice the close.
func (h *EventHub) readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *EventHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	if ok {
		close(ch)
	}
	_ = conn.Close()
}

// Close disconnects every subscriber.
func (h *EventHub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]chan boundary.Event)
	h.closed = true
	h.mu.Unlock()

	for conn, ch := range clients {
		close(ch)
		_ = conn.Close()
	}
}
