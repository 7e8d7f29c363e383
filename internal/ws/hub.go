package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/billiards/internal/session"
)

// Message is the envelope for everything sent and received.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of connected viewers of the table.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	interval time.Duration
	snapMu   sync.Mutex
	lastSnap time.Time
}

// NewHub creates a hub that forwards at most one snapshot per interval.
func NewHub(interval time.Duration) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		interval:   interval,
	}
}

// Run handles registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.done)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] viewer %s connected (viewers=%d)", c.id, n)

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.id]; ok && cur == c {
				delete(h.clients, c.id)
				close(c.done)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] viewer %s disconnected (viewers=%d)", c.id, n)
		}
	}
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every viewer, dropping it for viewers whose
// buffer is full.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	payload, err := json.Marshal(outbound{Type: msgType, Data: data})
	if err != nil {
		log.Printf("[WS] error: failed to marshal %s message: %v", msgType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			log.Printf("[WS] send buffer full for viewer %s, dropping %s", c.id, msgType)
		}
	}
}

// OnEvent forwards a session event to every viewer.
func (h *Hub) OnEvent(ev session.Event) {
	if h.Count() == 0 {
		return
	}
	h.Broadcast("event", ev)
}

// OnSnapshot forwards a snapshot if the interval has passed since the last one.
func (h *Hub) OnSnapshot(s session.Snapshot) {
	if h.Count() == 0 {
		return
	}
	h.snapMu.Lock()
	now := time.Now()
	due := now.Sub(h.lastSnap) >= h.interval
	if due {
		h.lastSnap = now
	}
	h.snapMu.Unlock()
	if due {
		h.Broadcast("state", s)
	}
}
