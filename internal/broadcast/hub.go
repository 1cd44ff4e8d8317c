package broadcast

import (
	"context"
	"log"
	"sync"
	"time"
)

const broadcastBuffer = 1000

// Hub tracks connected clients and fans updates out to the ones whose
// subscription matches.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	broadcast  chan Update
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Update, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until the context ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case update := <-h.broadcast:
			h.fanOut(update)
		}
	}
}

// Register adds a client to the hub. After the run loop has stopped, the
// client's send channel is closed instead so its write pump exits.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues an update for fan-out. Updates are dropped when the
// buffer is full; the sequence number lets clients detect the gap.
func (h *Hub) Broadcast(update Update) {
	select {
	case h.broadcast <- update:
	default:
		log.Printf("broadcast: buffer full, dropping update for %s", update.MatchID)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) fanOut(update Update) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	message := ServerMessage{
		Type:      MessageTypeUpdate,
		Update:    &update,
		Timestamp: time.Now().UTC(),
	}
	for _, c := range clients {
		if !c.SubscribedTo(update.MatchID) {
			continue
		}
		if !c.TrySend(message) {
			// Slow consumer: disconnect rather than stall everyone else.
			log.Printf("broadcast: client %s send buffer full, disconnecting", c.ID)
			go h.Unregister(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
