package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/observability"
)

const (
	writeTimeout  = 10 * time.Second
	clientBacklog = 64 // per-client buffered events before we drop the client
)

// envelope is the wire shape of one hub message.
type envelope struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
	TimeMs  int64       `json:"time_ms"`
}

// Hub broadcasts market events to websocket subscribers. It implements Sink;
// publishing never blocks: clients that cannot keep up are disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan envelope
}

// NewHub creates a websocket notification hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-process simulation; no cross-origin policy to enforce.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and subscribes the connection to the feed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan envelope, clientBacklog),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	observability.DefaultMetrics.WSClients.Inc()
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects all clients. Safe to call more than once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
		observability.DefaultMetrics.WSClients.Dec()
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(kind string, payload interface{}) {
	env := envelope{
		Kind:    kind,
		Payload: payload,
		TimeMs:  time.Now().UnixMilli(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- env:
		default:
			// Client too slow; drop it rather than block the market.
			close(c.send)
			delete(h.clients, c)
			observability.DefaultMetrics.WSClients.Dec()
		}
	}

	observability.RecordEventPublished(kind)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for env := range c.send {
		data, err := json.Marshal(env)
		if err != nil {
			h.logger.Printf("marshal event: %v", err)
			continue
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
			return
		}
	}
}

// readPump drains client frames so control messages are processed and
// detects disconnects.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
		observability.DefaultMetrics.WSClients.Dec()
	}
	c.conn.Close()
}

// Sink implementation.

func (h *Hub) BigTrade(e domain.BigTradeEvent) {
	h.broadcast(domain.EventBigTrade, e)
}

func (h *Hub) RugPull(e domain.RugPullEvent) {
	h.broadcast(domain.EventRugPull, e)
}

func (h *Hub) PriceAlert(e domain.PriceAlertEvent) {
	h.broadcast(domain.EventPriceAlert, e)
}

func (h *Hub) WhaleAlert(e domain.WhaleAlertEvent) {
	h.broadcast(domain.EventWhaleAlert, e)
}

var _ Sink = (*Hub)(nil)
