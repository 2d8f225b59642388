package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/infra"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = (pongTimeout * 9) / 10
	sendBuffer   = 64
)

// Encoder turns a trade into one websocket text message.
type Encoder func(domain.Trade) ([]byte, error)

// Hub broadcasts every recorded trade to the connected websocket clients.
// A client whose buffer is full is dropped rather than slowing the engine.
type Hub struct {
	encode   Encoder
	metrics  *infra.Metrics
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	writeMu sync.Mutex
	once    sync.Once
}

var _ domain.TradePublisher = (*Hub)(nil)

// NewHub creates a hub. A nil encoder marshals the trade with encoding/json.
func NewHub(encode Encoder, metrics *infra.Metrics) *Hub {
	if encode == nil {
		encode = func(t domain.Trade) ([]byte, error) { return json.Marshal(t) }
	}
	if metrics == nil {
		metrics = infra.NewMetrics()
	}
	return &Hub{
		encode:  encode,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// PublishTrade implements domain.TradePublisher. It never blocks.
func (h *Hub) PublishTrade(trade domain.Trade) {
	msg, err := h.encode(trade)
	if err != nil {
		slog.Error("Failed to encode trade", slog.String("trade_id", trade.ID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slog.Warn("Trade stream client too slow, dropping", slog.String("remote", c.conn.RemoteAddr().String()))
			go h.remove(c)
		}
	}
}

// ServeWS upgrades the request and streams trades until the client leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		slog.Warn("Trade stream upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if err := h.add(c); err != nil {
		_ = c.threadSafeWrite(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	slog.Info("Trade stream client connected", slog.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	h.readLoop(c)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.threadSafeWrite(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		h.remove(c)
	}
}

func (h *Hub) add(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("hub closed")
	}
	h.clients[c] = struct{}{}
	h.metrics.IncrementStreams()
	return nil
}

func (h *Hub) remove(c *client) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()

		close(c.send)
		c.conn.Close()
		h.metrics.DecrementStreams()
	})
}

// readLoop discards inbound messages and detects disconnects.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Trade stream read error", slog.Any("error", err))
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.threadSafeWrite(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			if err := c.threadSafeWrite(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// threadSafeWrite sends a message to the WebSocket connection in a thread-safe manner
func (c *client) threadSafeWrite(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}
