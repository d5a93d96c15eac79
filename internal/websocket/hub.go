package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
	"github.com/kmarankit/Money-Stories-Final/internal/infrastructure"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/events"
)

const (
	defaultPongWait   = 60 * time.Second
	broadcastCapacity = 256
)

type envelope struct {
	requestID string
	data      []byte
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	pingPeriod time.Duration
	pongWait   time.Duration

	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	totalConnections int64
	messagesDropped  atomic.Int64
}

// NewHub creates a hub using the keepalive timings in cfg. metrics may be nil.
func NewHub(cfg config.WebSocketConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	// Pings must go out before the peer's read deadline expires.
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = (pongWait * 9) / 10
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan envelope, broadcastCapacity),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start starts the hub's main loop. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop closes every client and waits for the main loop to exit.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })

	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if running {
		<-h.done
	}
}

// Register adds client to the hub. After Stop the client's send channel is
// closed so its write pump exits.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast implements Broadcaster. It never blocks the caller: when the
// queue is full or the hub is stopped the message is dropped.
func (h *Hub) Broadcast(requestID string, data []byte) bool {
	select {
	case <-h.quit:
		return false
	default:
	}

	select {
	case h.broadcast <- envelope{requestID: requestID, data: data}:
		return true
	default:
		h.messagesDropped.Add(1)
		h.logger.Warn("Broadcast queue full, dropping message",
			slog.String("request_id", requestID))
		return false
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DroppedMessages returns how many broadcasts were discarded.
func (h *Hub) DroppedMessages() int64 {
	return h.messagesDropped.Load()
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			h.recordConnections(1)
			h.logger.InfoContext(client.logContext(), "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))
			h.sendConnect(client)

		case client := <-h.unregister:
			if h.remove(client) {
				h.logger.InfoContext(client.logContext(), "Client unregistered",
					slog.String("client_id", client.id),
					slog.Int("total_clients", h.ClientCount()))
			}

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg envelope) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.clients {
		if !client.wants(msg.requestID) {
			continue
		}
		select {
		case client.send <- msg.data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
		h.remove(client)
	}
}

// remove deletes client and closes its send channel. It reports whether the
// client was still registered.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()

	if ok {
		h.recordConnections(-1)
	}
	return ok
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	n := len(h.clients)
	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	if n > 0 {
		h.recordConnections(-int64(n))
	}
}

func (h *Hub) sendConnect(client *Client) {
	msg := events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        client.id,
			Type:      events.MessageTypeConnect,
			Timestamp: time.Now().UTC(),
			TraceID:   client.requestID,
		},
		Data: map[string]string{
			"status":     "connected",
			"client_id":  client.id,
			"request_id": client.requestID,
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode connect message", slog.String("error", err.Error()))
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func (h *Hub) recordConnections(delta int64) {
	if h.metrics == nil || h.metrics.WebSocketConnections == nil {
		return
	}
	h.metrics.WebSocketConnections.Add(context.Background(), delta)
}
