package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
	"github.com/kmarankit/Money-Stories-Final/internal/infrastructure"
)

// Handler upgrades HTTP requests and attaches the connection to a hub.
// Clients may pass ?request_id=<id> to receive only that conversion's events.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates the /ws handler. Browser origins are checked against
// allowedOrigins; "*" allows any origin.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.handler"))

	h := &Handler{hub: hub, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			logger.WarnContext(r.Context(), "WebSocket upgrade failed",
				slog.Int("status", status),
				slog.String("error", reason.Error()))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the response.
		return
	}

	requestID := strings.TrimSpace(r.URL.Query().Get("request_id"))
	client := NewClient(h.hub, NewConnectionWrapper(conn), requestID, h.logger)
	h.hub.Register(client)

	go h.pump("write", client.WritePump)
	go h.pump("read", client.ReadPump)
}

func (h *Handler) pump(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("WebSocket pump panicked",
				slog.String("pump", name),
				slog.Any("panic", r))
		}
	}()
	fn()
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			wildcard = true
		}
		if o != "" {
			set[strings.ToLower(o)] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no Origin.
		if origin == "" || wildcard {
			return true
		}
		_, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]
		return ok
	}
}
