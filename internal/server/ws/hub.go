// Package ws implements the WebSocket broadcast boundary: a hub that fans
// each tick's snapshot out to all live subscribers, sends a one-time
// initial payload on connect, and answers any inbound client frame with a
// pong carrying the current timestamp.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/astrosignal/astroalert/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 64

	// pongBufferSize is the channel buffer for queued pong replies.
	pongBufferSize = 8
)

// upgrader configures the WebSocket upgrade parameters.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins. In production, restrict this to known origins.
		return true
	},
}

// SnapshotSource provides the current snapshot for the initial payload sent
// to a freshly connected subscriber.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// client represents a single WebSocket subscriber. The send channel carries
// hub-originated payloads and is written and closed only by the hub loop;
// the pong channel carries readPump's liveness replies. writePump is the
// sole writer on the connection.
type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	pong chan []byte
}

// updateMessage is the envelope for the initial and per-tick payloads.
type updateMessage struct {
	Type    string               `json:"type"`
	Objects []domain.SpaceObject `json:"objects"`
	Alerts  []domain.Alert       `json:"alerts"`
}

// pongMessage is the liveness reply to any inbound subscriber frame.
type pongMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// Hub manages the set of connected subscribers and broadcasts each tick's
// snapshot to all of them. A slow or failed subscriber never stalls
// delivery to the rest: each client has its own buffered send channel, and
// removal happens through the hub loop, never mid-broadcast.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	source     SnapshotSource
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewHub creates a hub that serves initial payloads from the given source.
func NewHub(source SnapshotSource, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		source:     source,
		logger:     logger.With(slog.String("component", "ws_hub")),
	}
}

// Run starts the hub's main event loop. It should be called in a goroutine;
// it exits when the provided context is cancelled. On exit it closes the
// done channel first, so pumps and in-flight upgrades stop queueing against
// the loop, then closes every client's send channel to end their writePumps.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			// Queue the one-time initial payload here, before any later
			// broadcast is processed, so a subscriber never sees an
			// update ahead of its initial state.
			h.queueInitial(c)
			h.logger.Info("subscriber connected",
				slog.String("client_id", c.id),
				slog.Int("total_clients", h.ClientCount()),
			)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("subscriber disconnected",
				slog.String("client_id", c.id),
				slog.Int("total_clients", h.ClientCount()),
			)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Client's send buffer is full; drop the message.
					h.logger.Warn("dropping update for slow subscriber",
						slog.String("client_id", c.id),
					)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PushUpdate broadcasts the snapshot to all subscribers as an "update"
// envelope. It implements the scheduler's snapshot sink.
func (h *Hub) PushUpdate(ctx context.Context, snap domain.Snapshot) {
	data, err := json.Marshal(updateMessage{
		Type:    "update",
		Objects: snap.Objects,
		Alerts:  snap.Alerts,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "marshal update failed",
			slog.String("error", err.Error()),
		)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full, dropping update")
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection, registers the
// subscriber, and starts its pumps. If the hub has already shut down the
// connection is closed immediately.
// GET /ws/orbits
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		pong: make(chan []byte, pongBufferSize),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of currently connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// queueInitial puts the one-time initial payload on the client's send
// channel so a new subscriber has the full object and alert state before
// the next tick arrives. Called only from the hub loop.
func (h *Hub) queueInitial(c *client) {
	snap := h.source.Snapshot()
	data, err := json.Marshal(updateMessage{
		Type:    "initial",
		Objects: snap.Objects,
		Alerts:  snap.Alerts,
	})
	if err != nil {
		return
	}

	select {
	case c.send <- data:
	default:
	}
}

// readPump reads frames from the connection. Every inbound message, whatever
// its content, is answered with a pong envelope carrying the current
// timestamp; it is a connectivity probe with no semantic content. The reply
// goes through the client's pong channel so this goroutine never writes to
// the connection or to the hub-owned send channel.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected close",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		pong, err := json.Marshal(pongMessage{
			Type:      "pong",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			continue
		}
		select {
		case c.pong <- pong:
		default:
		}
	}
}

// writePump pumps hub payloads and queued pong replies to the connection,
// with periodic ping frames for keepalive. A write error ends the pump,
// which closes the connection and lets readPump unregister the subscriber.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case pong := <-c.pong:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, pong); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
