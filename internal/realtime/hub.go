// Package realtime pushes server events to connected WebSocket clients.
//
// A client opens /ws and sends {"event":"register-user","data":"<userId>"} to
// bind the connection to a user. The Hub keeps the local connections; a
// SessionRegistry records which instance holds each user's session so that a
// Notifier running anywhere can reach it.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBuffer     = 256
)

// Frame is the envelope of every message on the socket.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame marshals data into a frame.
func NewFrame(event string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: raw}, nil
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	closed bool
}

// Hub tracks the WebSocket connections held by this instance.
type Hub struct {
	instanceID string
	registry   SessionRegistry
	upgrader   websocket.Upgrader
	logger     zerolog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	users   map[string]*client
}

// NewHub creates a hub that records registrations in registry under instanceID.
func NewHub(instanceID string, registry SessionRegistry, logger zerolog.Logger) *Hub {
	return &Hub{
		instanceID: instanceID,
		registry:   registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger.With().Str("component", "realtime-hub").Logger(),
		clients: make(map[*client]struct{}),
		users:   make(map[string]*client),
	}
}

// InstanceID identifies this process in the session registry.
func (h *Hub) InstanceID() string { return h.instanceID }

// ServeHTTP upgrades the request to a WebSocket connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("connections", total).Msg("client connected")

	go c.writePump()
	go c.readPump()
}

// Sessions returns the number of connections bound to a user.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users)
}

// Connections returns the number of open connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver sends frame to the connection registered for userID. It reports
// false when this instance holds no such session or its buffer is full.
func (h *Hub) Deliver(userID string, frame Frame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().Err(err).Str("event", frame.Event).Msg("failed to encode frame")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.users[userID]
	if !ok {
		return false
	}
	return c.trySend(data)
}

// Broadcast sends frame to every open connection and returns how many accepted it.
func (h *Hub) Broadcast(frame Frame) int {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().Err(err).Str("event", frame.Event).Msg("failed to encode frame")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.clients {
		if c.trySend(data) {
			sent++
		}
	}
	return sent
}

// Relay delivers an envelope received from another instance.
func (h *Hub) Relay(env Envelope) {
	if env.Origin == h.instanceID {
		return
	}

	if env.Target == "" {
		h.Broadcast(env.Frame)
		return
	}
	if env.Target != h.instanceID {
		return
	}
	if !h.Deliver(env.UserID, env.Frame) {
		h.logger.Warn().
			Str("user_id", env.UserID).
			Str("event", env.Frame.Event).
			Msg("relayed event for a session no longer held here")
	}
}

func (h *Hub) bind(ctx context.Context, c *client, userID string) {
	h.mu.Lock()
	if c.closed {
		h.mu.Unlock()
		return
	}
	if c.userID != "" && c.userID != userID && h.users[c.userID] == c {
		delete(h.users, c.userID)
	}
	c.userID = userID
	h.users[userID] = c
	h.mu.Unlock()

	if err := h.registry.Register(ctx, userID, h.instanceID); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record session")
		return
	}
	h.logger.Info().Str("user_id", userID).Msg("user session registered")
}

// refresh extends the registry lease of a bound connection.
func (h *Hub) refresh(c *client) {
	h.mu.RLock()
	userID := ""
	if h.users[c.userID] == c {
		userID = c.userID
	}
	h.mu.RUnlock()

	if userID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := h.registry.Register(ctx, userID, h.instanceID); err != nil {
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to refresh session")
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if c.closed {
		h.mu.Unlock()
		return
	}
	c.closed = true
	delete(h.clients, c)
	close(c.send)

	released := ""
	if c.userID != "" && h.users[c.userID] == c {
		delete(h.users, c.userID)
		released = c.userID
	}
	h.mu.Unlock()

	if released == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := h.registry.Unregister(ctx, released, h.instanceID); err != nil {
		h.logger.Warn().Err(err).Str("user_id", released).Msg("failed to release session")
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c.conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		_ = conn.Close()
	}
}

// trySend must be called with the hub lock held.
func (c *client) trySend(data []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) handle(raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.hub.logger.Debug().Err(err).Msg("ignoring malformed frame")
		return
	}

	switch frame.Event {
	case model.EventRegisterUser:
		var userID string
		if err := json.Unmarshal(frame.Data, &userID); err != nil {
			c.hub.logger.Debug().Err(err).Msg("register-user frame without a user id")
			return
		}
		if _, err := uuid.Parse(userID); err != nil {
			c.hub.logger.Debug().Str("user_id", userID).Msg("register-user frame with invalid user id")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		c.hub.bind(ctx, c, userID)
	default:
		c.hub.logger.Debug().Str("event", frame.Event).Msg("ignoring unknown event")
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Msg("unexpected websocket close")
			}
			return
		}
		c.handle(msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.hub.refresh(c)
		}
	}
}
