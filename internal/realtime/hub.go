// Package realtime pushes booking notifications to connected CRM users over
// WebSocket. Presence is kept in process, so it only covers a single instance.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/kafka"
	"github.com/joyhomes/service-booking/internal/contracts"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Notification is the frame pushed to clients.
type Notification struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// connection is one browser tab of a user.
type connection struct {
	userID uuid.UUID
	role   auth.Role
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks open connections per user.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]map[*connection]struct{}
	logger      *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]map[*connection]struct{}),
		logger:      logger,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.userID]
	if !ok {
		set = make(map[*connection]struct{})
		h.connections[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.connections, c.userID)
	}
}

// OnlineUsers returns the ids of users with at least one open connection.
func (h *Hub) OnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(h.connections))
	for id := range h.connections {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// IsOnline reports whether the user has an open connection.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

// PublishEvent delivers a booking event to the owning sales agent and to every
// connected ADMIN or MANAGER. Events of other topics are ignored.
func (h *Hub) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	if topic != contracts.TopicBookingEvents {
		return nil
	}
	var evt contracts.BookingEvent
	if err := event.ParseData(&evt); err != nil {
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	data, err := json.Marshal(Notification{Type: event.Type, Payload: evt})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, set := range h.connections {
		for c := range set {
			if userID != evt.SalesUserID && c.role != auth.RoleAdmin && c.role != auth.RoleManager {
				continue
			}
			select {
			case c.send <- data:
			default:
				h.logger.Warn("dropping notification for slow client", zap.String("user_id", userID.String()))
			}
		}
	}
	return nil
}

// ServeWS registers the connection and runs its read and write loops.
// It blocks until the client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, userID uuid.UUID, role auth.Role) {
	c := &connection{
		userID: userID,
		role:   role,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)
	h.logger.Debug("websocket connected", zap.String("user_id", userID.String()))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		h.logger.Debug("websocket disconnected", zap.String("user_id", c.userID.String()))
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Clients only send keep-alives; anything else is discarded.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
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
		}
	}
}
