package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"communication-service/internal/models"
	"communication-service/internal/observability"
)

// ConnInfo carries the identity and correlation ids of one live connection,
// captured at handshake time for lifecycle events.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// Hub maintains active websocket connections per chat room.
type Hub struct {
	rooms    map[int]map[*websocket.Conn]bool
	connInfo map[int]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[int]map[*websocket.Conn]bool),
		connInfo: make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddRoomClient registers a websocket connection to a room.
func (h *Hub) AddRoomClient(roomID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[roomID][conn] = true
	if _, ok := h.connInfo[roomID]; !ok {
		h.connInfo[roomID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[roomID][conn] = info
}

// RemoveRoomClient removes a room websocket connection.
func (h *Hub) RemoveRoomClient(roomID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
	if infos, ok := h.connInfo[roomID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, roomID)
		}
	}
}

// Online reports the number of live connections in a room.
func (h *Hub) Online(roomID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastRoomMessage sends a new message to all clients in a room.
func (h *Hub) BroadcastRoomMessage(roomID int, msg models.Message) {
	h.mu.RLock()
	conns := h.rooms[roomID]
	h.mu.RUnlock()

	event := models.RoomEvent{Type: "message", Message: &msg}
	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn().Err(err).Int("room_id", roomID).Msg("websocket write error")
			conn.Close()
			h.RemoveRoomClient(roomID, conn)
			h.publishWSError(roomID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(roomID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(roomID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"room_id":     roomID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.rooms", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(roomID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[roomID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
