package ws

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"grwcomm/internal/models"
	"grwcomm/internal/observability"
)

// ConversationKey names the room for a user pair within one category
// scope. Stable regardless of which participant asks.
func ConversationKey(userA, userB int, categoryID *int) string {
	pair := []int{userA, userB}
	sort.Ints(pair)
	if categoryID == nil {
		return fmt.Sprintf("%d:%d:-", pair[0], pair[1])
	}
	return fmt.Sprintf("%d:%d:%d", pair[0], pair[1], *categoryID)
}

// Hub maintains active websocket rooms, one per conversation.
type Hub struct {
	rooms    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection in a conversation room.
func (h *Hub) AddClient(key string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[key]; !ok {
		h.rooms[key] = make(map[*websocket.Conn]bool)
	}
	h.rooms[key][conn] = true
	if _, ok := h.connInfo[key]; !ok {
		h.connInfo[key] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[key][conn] = info
}

// RemoveClient removes a websocket connection from its room.
func (h *Hub) RemoveClient(key string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, key)
		}
	}
	if infos, ok := h.connInfo[key]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, key)
		}
	}
}

// BroadcastMessage sends a new-message event to everyone in the room.
func (h *Hub) BroadcastMessage(key string, msg models.Message) {
	h.broadcast(key, models.ConversationEvent{Type: "message", Message: &msg})
}

func (h *Hub) broadcast(key string, event models.ConversationEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[key]))
	for conn := range h.rooms[key] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishWSError(key, conn, err)
			h.RemoveClient(key, conn)
		}
	}
}

func (h *Hub) publishWSError(key string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(key, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"room":        key,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id": info.UserID,
			"ip":      info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.conversations", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(key string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[key]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
