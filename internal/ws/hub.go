package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"social-service/internal/models"
	"social-service/internal/observability"
)

// Hub maintains active chat websocket rooms, keyed by chat document ID.
type Hub struct {
	chatRooms    map[string]map[*websocket.Conn]bool
	chatConnInfo map[string]map[*websocket.Conn]ConnInfo
	mu           sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		chatRooms:    make(map[string]map[*websocket.Conn]bool),
		chatConnInfo: make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddChatClient registers a websocket connection to a chat room.
func (h *Hub) AddChatClient(chatID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.chatRooms[chatID]; !ok {
		h.chatRooms[chatID] = make(map[*websocket.Conn]bool)
	}
	h.chatRooms[chatID][conn] = true
	if _, ok := h.chatConnInfo[chatID]; !ok {
		h.chatConnInfo[chatID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.chatConnInfo[chatID][conn] = info
}

// RemoveChatClient removes a chat websocket connection.
func (h *Hub) RemoveChatClient(chatID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.chatRooms[chatID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.chatRooms, chatID)
		}
	}
	if infos, ok := h.chatConnInfo[chatID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.chatConnInfo, chatID)
		}
	}
}

// BroadcastChatMessage sends a new message to all clients in the chat.
func (h *Hub) BroadcastChatMessage(chatID string, msg models.Message) {
	h.mu.RLock()
	conns := h.chatRooms[chatID]
	h.mu.RUnlock()

	event := models.ChatEvent{Type: "message", ChatID: chatID, Message: &msg}
	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveChatClient(chatID, conn)
			h.publishWSError("chat", chatID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(kind, resourceID string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(resourceID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"resource_id": resourceID,
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
	_ = observability.PublishEvent(context.Background(), "ws_events.chats", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent(kind, "ws_error")
}

func (h *Hub) getConnInfo(chatID string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.chatConnInfo[chatID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
