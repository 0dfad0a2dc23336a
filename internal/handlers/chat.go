package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/enrich"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
	"social-service/internal/ws"
)

// ChatHandler manages private chat endpoints.
type ChatHandler struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	joiner      *enrich.Joiner
	hub         *ws.Hub
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, joiner *enrich.Joiner, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		joiner:      joiner,
		hub:         hub,
	}
}

// ListChats returns the caller's inbox, most recently active first,
// each row joined with the counterpart's profile and the caller's
// unread flag.
func (h *ChatHandler) ListChats(c *gin.Context) {
	uid := c.GetString("userID")

	chats, err := h.chatRepo.ListChats(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}

	friendIDs := make([]string, 0, len(chats))
	for _, chat := range chats {
		friendIDs = append(friendIDs, counterpart(chat, uid))
	}
	friends, err := h.joiner.Authors(c.Request.Context(), friendIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user info"})
		return
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for i, chat := range chats {
		summaries = append(summaries, models.ChatSummary{
			ChatID:          chat.ID,
			FriendID:        friends[i].UID,
			FriendUsername:  friends[i].Username,
			FriendAvatarURL: friends[i].AvatarURL,
			LastMessage:     chat.LastMessage,
			Unread:          !chat.ReadStatus[uid] && chat.LastMessage != "",
			UpdatedAt:       chat.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"chats": summaries})
}

// StartChat opens (or returns) the chat between the caller and a
// friend. Both orderings of the pair land on the same chat document.
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req struct {
		FriendID string `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid := c.GetString("userID")
	if uid == req.FriendID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	chat, err := h.chatRepo.EnsureChat(c.Request.Context(), uid, req.FriendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID})
}

// GetChatMessages returns the chat history and clears the caller's
// unread flag, since opening the conversation is what "read" means.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	chatID := c.Param("chat_id")
	uid := c.GetString("userID")

	chat, err := h.chatRepo.GetChat(c.Request.Context(), chatID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChatNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat not found"})
		return
	}
	if !isChatParticipant(chat, uid) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat member"})
		return
	}

	msgs, err := h.messageRepo.GetChatMessages(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	if !chat.ReadStatus[uid] {
		// best effort, the badge recovers on the next open
		_ = h.chatRepo.MarkRead(c.Request.Context(), chatID, uid)
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostChatMessage stores a chat message, updates the chat preview and
// read flags in one write, and broadcasts to the open conversation.
func (h *ChatHandler) PostChatMessage(c *gin.Context) {
	chatID := c.Param("chat_id")
	uid := c.GetString("userID")

	chat, err := h.chatRepo.GetChat(c.Request.Context(), chatID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChatNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat not found"})
		return
	}
	if !isChatParticipant(chat, uid) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat member"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.CreateChatMessage(c.Request.Context(), chatID, uid, req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	if err := h.chatRepo.TouchOnMessage(c.Request.Context(), chatID, uid, counterpart(chat, uid), req.Text); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update chat"})
		return
	}

	h.hub.BroadcastChatMessage(chatID, msg)
	_ = observability.PublishEvent(c.Request.Context(), observability.EventMessageSent, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "message_sent",
		Payload:   gin.H{"chat_id": chatID, "message_id": msg.ID, "user_id": uid},
	}, observability.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusCreated, msg)
}

func isChatParticipant(chat models.Chat, uid string) bool {
	return contains(chat.Participants, uid)
}

func counterpart(chat models.Chat, uid string) string {
	for _, id := range chat.Participants {
		if id != uid {
			return id
		}
	}
	return ""
}
