package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/enrich"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

// NotificationHandler manages the notification inbox endpoints.
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
	joiner           *enrich.Joiner
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notificationRepo repositories.NotificationRepository, joiner *enrich.Joiner) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo, joiner: joiner}
}

// ListNotifications returns the caller's notifications, newest first,
// joined with each sender's current username and avatar, and marks the
// unread ones read. Opening the screen is what "read" means here.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	uid := c.GetString("userID")

	items, err := h.notificationRepo.ListForRecipient(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	senderIDs := make([]string, 0, len(items))
	for _, n := range items {
		senderIDs = append(senderIDs, n.SenderID)
	}
	senders, err := h.joiner.Authors(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
		return
	}

	views := make([]models.NotificationView, 0, len(items))
	for i, n := range items {
		displayName := senders[i].Username
		if displayName == enrich.PlaceholderUsername {
			displayName = n.SenderName
		}
		views = append(views, models.NotificationView{
			Notification:      n,
			SenderDisplayName: displayName,
			SenderAvatarURL:   senders[i].AvatarURL,
		})
		if !n.IsRead {
			// best effort, unread state recovers on the next open
			_ = h.notificationRepo.MarkRead(c.Request.Context(), n.ID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"notifications": views})
}
