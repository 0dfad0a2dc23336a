package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"social-service/internal/live"
	"social-service/internal/middleware"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

// NotificationWebSocketHandler streams the caller's unread
// notification count for the tab badge.
type NotificationWebSocketHandler struct {
	notificationRepo repositories.NotificationRepository
	verifier         middleware.TokenVerifier
}

// NewNotificationWebSocketHandler constructs a NotificationWebSocketHandler.
func NewNotificationWebSocketHandler(notificationRepo repositories.NotificationRepository, verifier middleware.TokenVerifier) *NotificationWebSocketHandler {
	return &NotificationWebSocketHandler{notificationRepo: notificationRepo, verifier: verifier}
}

// Handle upgrades the connection and pushes the unread count on every
// change to the caller's unread notifications.
func (h *NotificationWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("social-service/ws").Start(c.Request.Context(), "ws.notifications")
	defer span.End()

	uid, err := authorizeWS(ctx, c, h.verifier)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	sub := live.Subscribe(streamCtx, h.notificationRepo.UnreadQuery(uid))
	observability.IncLiveSubscriptions()
	observability.IncWSActive("notifications")

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			cancel()
			sub.Unsubscribe()
			observability.DecLiveSubscriptions()
			observability.DecWSActive("notifications")
			conn.Close()
		}()
		for {
			docs, ok := sub.Next(streamCtx)
			if !ok {
				return
			}
			event := models.NotificationEvent{Type: "unread_count", UnreadCount: len(docs)}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			observability.IncWSEvent("notifications", "badge_push")
		}
	}()
}
