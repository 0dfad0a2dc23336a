// Package notify fans a social event out to the recipient's
// notification inbox and, best effort, their device.
package notify

import (
	"context"
	"fmt"
	"log"

	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

// Notifier persists notifications and dispatches pushes.
type Notifier struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	push          PushSender
}

// NewNotifier constructs a Notifier. push may be nil when pushes are
// disabled; inbox documents are still written.
func NewNotifier(notifications repositories.NotificationRepository, users repositories.UserRepository, push PushSender) *Notifier {
	return &Notifier{notifications: notifications, users: users, push: push}
}

// PostLiked records a like notification for the post owner.
func (n *Notifier) PostLiked(ctx context.Context, actor models.User, post models.Post) {
	n.emit(ctx, post.UserID, actor, models.NotificationLike, "liked your post.", post.ImageURL)
}

// PostCommented records a comment notification for the post owner.
func (n *Notifier) PostCommented(ctx context.Context, actor models.User, post models.Post, text string) {
	msg := fmt.Sprintf("commented: %q", text)
	n.emit(ctx, post.UserID, actor, models.NotificationComment, msg, post.ImageURL)
}

// UserFollowed records a follow notification for the followed user.
func (n *Notifier) UserFollowed(ctx context.Context, actor models.User, targetUID string) {
	n.emit(ctx, targetUID, actor, models.NotificationFollow, "started following you.", "")
}

// emit writes the inbox document and sends the push. Events where the
// actor is also the recipient are dropped. Failures are logged and
// never surface to the mutation that triggered them.
func (n *Notifier) emit(ctx context.Context, recipientUID string, actor models.User, kind, message, postImage string) {
	if recipientUID == "" || recipientUID == actor.UID {
		return
	}

	created, err := n.notifications.Create(ctx, models.Notification{
		RecipientID: recipientUID,
		SenderID:    actor.UID,
		SenderName:  actor.Username,
		Type:        kind,
		Message:     message,
		PostImage:   postImage,
	})
	if err != nil {
		log.Printf("notify: persist %s notification for %s: %v", kind, recipientUID, err)
		return
	}
	observability.NotificationsCreated.WithLabelValues(kind).Inc()

	if n.push == nil {
		return
	}
	recipient, err := n.users.GetUser(ctx, recipientUID)
	if err != nil || recipient.PushToken == "" {
		return
	}
	body := actor.Username + " " + message
	if err := n.push.Send(ctx, recipient.PushToken, pushTitle(kind), body, map[string]string{
		"notificationId": created.ID,
		"type":           kind,
	}); err != nil {
		observability.PushSendFailures.Inc()
		log.Printf("notify: push to %s: %v", recipientUID, err)
	}
}

func pushTitle(kind string) string {
	switch kind {
	case models.NotificationFollow:
		return "New follower"
	case models.NotificationComment:
		return "New comment"
	default:
		return "New like"
	}
}
