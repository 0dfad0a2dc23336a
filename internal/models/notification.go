package models

import "time"

// Notification types stored in the "type" field.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification is a document in the "notifications" collection. The
// sender's username is denormalized so the inbox renders without a
// join even if the sender account later disappears.
type Notification struct {
	ID          string    `firestore:"-" json:"id"`
	RecipientID string    `firestore:"recipientId" json:"recipient_id"`
	SenderID    string    `firestore:"senderId" json:"sender_id"`
	SenderName  string    `firestore:"senderName" json:"sender_name"`
	Type        string    `firestore:"type" json:"type"`
	Message     string    `firestore:"message" json:"message"`
	PostImage   string    `firestore:"postImage,omitempty" json:"post_image,omitempty"`
	IsRead      bool      `firestore:"isRead" json:"is_read"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
}

// NotificationView is a notification joined with the sender's current
// profile for display. SenderDisplayName tracks renames; it falls back
// to the denormalized SenderName when the sender's profile is gone.
type NotificationView struct {
	Notification
	SenderDisplayName string `json:"sender_display_name"`
	SenderAvatarURL   string `json:"sender_avatar_url"`
}

// NotificationEvent is emitted over WebSocket connections streaming
// the unread badge count.
type NotificationEvent struct {
	Type        string `json:"type"`
	UnreadCount int    `json:"unread_count"`
}
