package models

import "time"

// Chat is a document in the "chats" collection for a private
// conversation between exactly two users. Its ID is derived from the
// two participant UIDs, so the same pair always maps to one document.
type Chat struct {
	ID           string          `firestore:"-" json:"id"`
	Participants []string        `firestore:"participants" json:"participants"`
	LastMessage  string          `firestore:"lastMessage,omitempty" json:"last_message,omitempty"`
	ReadStatus   map[string]bool `firestore:"readStatus,omitempty" json:"read_status,omitempty"`
	UpdatedAt    time.Time       `firestore:"updatedAt,serverTimestamp" json:"updated_at"`
}

// ChatSummary is an inbox row: the chat joined with the counterpart's
// profile and the caller's unread flag.
type ChatSummary struct {
	ChatID          string    `json:"chat_id"`
	FriendID        string    `json:"friend_id"`
	FriendUsername  string    `json:"friend_username"`
	FriendAvatarURL string    `json:"friend_avatar_url"`
	LastMessage     string    `json:"last_message"`
	Unread          bool      `json:"unread"`
	UpdatedAt       time.Time `json:"updated_at"`
}
