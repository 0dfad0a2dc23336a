package models

import "time"

// Message is a document in the "messages" subcollection of a chat.
type Message struct {
	ID        string    `firestore:"-" json:"id"`
	SenderID  string    `firestore:"senderId" json:"sender_id"`
	Text      string    `firestore:"text" json:"text"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
}

// ChatEvent is broadcasted through websockets.
type ChatEvent struct {
	Type    string   `json:"type"`
	ChatID  string   `json:"chat_id,omitempty"`
	Message *Message `json:"message,omitempty"`
}
