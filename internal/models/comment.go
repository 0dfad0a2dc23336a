package models

import "time"

// Comment is a document in the "comments" subcollection of a post.
type Comment struct {
	ID        string    `firestore:"-" json:"id"`
	UserID    string    `firestore:"userId" json:"user_id"`
	Username  string    `firestore:"username" json:"username"`
	Text      string    `firestore:"text" json:"text"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
}

// CommentView is a comment joined with the author's current profile.
type CommentView struct {
	Comment
	AvatarURL string `json:"avatar_url"`
}

// CommentThreadEvent is emitted over WebSocket connections streaming an
// open comment thread.
type CommentThreadEvent struct {
	Type     string    `json:"type"`
	PostID   string    `json:"post_id"`
	Comments []Comment `json:"comments"`
}
