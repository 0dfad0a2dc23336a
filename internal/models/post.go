package models

import "time"

// Post kinds stored in the "type" field of a post document.
const (
	PostKindWall  = "wall"
	PostKindStory = "story"
)

// Media types accepted for post uploads.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Post is a document in the "posts" collection. Author username and
// avatar are denormalized at creation time so feed rows render without
// a join; the canonical values live on the user document.
type Post struct {
	ID           string     `firestore:"-" json:"id"`
	UserID       string     `firestore:"userId" json:"user_id"`
	Username     string     `firestore:"username" json:"username"`
	ImageURL     string     `firestore:"imageUrl" json:"image_url"`
	MediaType    string     `firestore:"mediaType" json:"media_type"`
	Caption      string     `firestore:"caption" json:"caption"`
	Location     string     `firestore:"location,omitempty" json:"location,omitempty"`
	Mood         string     `firestore:"mood,omitempty" json:"mood,omitempty"`
	Likes        int        `firestore:"likes" json:"likes"`
	LikedBy      []string   `firestore:"likedBy" json:"liked_by"`
	CommentCount int        `firestore:"commentCount" json:"comment_count"`
	Kind         string     `firestore:"type" json:"type"`
	ExpiresAt    *time.Time `firestore:"expiresAt,omitempty" json:"expires_at,omitempty"`
	CreatedAt    time.Time  `firestore:"createdAt,serverTimestamp" json:"created_at"`
}

// LikedByUser reports whether uid is recorded in the post's likedBy set.
func (p Post) LikedByUser(uid string) bool {
	for _, id := range p.LikedBy {
		if id == uid {
			return true
		}
	}
	return false
}

// FeedEvent is emitted over WebSocket connections streaming the feed.
type FeedEvent struct {
	Type string    `json:"type"`
	Feed *FeedView `json:"feed,omitempty"`
}

// FeedView is the composed home screen payload: trending strip plus the
// two masonry columns, with stale stories already filtered out.
type FeedView struct {
	Trending    []Post `json:"trending"`
	LeftColumn  []Post `json:"left_column"`
	RightColumn []Post `json:"right_column"`
	Stories     []Post `json:"stories"`
}
