package models

import "time"

// User is a profile document stored in the "users" collection,
// keyed by the Firebase Auth UID.
type User struct {
	UID       string    `firestore:"-" json:"uid"`
	Username  string    `firestore:"username" json:"username"`
	Email     string    `firestore:"email" json:"email"`
	AvatarURL string    `firestore:"avatar_url" json:"avatar_url"`
	Bio       string    `firestore:"bio,omitempty" json:"bio,omitempty"`
	Following []string  `firestore:"following" json:"following"`
	Followers []string  `firestore:"followers" json:"followers"`
	PushToken string    `firestore:"pushToken,omitempty" json:"-"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"created_at"`
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	UID            string `json:"uid"`
	Username       string `json:"username"`
	AvatarURL      string `json:"avatar_url"`
	Bio            string `json:"bio,omitempty"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	PostCount      int    `json:"post_count"`
}
