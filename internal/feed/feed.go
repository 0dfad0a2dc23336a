// Package feed composes the home screen view out of the raw post list.
package feed

import (
	"time"

	"social-service/internal/models"
)

const (
	// trendingMinLikes is the like threshold for the trending strip.
	trendingMinLikes = 5
	// trendingMax caps the trending strip length.
	trendingMax = 5
)

// Trending picks the trending strip from posts already ordered newest
// first: the first posts at or above the like threshold, capped.
func Trending(posts []models.Post) []models.Post {
	trending := []models.Post{}
	for _, p := range posts {
		if p.Likes >= trendingMinLikes {
			trending = append(trending, p)
			if len(trending) == trendingMax {
				break
			}
		}
	}
	return trending
}

// SplitColumns deals posts into the two masonry columns by alternating
// index, preserving relative order inside each column.
func SplitColumns(posts []models.Post) (left, right []models.Post) {
	left = []models.Post{}
	right = []models.Post{}
	for i, p := range posts {
		if i%2 == 0 {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	return left, right
}

// FilterLive drops stories whose expiry has passed. Wall posts and
// stories without an expiry pass through untouched.
func FilterLive(posts []models.Post, now time.Time) []models.Post {
	live := []models.Post{}
	for _, p := range posts {
		if p.Kind == models.PostKindStory && p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
			continue
		}
		live = append(live, p)
	}
	return live
}

// Compose builds the full home view from a fresh snapshot of the posts
// collection, assumed ordered newest first.
func Compose(posts []models.Post, now time.Time) models.FeedView {
	live := FilterLive(posts, now)

	wall := []models.Post{}
	stories := []models.Post{}
	for _, p := range live {
		if p.Kind == models.PostKindStory {
			stories = append(stories, p)
		} else {
			wall = append(wall, p)
		}
	}

	left, right := SplitColumns(wall)
	return models.FeedView{
		Trending:    Trending(wall),
		LeftColumn:  left,
		RightColumn: right,
		Stories:     stories,
	}
}
