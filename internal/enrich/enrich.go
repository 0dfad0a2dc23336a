// Package enrich joins persisted records with their authors' current
// profiles. Every screen that shows a username next to stored data
// goes through the same join, so fallback behaviour stays uniform.
package enrich

import (
	"context"
	"errors"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

// PlaceholderUsername stands in for authors whose profile is missing.
const PlaceholderUsername = "Unknown"

// UserFetcher is the slice of UserRepository the joiner needs.
type UserFetcher interface {
	GetUser(ctx context.Context, uid string) (models.User, error)
}

// Author is the joined profile attached to a record.
type Author struct {
	UID       string `json:"uid"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Joiner resolves author profiles for batches of records.
type Joiner struct {
	users UserFetcher
}

// NewJoiner constructs a Joiner.
func NewJoiner(users UserFetcher) *Joiner {
	return &Joiner{users: users}
}

// Authors resolves the profiles for the given author UIDs, one fetch
// per distinct UID. The result has the same length and order as the
// input; a missing or unreadable profile yields the placeholder
// instead of failing the whole batch.
func (j *Joiner) Authors(ctx context.Context, uids []string) ([]Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cache := make(map[string]Author, len(uids))
	out := make([]Author, 0, len(uids))
	for _, uid := range uids {
		if author, ok := cache[uid]; ok {
			out = append(out, author)
			continue
		}
		author := Author{UID: uid, Username: PlaceholderUsername}
		user, err := j.users.GetUser(ctx, uid)
		switch {
		case err == nil:
			author.Username = user.Username
			author.AvatarURL = user.AvatarURL
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, repositories.ErrUserNotFound):
			// keep the placeholder
		default:
			// transient fetch failure degrades to the placeholder too
		}
		cache[uid] = author
		out = append(out, author)
	}
	return out, nil
}

// Author resolves a single profile with the same fallback rules.
func (j *Joiner) Author(ctx context.Context, uid string) (Author, error) {
	authors, err := j.Authors(ctx, []string{uid})
	if err != nil {
		return Author{}, err
	}
	return authors[0], nil
}
