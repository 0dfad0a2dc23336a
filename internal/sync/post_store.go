// Package sync keeps an in-memory mirror of the posts collection that
// mutations update before their remote writes are acknowledged.
// Streams read from the mirror, so a like or comment shows up
// everywhere immediately and is rolled back if the write fails.
package sync

import (
	"context"
	"sort"
	stdsync "sync"

	"social-service/internal/models"
)

// PostStore is the shared local mirror of the posts collection.
type PostStore struct {
	mu       stdsync.Mutex
	posts    map[string]models.Post
	watchers map[chan struct{}]struct{}
	gen      uint64
}

// NewPostStore constructs an empty PostStore.
func NewPostStore() *PostStore {
	return &PostStore{
		posts:    make(map[string]models.Post),
		watchers: make(map[chan struct{}]struct{}),
	}
}

// Watch registers for change signals and returns the channel plus a
// release function. The channel is coalescing: a burst of updates may
// produce a single signal, which is enough for readers that re-list
// the whole mirror.
func (s *PostStore) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		delete(s.watchers, ch)
		s.mu.Unlock()
	}
	return ch, release
}

// signal must be called with s.mu held.
func (s *PostStore) signal() {
	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Reconcile replaces the mirror with a fresh remote snapshot. The
// snapshot wins over any optimistic state: rollbacks issued before it
// become no-ops.
func (s *PostStore) Reconcile(posts []models.Post) {
	s.mu.Lock()
	s.gen++
	s.posts = make(map[string]models.Post, len(posts))
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	s.signal()
	s.mu.Unlock()
}

// List returns the mirrored posts, newest first.
func (s *PostStore) List() []models.Post {
	s.mu.Lock()
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns one mirrored post.
func (s *PostStore) Get(postID string) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	return p, ok
}

// ApplyLike flips uid's like on the mirrored post and returns the
// resulting state plus a rollback that restores the previous one.
// ok is false when the mirror has not seen the post yet; the caller
// then resolves the toggle against the remote document instead.
func (s *PostStore) ApplyLike(postID, uid string) (liked bool, rollback func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, known := s.posts[postID]
	if !known {
		return false, func() {}, false
	}

	next := prev
	if prev.LikedByUser(uid) {
		next.Likes--
		next.LikedBy = remove(prev.LikedBy, uid)
		liked = false
	} else {
		next.Likes++
		next.LikedBy = append(append([]string{}, prev.LikedBy...), uid)
		liked = true
	}
	s.posts[postID] = next
	s.signal()

	return liked, s.rollbackTo(postID, prev), true
}

// ApplyCommentDelta bumps the mirrored comment count, flooring at
// zero, and returns a rollback restoring the previous post state.
func (s *PostStore) ApplyCommentDelta(postID string, delta int) (rollback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.posts[postID]
	if !ok {
		return func() {}
	}

	next := prev
	next.CommentCount += delta
	if next.CommentCount < 0 {
		next.CommentCount = 0
	}
	s.posts[postID] = next
	s.signal()

	return s.rollbackTo(postID, prev)
}

// rollbackTo must be called with s.mu held. The returned func restores
// prev unless a snapshot has replaced the mirror in the meantime.
func (s *PostStore) rollbackTo(postID string, prev models.Post) func() {
	gen := s.gen
	return func() {
		s.mu.Lock()
		if _, ok := s.posts[postID]; ok && s.gen == gen {
			s.posts[postID] = prev
			s.signal()
		}
		s.mu.Unlock()
	}
}

// Do runs a remote write after an optimistic mutation has already been
// applied. If the write fails, the mutation's rollback restores the
// mirror before the error is returned.
func (s *PostStore) Do(ctx context.Context, rollback func(), write func(context.Context) error) error {
	if err := write(ctx); err != nil {
		rollback()
		return err
	}
	return nil
}

func remove(ids []string, uid string) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != uid {
			kept = append(kept, id)
		}
	}
	return kept
}
