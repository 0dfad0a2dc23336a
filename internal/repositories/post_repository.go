package repositories

import (
	"context"
	"errors"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"social-service/internal/models"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("user does not own post")
)

// PostRepository abstracts post persistence.
type PostRepository interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	GetPost(ctx context.Context, postID string) (models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListUserPosts(ctx context.Context, uid string) ([]models.Post, error)
	DeletePost(ctx context.Context, postID, uid string) error
	SetLike(ctx context.Context, postID, uid string, liked bool) (models.Post, error)
	FeedQuery() firestore.Query
}

// PostRepo is a Firestore implementation of PostRepository.
type PostRepo struct {
	client *firestore.Client
}

// NewPostRepo constructs a PostRepo.
func NewPostRepo(client *firestore.Client) *PostRepo {
	return &PostRepo{client: client}
}

func (r *PostRepo) col() *firestore.CollectionRef {
	return r.client.Collection("posts")
}

// CreatePost writes a new post document and returns it with the
// generated ID.
func (r *PostRepo) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	ref, _, err := r.col().Add(ctx, post)
	if err != nil {
		return models.Post{}, err
	}
	post.ID = ref.ID
	return post, nil
}

// GetPost fetches a post document by ID.
func (r *PostRepo) GetPost(ctx context.Context, postID string) (models.Post, error) {
	doc, err := r.col().Doc(postID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	return decodePost(doc)
}

// ListPosts returns all posts, newest first.
func (r *PostRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	it := r.FeedQuery().Documents(ctx)
	return collectPosts(it)
}

// FeedQuery builds the live query backing the home feed stream.
func (r *PostRepo) FeedQuery() firestore.Query {
	return r.col().OrderBy("createdAt", firestore.Desc)
}

// ListUserPosts returns one user's posts, newest first. Filtering and
// ordering happen on the already small result set so no composite
// index is required.
func (r *PostRepo) ListUserPosts(ctx context.Context, uid string) ([]models.Post, error) {
	it := r.col().Where("userId", "==", uid).Documents(ctx)
	posts, err := collectPosts(it)
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// DeletePost removes a post after verifying ownership.
func (r *PostRepo) DeletePost(ctx context.Context, postID, uid string) error {
	post, err := r.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != uid {
		return ErrNotPostOwner
	}
	_, err = r.col().Doc(postID).Delete(ctx)
	return err
}

// SetLike moves the post to the requested like state for uid. The
// counter bump and the likedBy membership change commit in a single
// transaction, so the two can never drift apart. Repeating the same
// state is a no-op, which makes client retries safe.
func (r *PostRepo) SetLike(ctx context.Context, postID, uid string, liked bool) (models.Post, error) {
	ref := r.col().Doc(postID)
	var updated models.Post

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrPostNotFound
		}
		if err != nil {
			return err
		}
		post, err := decodePost(doc)
		if err != nil {
			return err
		}

		if post.LikedByUser(uid) == liked {
			updated = post
			return nil
		}

		delta := 1
		var member interface{} = firestore.ArrayUnion(uid)
		if !liked {
			delta = -1
			member = firestore.ArrayRemove(uid)
		}
		if err := tx.Update(ref, []firestore.Update{
			{Path: "likes", Value: firestore.Increment(delta)},
			{Path: "likedBy", Value: member},
		}); err != nil {
			return err
		}

		post.Likes += delta
		if liked {
			post.LikedBy = append(post.LikedBy, uid)
		} else {
			kept := post.LikedBy[:0]
			for _, id := range post.LikedBy {
				if id != uid {
					kept = append(kept, id)
				}
			}
			post.LikedBy = kept
		}
		updated = post
		return nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return updated, nil
}

// PostsFromDocs decodes a snapshot result set, preserving its order.
func PostsFromDocs(docs []*firestore.DocumentSnapshot) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		post, err := decodePost(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func decodePost(doc *firestore.DocumentSnapshot) (models.Post, error) {
	var post models.Post
	if err := doc.DataTo(&post); err != nil {
		return models.Post{}, err
	}
	post.ID = doc.Ref.ID
	return post, nil
}

func collectPosts(it *firestore.DocumentIterator) ([]models.Post, error) {
	defer it.Stop()

	var posts []models.Post
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		post, err := decodePost(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}
