package repositories

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"social-service/internal/models"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("user does not own comment")
)

// CommentRepository abstracts comment persistence.
type CommentRepository interface {
	AddComment(ctx context.Context, postID string, comment models.Comment) (models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID, uid string) error
	ThreadQuery(postID string) firestore.Query
}

// CommentRepo is a Firestore implementation of CommentRepository.
// Comments live in a subcollection of their post.
type CommentRepo struct {
	client *firestore.Client
}

// NewCommentRepo constructs a CommentRepo.
func NewCommentRepo(client *firestore.Client) *CommentRepo {
	return &CommentRepo{client: client}
}

func (r *CommentRepo) postRef(postID string) *firestore.DocumentRef {
	return r.client.Collection("posts").Doc(postID)
}

func (r *CommentRepo) col(postID string) *firestore.CollectionRef {
	return r.postRef(postID).Collection("comments")
}

// AddComment creates the comment document and bumps the post's
// commentCount in one transaction.
func (r *CommentRepo) AddComment(ctx context.Context, postID string, comment models.Comment) (models.Comment, error) {
	postRef := r.postRef(postID)
	commentRef := r.col(postID).NewDoc()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(postRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrPostNotFound
			}
			return err
		}
		if err := tx.Create(commentRef, comment); err != nil {
			return err
		}
		return tx.Update(postRef, []firestore.Update{
			{Path: "commentCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return models.Comment{}, err
	}
	comment.ID = commentRef.ID
	return comment, nil
}

// ThreadQuery builds the live query backing an open comment thread.
func (r *CommentRepo) ThreadQuery(postID string) firestore.Query {
	return r.col(postID).OrderBy("createdAt", firestore.Asc)
}

// ListComments returns a post's comments, oldest first.
func (r *CommentRepo) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	it := r.col(postID).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer it.Stop()

	var comments []models.Comment
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var comment models.Comment
		if err := doc.DataTo(&comment); err != nil {
			return nil, err
		}
		comment.ID = doc.Ref.ID
		comments = append(comments, comment)
	}
	return comments, nil
}

// DeleteComment removes an author's own comment and decrements the
// post's commentCount in the same transaction. The counter never goes
// below zero even if it was already out of step.
func (r *CommentRepo) DeleteComment(ctx context.Context, postID, commentID, uid string) error {
	postRef := r.postRef(postID)
	commentRef := r.col(postID).Doc(commentID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		postDoc, err := tx.Get(postRef)
		if status.Code(err) == codes.NotFound {
			return ErrPostNotFound
		}
		if err != nil {
			return err
		}
		commentDoc, err := tx.Get(commentRef)
		if status.Code(err) == codes.NotFound {
			return ErrCommentNotFound
		}
		if err != nil {
			return err
		}

		var comment models.Comment
		if err := commentDoc.DataTo(&comment); err != nil {
			return err
		}
		if comment.UserID != uid {
			return ErrNotCommentOwner
		}

		var post models.Post
		if err := postDoc.DataTo(&post); err != nil {
			return err
		}
		count := post.CommentCount - 1
		if count < 0 {
			count = 0
		}

		if err := tx.Delete(commentRef); err != nil {
			return err
		}
		return tx.Update(postRef, []firestore.Update{
			{Path: "commentCount", Value: count},
		})
	})
}
