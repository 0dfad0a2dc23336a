package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/enrich"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
	"social-service/internal/sync"
)

// CommentHandler manages the comment endpoints of a post.
type CommentHandler struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	userRepo    repositories.UserRepository
	store       *sync.PostStore
	joiner      *enrich.Joiner
	notifier    EventNotifier
}

// NewCommentHandler builds a CommentHandler.
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, store *sync.PostStore, joiner *enrich.Joiner, notifier EventNotifier) *CommentHandler {
	return &CommentHandler{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		store:       store,
		joiner:      joiner,
		notifier:    notifier,
	}
}

// ListComments returns a post's comments, oldest first, joined with
// each author's current profile.
func (h *CommentHandler) ListComments(c *gin.Context) {
	postID := c.Param("post_id")

	comments, err := h.commentRepo.ListComments(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	uids := make([]string, 0, len(comments))
	for _, comment := range comments {
		uids = append(uids, comment.UserID)
	}
	authors, err := h.joiner.Authors(c.Request.Context(), uids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load authors"})
		return
	}

	views := make([]models.CommentView, 0, len(comments))
	for i, comment := range comments {
		comment.Username = authors[i].Username
		views = append(views, models.CommentView{Comment: comment, AvatarURL: authors[i].AvatarURL})
	}

	c.JSON(http.StatusOK, gin.H{"comments": views})
}

// AddComment appends a comment to the post. The mirrored comment count
// is bumped first and rolled back if the write fails; the post owner
// is notified unless they commented on their own post.
func (h *CommentHandler) AddComment(c *gin.Context) {
	uid := c.GetString("userID")
	postID := c.Param("post_id")

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetUser(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	rollback := h.store.ApplyCommentDelta(postID, 1)

	var created models.Comment
	err = h.store.Do(c.Request.Context(), rollback, func(ctx context.Context) error {
		var writeErr error
		created, writeErr = h.commentRepo.AddComment(ctx, postID, models.Comment{
			UserID:   uid,
			Username: user.Username,
			Text:     req.Text,
		})
		return writeErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add comment"})
		return
	}

	if post, err := h.postRepo.GetPost(c.Request.Context(), postID); err == nil {
		h.notifier.PostCommented(c.Request.Context(), user, post, req.Text)
	}
	_ = observability.PublishEvent(c.Request.Context(), observability.EventCommentAdded, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "comment_added",
		Payload:   gin.H{"post_id": postID, "comment_id": created.ID, "user_id": uid},
	}, observability.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusCreated, created)
}

// DeleteComment removes the caller's own comment.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	uid := c.GetString("userID")
	postID := c.Param("post_id")
	commentID := c.Param("comment_id")

	rollback := h.store.ApplyCommentDelta(postID, -1)

	err := h.store.Do(c.Request.Context(), rollback, func(ctx context.Context) error {
		return h.commentRepo.DeleteComment(ctx, postID, commentID, uid)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		case errors.Is(err, repositories.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		case errors.Is(err, repositories.ErrNotCommentOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not the comment owner"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
		}
		return
	}

	_ = observability.PublishEvent(c.Request.Context(), observability.EventCommentDeleted, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "comment_deleted",
		Payload:   gin.H{"post_id": postID, "comment_id": commentID, "user_id": uid},
	}, observability.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
