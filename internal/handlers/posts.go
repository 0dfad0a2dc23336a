package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"social-service/internal/feed"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
	"social-service/internal/storage"
	"social-service/internal/sync"
	"social-service/internal/telemetry"
)

// storyTTL is how long a story stays visible after sharing.
const storyTTL = 24 * time.Hour

// MediaUploader stores uploaded files and returns their public URLs.
type MediaUploader interface {
	UploadPost(ctx context.Context, uid string, file *multipart.FileHeader) (url, mediaType string, err error)
	UploadAvatar(ctx context.Context, uid string, file *multipart.FileHeader) (string, error)
}

// EventNotifier fans social events out to recipients.
type EventNotifier interface {
	PostLiked(ctx context.Context, actor models.User, post models.Post)
	PostCommented(ctx context.Context, actor models.User, post models.Post, text string)
	UserFollowed(ctx context.Context, actor models.User, targetUID string)
}

// PostHandler manages post and feed endpoints.
type PostHandler struct {
	postRepo repositories.PostRepository
	userRepo repositories.UserRepository
	store    *sync.PostStore
	media    MediaUploader
	notifier EventNotifier
	audit    *telemetry.AuditEmitter
}

// NewPostHandler builds a PostHandler.
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, store *sync.PostStore, media MediaUploader, notifier EventNotifier, audit *telemetry.AuditEmitter) *PostHandler {
	return &PostHandler{
		postRepo: postRepo,
		userRepo: userRepo,
		store:    store,
		media:    media,
		notifier: notifier,
		audit:    audit,
	}
}

// GetFeed returns the composed home feed: trending strip, the two
// masonry columns and live stories.
func (h *PostHandler) GetFeed(c *gin.Context) {
	posts, err := h.postRepo.ListPosts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}
	h.store.Reconcile(posts)

	view := feed.Compose(posts, time.Now())
	c.JSON(http.StatusOK, gin.H{"feed": view})
}

// CreatePost uploads the attached media and shares a new post.
func (h *PostHandler) CreatePost(c *gin.Context) {
	uid := c.GetString("userID")

	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media file is required"})
		return
	}

	kind := c.PostForm("type")
	if kind == "" {
		kind = models.PostKindWall
	}
	if kind != models.PostKindWall && kind != models.PostKindStory {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post type"})
		return
	}

	user, err := h.userRepo.GetUser(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	url, mediaType, err := h.media.UploadPost(c.Request.Context(), uid, file)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrUnsupportedMedia) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "failed to store media"})
		return
	}

	post := models.Post{
		UserID:    uid,
		Username:  user.Username,
		ImageURL:  url,
		MediaType: mediaType,
		Caption:   c.PostForm("caption"),
		Location:  c.PostForm("location"),
		Mood:      c.PostForm("mood"),
		Kind:      kind,
	}
	if kind == models.PostKindStory {
		expiry := time.Now().Add(storyTTL)
		post.ExpiresAt = &expiry
	}

	created, err := h.postRepo.CreatePost(c.Request.Context(), post)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}

	requestID := requestIDFromContext(c)
	h.audit.Emit(c.Request.Context(), "info", "post created", created.ID, requestID, &uid)
	_ = observability.PublishEvent(c.Request.Context(), observability.EventPostCreated, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "post_created",
		Payload:   gin.H{"post_id": created.ID, "user_id": uid, "type": created.Kind},
	}, observability.BuildHeaders(requestID, ""))

	c.JSON(http.StatusCreated, created)
}

// DeletePost removes the caller's own post.
func (h *PostHandler) DeletePost(c *gin.Context) {
	uid := c.GetString("userID")
	postID := c.Param("post_id")

	if err := h.postRepo.DeletePost(c.Request.Context(), postID, uid); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		case errors.Is(err, repositories.ErrNotPostOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not the post owner"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete post"})
		}
		return
	}

	requestID := requestIDFromContext(c)
	h.audit.Emit(c.Request.Context(), "info", "post deleted", postID, requestID, &uid)
	_ = observability.PublishEvent(c.Request.Context(), observability.EventPostDeleted, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "post_deleted",
		Payload:   gin.H{"post_id": postID, "user_id": uid},
	}, observability.BuildHeaders(requestID, ""))

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ToggleLike flips the caller's like on a post. The mirror is updated
// first so open feeds reflect the change immediately; a failed write
// rolls that back before the error is reported.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	uid := c.GetString("userID")
	postID := c.Param("post_id")

	liked, rollback, known := h.store.ApplyLike(postID, uid)
	if !known {
		// cold mirror: resolve the current state remotely first
		post, err := h.postRepo.GetPost(c.Request.Context(), postID)
		if err != nil {
			if errors.Is(err, repositories.ErrPostNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load post"})
			return
		}
		liked = !post.LikedByUser(uid)
	}

	var updated models.Post
	err := h.store.Do(c.Request.Context(), rollback, func(ctx context.Context) error {
		var writeErr error
		updated, writeErr = h.postRepo.SetLike(ctx, postID, uid, liked)
		return writeErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update like"})
		return
	}

	if liked {
		if actor, err := h.userRepo.GetUser(c.Request.Context(), uid); err == nil {
			h.notifier.PostLiked(c.Request.Context(), actor, updated)
		}
		_ = observability.PublishEvent(c.Request.Context(), observability.EventPostLiked, observability.EventEnvelope{
			EventType: "domain_events",
			EventName: "post_liked",
			Payload:   gin.H{"post_id": postID, "user_id": uid},
		}, observability.BuildHeaders(requestIDFromContext(c), ""))
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": updated.Likes})
}
