package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/firebase"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
	"social-service/internal/telemetry"
)

// Fixed user-facing messages for known registration failures.
const (
	msgEmailInUse   = "This email address is already registered."
	msgInvalidEmail = "The email address is not valid."
	msgWeakPassword = "The password is too weak, use at least 6 characters."
	msgAuthGeneric  = "Something went wrong, please try again."
)

// AccountCreator registers accounts with the identity provider.
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
}

// UserHandler manages profile, search and follow endpoints.
type UserHandler struct {
	userRepo repositories.UserRepository
	postRepo repositories.PostRepository
	accounts AccountCreator
	media    MediaUploader
	notifier EventNotifier
	audit    *telemetry.AuditEmitter
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, accounts AccountCreator, media MediaUploader, notifier EventNotifier, audit *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		postRepo: postRepo,
		accounts: accounts,
		media:    media,
		notifier: notifier,
		audit:    audit,
	}
}

// Register creates the identity-provider account and the initial
// profile document.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, err := h.accounts.CreateAccount(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, firebase.ErrEmailInUse):
			c.JSON(http.StatusConflict, gin.H{"error": msgEmailInUse})
		case errors.Is(err, firebase.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidEmail})
		case errors.Is(err, firebase.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgWeakPassword})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgAuthGeneric})
		}
		return
	}

	if err := h.userRepo.CreateProfile(c.Request.Context(), models.User{
		UID:      uid,
		Username: req.Username,
		Email:    req.Email,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create profile"})
		return
	}

	requestID := requestIDFromContext(c)
	h.audit.Emit(c.Request.Context(), "info", "user registered", uid, requestID, &uid)
	_ = observability.PublishEvent(c.Request.Context(), observability.EventUserRegistered, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "user_registered",
		Payload:   gin.H{"user_id": uid},
	}, observability.BuildHeaders(requestID, ""))

	c.JSON(http.StatusCreated, gin.H{"uid": uid})
}

// GetProfile returns a user's public profile with their wall posts.
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "me" {
		uid = c.GetString("userID")
	}

	user, err := h.userRepo.GetUser(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	posts, err := h.postRepo.ListUserPosts(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}
	wall := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Kind != models.PostKindStory {
			wall = append(wall, p)
		}
	}

	profile := models.Profile{
		UID:            user.UID,
		Username:       user.Username,
		AvatarURL:      user.AvatarURL,
		Bio:            user.Bio,
		FollowerCount:  len(user.Followers),
		FollowingCount: len(user.Following),
		PostCount:      len(wall),
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":      profile,
		"posts":        wall,
		"is_following": contains(user.Followers, c.GetString("userID")),
	})
}

// UpdateProfile merges profile changes for the caller. A new avatar,
// when attached, replaces the stored one. Denormalized usernames on
// old posts are left as captured; the canonical value lives here.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString("userID")

	fields := map[string]interface{}{}
	if username := c.PostForm("username"); username != "" {
		fields["username"] = username
	}
	if bio, ok := c.GetPostForm("bio"); ok {
		fields["bio"] = bio
	}

	if file, err := c.FormFile("avatar"); err == nil {
		url, err := h.media.UploadAvatar(c.Request.Context(), uid, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store avatar"})
			return
		}
		fields["avatar_url"] = url
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if err := h.userRepo.UpdateProfile(c.Request.Context(), uid, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// RegisterPushToken stores the caller's device push token.
func (h *UserHandler) RegisterPushToken(c *gin.Context) {
	uid := c.GetString("userID")

	var req struct {
		Token string `json:"token" binding:"required"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userRepo.SavePushToken(c.Request.Context(), uid, req.Email, req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save push token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// SearchUsers returns users whose username starts with the query,
// excluding the caller.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"users": []models.Profile{}})
		return
	}

	users, err := h.userRepo.SearchByUsernamePrefix(c.Request.Context(), query, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	results := make([]models.Profile, 0, len(users))
	for _, u := range users {
		results = append(results, models.Profile{
			UID:            u.UID,
			Username:       u.Username,
			AvatarURL:      u.AvatarURL,
			FollowerCount:  len(u.Followers),
			FollowingCount: len(u.Following),
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": results})
}

// Follow adds the caller to the target's followers and notifies the
// target.
func (h *UserHandler) Follow(c *gin.Context) {
	uid := c.GetString("userID")
	targetUID := c.Param("uid")

	if err := h.userRepo.Follow(c.Request.Context(), uid, targetUID); err != nil {
		h.respondFollowError(c, err)
		return
	}

	if actor, err := h.userRepo.GetUser(c.Request.Context(), uid); err == nil {
		h.notifier.UserFollowed(c.Request.Context(), actor, targetUID)
	}
	_ = observability.PublishEvent(c.Request.Context(), observability.EventUserFollowed, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "user_followed",
		Payload:   gin.H{"user_id": uid, "target_id": targetUID},
	}, observability.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusOK, gin.H{"following": true})
}

// Unfollow removes the caller from the target's followers.
func (h *UserHandler) Unfollow(c *gin.Context) {
	uid := c.GetString("userID")
	targetUID := c.Param("uid")

	if err := h.userRepo.Unfollow(c.Request.Context(), uid, targetUID); err != nil {
		h.respondFollowError(c, err)
		return
	}

	_ = observability.PublishEvent(c.Request.Context(), observability.EventUserUnfollowed, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "user_unfollowed",
		Payload:   gin.H{"user_id": uid, "target_id": targetUID},
	}, observability.BuildHeaders(requestIDFromContext(c), ""))

	c.JSON(http.StatusOK, gin.H{"following": false})
}

func (h *UserHandler) respondFollowError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update follow state"})
}

func contains(ids []string, uid string) bool {
	for _, id := range ids {
		if id == uid {
			return true
		}
	}
	return false
}
