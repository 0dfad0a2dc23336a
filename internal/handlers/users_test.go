package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/firebase"
	"social-service/internal/mocks"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

func setupUserRouter(handler *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.GET("/users/search", handler.SearchUsers)
	r.GET("/users/:uid", handler.GetProfile)
	r.POST("/users/:uid/follow", handler.Follow)
	r.DELETE("/users/:uid/follow", handler.Unfollow)
	r.PUT("/me/profile", handler.UpdateProfile)
	r.POST("/me/push-token", handler.RegisterPushToken)
	return r
}

func registerBody(t *testing.T) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(gin.H{"email": "a@b.com", "password": "secret1", "username": "alice"})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestRegisterSuccess(t *testing.T) {
	accounts := new(mocks.AccountCreatorMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), accounts, new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	accounts.On("CreateAccount", mock.Anything, "a@b.com", "secret1").Return("u1", nil).Once()
	userRepo.On("CreateProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.UID == "u1" && u.Username == "alice" && u.Email == "a@b.com"
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", registerBody(t))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	accounts.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestRegisterErrorMessages(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"email in use", firebase.ErrEmailInUse, http.StatusConflict, msgEmailInUse},
		{"invalid email", firebase.ErrInvalidEmail, http.StatusBadRequest, msgInvalidEmail},
		{"weak password", firebase.ErrWeakPassword, http.StatusBadRequest, msgWeakPassword},
		{"unknown", assert.AnError, http.StatusInternalServerError, msgAuthGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accounts := new(mocks.AccountCreatorMock)
			handler := NewUserHandler(new(mocks.UserRepositoryMock), new(mocks.PostRepositoryMock), accounts, new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
			router := setupUserRouter(handler)

			accounts.On("CreateAccount", mock.Anything, "a@b.com", "secret1").Return("", tc.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/auth/register", registerBody(t))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantMsg)
		})
	}
}

func TestGetProfileExcludesStories(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	postRepo := new(mocks.PostRepositoryMock)
	handler := NewUserHandler(userRepo, postRepo, new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	userRepo.On("GetUser", mock.Anything, "u2").Return(models.User{
		UID:       "u2",
		Username:  "bob",
		Followers: []string{"u1", "u3"},
		Following: []string{"u3"},
	}, nil).Once()
	postRepo.On("ListUserPosts", mock.Anything, "u2").Return([]models.Post{
		{ID: "p1", Kind: models.PostKindWall},
		{ID: "p2", Kind: models.PostKindStory},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/u2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Profile     models.Profile `json:"profile"`
		Posts       []models.Post  `json:"posts"`
		IsFollowing bool           `json:"is_following"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 2, resp.Profile.FollowerCount)
	require.Equal(t, 1, resp.Profile.PostCount)
	require.Len(t, resp.Posts, 1)
	require.True(t, resp.IsFollowing)
}

func TestGetProfileMeAlias(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	postRepo := new(mocks.PostRepositoryMock)
	handler := NewUserHandler(userRepo, postRepo, new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	userRepo.On("GetUser", mock.Anything, "u1").Return(models.User{UID: "u1", Username: "alice"}, nil).Once()
	postRepo.On("ListUserPosts", mock.Anything, "u1").Return([]models.Post{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestGetProfileNotFound(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	userRepo.On("GetUser", mock.Anything, "ghost").Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchUsersEmptyQuery(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/users/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertNotCalled(t, "SearchByUsernamePrefix", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUsersPrefix(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	userRepo.On("SearchByUsernamePrefix", mock.Anything, "bo", "u1").Return([]models.User{
		{UID: "u2", Username: "bob"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/search?q=bo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob")
	userRepo.AssertExpectations(t)
}

func TestFollowNotifiesTarget(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	notifier := new(mocks.EventNotifierMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), notifier, nil)
	router := setupUserRouter(handler)

	actor := models.User{UID: "u1", Username: "alice"}
	userRepo.On("Follow", mock.Anything, "u1", "u2").Return(nil).Once()
	userRepo.On("GetUser", mock.Anything, "u1").Return(actor, nil).Once()
	notifier.On("UserFollowed", mock.Anything, actor, "u2").Once()

	req := httptest.NewRequest(http.MethodPost, "/users/u2/follow", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestFollowTargetMissing(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	notifier := new(mocks.EventNotifierMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), notifier, nil)
	router := setupUserRouter(handler)

	userRepo.On("Follow", mock.Anything, "u1", "ghost").Return(repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/users/ghost/follow", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	notifier.AssertNotCalled(t, "UserFollowed", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnfollowSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	userRepo.On("Unfollow", mock.Anything, "u1", "u2").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/users/u2/follow", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"following":false`)
}

func TestRegisterPushToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	userRepo.On("SavePushToken", mock.Anything, "u1", "a@b.com", "ExponentPushToken[x]").Return(nil).Once()

	body, _ := json.Marshal(gin.H{"token": "ExponentPushToken[x]", "email": "a@b.com"})
	req := httptest.NewRequest(http.MethodPost, "/me/push-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestUpdateProfileBioOnly(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	userRepo.On("UpdateProfile", mock.Anything, "u1", map[string]interface{}{"bio": "hello"}).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/me/profile", strings.NewReader("bio=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestUpdateProfileNothingToUpdate(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PostRepositoryMock), new(mocks.AccountCreatorMock), new(mocks.MediaUploaderMock), new(mocks.EventNotifierMock), nil)
	router := setupUserRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/me/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}
