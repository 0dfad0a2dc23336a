package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/enrich"
	"social-service/internal/mocks"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

func setupNotificationRouter(handler *NotificationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.GET("/notifications", handler.ListNotifications)
	return r
}

func TestListNotificationsMarksUnreadRead(t *testing.T) {
	notificationRepo := new(mocks.NotificationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewNotificationHandler(notificationRepo, enrich.NewJoiner(userRepo))
	router := setupNotificationRouter(handler)

	notificationRepo.On("ListForRecipient", mock.Anything, "u1").Return([]models.Notification{
		{ID: "n1", SenderID: "u2", Type: models.NotificationLike, IsRead: false},
		{ID: "n2", SenderID: "u2", Type: models.NotificationFollow, IsRead: true},
	}, nil).Once()
	userRepo.On("GetUser", mock.Anything, "u2").Return(models.User{UID: "u2", Username: "bob", AvatarURL: "b.jpg"}, nil).Once()
	notificationRepo.On("MarkRead", mock.Anything, "n1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "b.jpg")
	notificationRepo.AssertExpectations(t)
	notificationRepo.AssertNotCalled(t, "MarkRead", mock.Anything, "n2")
}

func TestListNotificationsShowsCurrentSenderName(t *testing.T) {
	notificationRepo := new(mocks.NotificationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewNotificationHandler(notificationRepo, enrich.NewJoiner(userRepo))
	router := setupNotificationRouter(handler)

	// "bob" renamed to "bobby" after the notification was written.
	notificationRepo.On("ListForRecipient", mock.Anything, "u1").Return([]models.Notification{
		{ID: "n1", SenderID: "u2", SenderName: "bob", Type: models.NotificationLike, IsRead: true},
	}, nil).Once()
	userRepo.On("GetUser", mock.Anything, "u2").Return(models.User{UID: "u2", Username: "bobby"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sender_display_name":"bobby"`)
}

func TestListNotificationsFallsBackToStoredSenderName(t *testing.T) {
	notificationRepo := new(mocks.NotificationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewNotificationHandler(notificationRepo, enrich.NewJoiner(userRepo))
	router := setupNotificationRouter(handler)

	notificationRepo.On("ListForRecipient", mock.Anything, "u1").Return([]models.Notification{
		{ID: "n1", SenderID: "ghost", SenderName: "bob", Type: models.NotificationFollow, IsRead: true},
	}, nil).Once()
	userRepo.On("GetUser", mock.Anything, "ghost").Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sender_display_name":"bob"`)
}

func TestListNotificationsRepoError(t *testing.T) {
	notificationRepo := new(mocks.NotificationRepositoryMock)
	handler := NewNotificationHandler(notificationRepo, enrich.NewJoiner(new(mocks.UserRepositoryMock)))
	router := setupNotificationRouter(handler)

	notificationRepo.On("ListForRecipient", mock.Anything, "u1").Return(([]models.Notification)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
