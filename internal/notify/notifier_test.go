package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"social-service/internal/mocks"
	"social-service/internal/models"
)

func TestPostLikedWritesInboxAndPush(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	push := new(mocks.PushSenderMock)
	notifier := NewNotifier(notifications, users, push)

	actor := models.User{UID: "u1", Username: "alice"}
	post := models.Post{ID: "p1", UserID: "u2", ImageURL: "https://cdn/img.jpg"}

	notifications.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.RecipientID == "u2" &&
			n.SenderID == "u1" &&
			n.SenderName == "alice" &&
			n.Type == models.NotificationLike &&
			n.Message == "liked your post." &&
			n.PostImage == "https://cdn/img.jpg"
	})).Return(models.Notification{ID: "n1"}, nil).Once()
	users.On("GetUser", mock.Anything, "u2").Return(models.User{UID: "u2", PushToken: "ExponentPushToken[x]"}, nil).Once()
	push.On("Send", mock.Anything, "ExponentPushToken[x]", "New like", "alice liked your post.", map[string]string{
		"notificationId": "n1",
		"type":           models.NotificationLike,
	}).Return(nil).Once()

	notifier.PostLiked(context.Background(), actor, post)

	notifications.AssertExpectations(t)
	users.AssertExpectations(t)
	push.AssertExpectations(t)
}

func TestEmitSkipsSelf(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	notifier := NewNotifier(notifications, new(mocks.UserRepositoryMock), new(mocks.PushSenderMock))

	actor := models.User{UID: "u1", Username: "alice"}
	notifier.PostLiked(context.Background(), actor, models.Post{ID: "p1", UserID: "u1"})

	notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEmitSkipsEmptyRecipient(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	notifier := NewNotifier(notifications, new(mocks.UserRepositoryMock), nil)

	notifier.UserFollowed(context.Background(), models.User{UID: "u1"}, "")

	notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNoPushWithoutToken(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	push := new(mocks.PushSenderMock)
	notifier := NewNotifier(notifications, users, push)

	notifications.On("Create", mock.Anything, mock.Anything).Return(models.Notification{ID: "n1"}, nil).Once()
	users.On("GetUser", mock.Anything, "u2").Return(models.User{UID: "u2"}, nil).Once()

	notifier.UserFollowed(context.Background(), models.User{UID: "u1", Username: "alice"}, "u2")

	push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPushFailureIsSwallowed(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	push := new(mocks.PushSenderMock)
	notifier := NewNotifier(notifications, users, push)

	notifications.On("Create", mock.Anything, mock.Anything).Return(models.Notification{ID: "n1"}, nil).Once()
	users.On("GetUser", mock.Anything, "u2").Return(models.User{UID: "u2", PushToken: "t"}, nil).Once()
	push.On("Send", mock.Anything, "t", "New follower", "alice started following you.", mock.Anything).Return(assert.AnError).Once()

	notifier.UserFollowed(context.Background(), models.User{UID: "u1", Username: "alice"}, "u2")

	push.AssertExpectations(t)
}

func TestCommentMessageQuotesText(t *testing.T) {
	notifications := new(mocks.NotificationRepositoryMock)
	notifier := NewNotifier(notifications, new(mocks.UserRepositoryMock), nil)

	notifications.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.Type == models.NotificationComment && n.Message == `commented: "nice"`
	})).Return(models.Notification{ID: "n1"}, nil).Once()

	notifier.PostCommented(context.Background(), models.User{UID: "u1"}, models.Post{ID: "p1", UserID: "u2"}, "nice")

	notifications.AssertExpectations(t)
}
