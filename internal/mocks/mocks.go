package mocks

import (
	"context"
	"mime/multipart"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/mock"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, uid string) (models.User, error) {
	args := m.Called(ctx, uid)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) CreateProfile(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, uid string, fields map[string]interface{}) error {
	args := m.Called(ctx, uid, fields)
	return args.Error(0)
}

func (m *UserRepositoryMock) SavePushToken(ctx context.Context, uid, email, token string) error {
	args := m.Called(ctx, uid, email, token)
	return args.Error(0)
}

func (m *UserRepositoryMock) SearchByUsernamePrefix(ctx context.Context, prefix, excludeUID string) ([]models.User, error) {
	args := m.Called(ctx, prefix, excludeUID)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) Follow(ctx context.Context, actorUID, targetUID string) error {
	args := m.Called(ctx, actorUID, targetUID)
	return args.Error(0)
}

func (m *UserRepositoryMock) Unfollow(ctx context.Context, actorUID, targetUID string) error {
	args := m.Called(ctx, actorUID, targetUID)
	return args.Error(0)
}

type PostRepositoryMock struct {
	mock.Mock
}

func (m *PostRepositoryMock) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	args := m.Called(ctx, post)
	var created models.Post
	if val := args.Get(0); val != nil {
		created = val.(models.Post)
	}
	return created, args.Error(1)
}

func (m *PostRepositoryMock) GetPost(ctx context.Context, postID string) (models.Post, error) {
	args := m.Called(ctx, postID)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) ListPosts(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) ListUserPosts(ctx context.Context, uid string) ([]models.Post, error) {
	args := m.Called(ctx, uid)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) DeletePost(ctx context.Context, postID, uid string) error {
	args := m.Called(ctx, postID, uid)
	return args.Error(0)
}

func (m *PostRepositoryMock) SetLike(ctx context.Context, postID, uid string, liked bool) (models.Post, error) {
	args := m.Called(ctx, postID, uid, liked)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) FeedQuery() firestore.Query {
	return firestore.Query{}
}

type CommentRepositoryMock struct {
	mock.Mock
}

func (m *CommentRepositoryMock) AddComment(ctx context.Context, postID string, comment models.Comment) (models.Comment, error) {
	args := m.Called(ctx, postID, comment)
	var created models.Comment
	if val := args.Get(0); val != nil {
		created = val.(models.Comment)
	}
	return created, args.Error(1)
}

func (m *CommentRepositoryMock) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	args := m.Called(ctx, postID)
	var comments []models.Comment
	if val := args.Get(0); val != nil {
		comments = val.([]models.Comment)
	}
	return comments, args.Error(1)
}

func (m *CommentRepositoryMock) DeleteComment(ctx context.Context, postID, commentID, uid string) error {
	args := m.Called(ctx, postID, commentID, uid)
	return args.Error(0)
}

func (m *CommentRepositoryMock) ThreadQuery(postID string) firestore.Query {
	return firestore.Query{}
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) EnsureChat(ctx context.Context, userUID, friendUID string) (models.Chat, error) {
	args := m.Called(ctx, userUID, friendUID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID string) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListChats(ctx context.Context, uid string) ([]models.Chat, error) {
	args := m.Called(ctx, uid)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) MarkRead(ctx context.Context, chatID, uid string) error {
	args := m.Called(ctx, chatID, uid)
	return args.Error(0)
}

func (m *ChatRepositoryMock) TouchOnMessage(ctx context.Context, chatID, senderUID, friendUID, preview string) error {
	args := m.Called(ctx, chatID, senderUID, friendUID, preview)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateChatMessage(ctx context.Context, chatID, senderUID, text string) (models.Message, error) {
	args := m.Called(ctx, chatID, senderUID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetChatMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	args := m.Called(ctx, n)
	var created models.Notification
	if val := args.Get(0); val != nil {
		created = val.(models.Notification)
	}
	return created, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForRecipient(ctx context.Context, uid string) ([]models.Notification, error) {
	args := m.Called(ctx, uid)
	var items []models.Notification
	if val := args.Get(0); val != nil {
		items = val.([]models.Notification)
	}
	return items, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, notificationID string) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) UnreadQuery(uid string) firestore.Query {
	return firestore.Query{}
}

type MediaUploaderMock struct {
	mock.Mock
}

func (m *MediaUploaderMock) UploadPost(ctx context.Context, uid string, file *multipart.FileHeader) (string, string, error) {
	args := m.Called(ctx, uid, file)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MediaUploaderMock) UploadAvatar(ctx context.Context, uid string, file *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, uid, file)
	return args.String(0), args.Error(1)
}

type EventNotifierMock struct {
	mock.Mock
}

func (m *EventNotifierMock) PostLiked(ctx context.Context, actor models.User, post models.Post) {
	m.Called(ctx, actor, post)
}

func (m *EventNotifierMock) PostCommented(ctx context.Context, actor models.User, post models.Post, text string) {
	m.Called(ctx, actor, post, text)
}

func (m *EventNotifierMock) UserFollowed(ctx context.Context, actor models.User, targetUID string) {
	m.Called(ctx, actor, targetUID)
}

type AccountCreatorMock struct {
	mock.Mock
}

func (m *AccountCreatorMock) CreateAccount(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

type PushSenderMock struct {
	mock.Mock
}

func (m *PushSenderMock) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	args := m.Called(ctx, token, title, body, data)
	return args.Error(0)
}

type TokenVerifierMock struct {
	mock.Mock
}

func (m *TokenVerifierMock) Verify(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.PostRepository = (*PostRepositoryMock)(nil)
var _ repositories.CommentRepository = (*CommentRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
