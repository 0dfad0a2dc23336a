package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/enrich"
	"social-service/internal/mocks"
	"social-service/internal/models"
	"social-service/internal/repositories"
	"social-service/internal/ws"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.GET("/chats", handler.ListChats)
	r.POST("/chats/start", handler.StartChat)
	r.GET("/chats/:chat_id/messages", handler.GetChatMessages)
	r.POST("/chats/:chat_id/messages", handler.PostChatMessage)
	return r
}

func TestListChatsSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(chatRepo, nil, enrich.NewJoiner(userRepo), ws.NewHub())
	router := setupChatRouter(handler)

	chatRepo.On("ListChats", mock.Anything, "u1").Return([]models.Chat{{
		ID:           "u1_u2",
		Participants: []string{"u1", "u2"},
		LastMessage:  "hey",
		ReadStatus:   map[string]bool{"u1": false, "u2": true},
		UpdatedAt:    time.Now(),
	}}, nil).Once()
	userRepo.On("GetUser", mock.Anything, "u2").Return(models.User{UID: "u2", Username: "bob"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Chats []models.ChatSummary `json:"chats"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chats, 1)
	require.Equal(t, "bob", resp.Chats[0].FriendUsername)
	require.True(t, resp.Chats[0].Unread)

	chatRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestListChatsRepoError(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, nil, enrich.NewJoiner(new(mocks.UserRepositoryMock)), ws.NewHub())
	router := setupChatRouter(handler)

	chatRepo.On("ListChats", mock.Anything, "u1").Return(([]models.Chat)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestStartChatSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, nil, enrich.NewJoiner(new(mocks.UserRepositoryMock)), ws.NewHub())
	router := setupChatRouter(handler)

	chatRepo.On("EnsureChat", mock.Anything, "u1", "u2").Return(models.Chat{ID: "u1_u2"}, nil).Once()

	body, _ := json.Marshal(gin.H{"friend_id": "u2"})
	req := httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "u1_u2")
	chatRepo.AssertExpectations(t)
}

func TestStartChatWithSelf(t *testing.T) {
	handler := NewChatHandler(new(mocks.ChatRepositoryMock), nil, enrich.NewJoiner(new(mocks.UserRepositoryMock)), ws.NewHub())
	router := setupChatRouter(handler)

	body, _ := json.Marshal(gin.H{"friend_id": "u1"})
	req := httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChatMessagesMarksRead(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewChatHandler(chatRepo, messageRepo, enrich.NewJoiner(new(mocks.UserRepositoryMock)), ws.NewHub())
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, "u1_u2").Return(models.Chat{
		ID:           "u1_u2",
		Participants: []string{"u1", "u2"},
		ReadStatus:   map[string]bool{"u1": false},
	}, nil).Once()
	messageRepo.On("GetChatMessages", mock.Anything, "u1_u2").Return([]models.Message{{ID: "m1", SenderID: "u2", Text: "hi"}}, nil).Once()
	chatRepo.On("MarkRead", mock.Anything, "u1_u2", "u1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/u1_u2/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestGetChatMessagesNotParticipant(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.MessageRepositoryMock), enrich.NewJoiner(new(mocks.UserRepositoryMock)), ws.NewHub())
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, "u2_u3").Return(models.Chat{
		ID:           "u2_u3",
		Participants: []string{"u2", "u3"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/u2_u3/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestGetChatMessagesNotFound(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.MessageRepositoryMock), enrich.NewJoiner(new(mocks.UserRepositoryMock)), ws.NewHub())
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, "nope").Return(models.Chat{}, repositories.ErrChatNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/nope/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostChatMessageSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewChatHandler(chatRepo, messageRepo, enrich.NewJoiner(new(mocks.UserRepositoryMock)), ws.NewHub())
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, "u1_u2").Return(models.Chat{
		ID:           "u1_u2",
		Participants: []string{"u1", "u2"},
	}, nil).Once()
	messageRepo.On("CreateChatMessage", mock.Anything, "u1_u2", "u1", "hello").Return(models.Message{ID: "m1", SenderID: "u1", Text: "hello"}, nil).Once()
	chatRepo.On("TouchOnMessage", mock.Anything, "u1_u2", "u1", "u2", "hello").Return(nil).Once()

	body, _ := json.Marshal(gin.H{"text": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/chats/u1_u2/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	chatRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestPostChatMessageEmptyBody(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.MessageRepositoryMock), enrich.NewJoiner(new(mocks.UserRepositoryMock)), ws.NewHub())
	router := setupChatRouter(handler)

	chatRepo.On("GetChat", mock.Anything, "u1_u2").Return(models.Chat{
		ID:           "u1_u2",
		Participants: []string{"u1", "u2"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/u1_u2/messages", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
