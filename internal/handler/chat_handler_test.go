package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ummah-chat/internal/domain/chat"
	"ummah-chat/internal/mocks"
	"ummah-chat/internal/services"
	chat_errors "ummah-chat/pkg/errors"
	"ummah-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type presenceReaderMock struct {
	mock.Mock
}

func (m *presenceReaderMock) OnlineUsers(ctx context.Context, roomID string) ([]string, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *presenceReaderMock) OnlineCount(ctx context.Context, roomID string) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

func setupRouter(rooms *mocks.RoomRepositoryMock, users *mocks.UserRepositoryMock, presence *presenceReaderMock, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)

	bus := new(mocks.PublisherMock)
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := services.NewChatService("community", rooms, users, bus, logger.NewNop())
	h := NewChatHandler(svc, presence, logger.NewNop())

	r := gin.New()
	api := r.Group("/api/chat")
	if userID != uuid.Nil {
		api.Use(func(c *gin.Context) {
			ctx := services.WithUserContext(c.Request.Context(), userID)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
	api.GET("/history", h.History)
	api.GET("/presence", h.Presence)
	api.GET("/message/:id", h.GetMessage)
	api.DELETE("/message/:id", h.DeleteMessage)
	api.POST("/read", h.MarkRead)
	return r
}

func TestHistoryReturnsSnapshot(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	roomID := uuid.New()

	rooms.On("GetOrCreateActiveRoom", mock.Anything, "community").
		Return(chat.Room{ID: roomID, Name: "community", IsActive: true}, nil)
	rooms.On("ListMessages", mock.Anything, roomID).
		Return([]chat.Message{{ID: uuid.New(), RoomID: roomID, SenderName: "Amina", Content: "hello"}}, nil)

	r := setupRouter(rooms, users, new(presenceReaderMock), uuid.Nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			RoomID   string            `json:"roomId"`
			Messages []json.RawMessage `json:"messages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, roomID.String(), body.Data.RoomID)
	assert.Len(t, body.Data.Messages, 1)
}

func TestPresenceReturnsOnlineUsers(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	presence := new(presenceReaderMock)
	roomID := uuid.New()
	online := []string{uuid.New().String(), uuid.New().String()}

	rooms.On("GetOrCreateActiveRoom", mock.Anything, "community").
		Return(chat.Room{ID: roomID, Name: "community", IsActive: true}, nil)
	presence.On("OnlineUsers", mock.Anything, roomID.String()).Return(online, nil)
	presence.On("OnlineCount", mock.Anything, roomID.String()).Return(int64(2), nil)

	r := setupRouter(rooms, new(mocks.UserRepositoryMock), presence, uuid.Nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/presence", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			RoomID string   `json:"roomId"`
			Online []string `json:"online"`
			Count  int64    `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, roomID.String(), body.Data.RoomID)
	assert.Equal(t, online, body.Data.Online)
	assert.Equal(t, int64(2), body.Data.Count)
}

func TestGetMessageInvalidID(t *testing.T) {
	r := setupRouter(new(mocks.RoomRepositoryMock), new(mocks.UserRepositoryMock), new(presenceReaderMock), uuid.Nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/message/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMessageNotFound(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messageID := uuid.New()
	rooms.On("GetMessage", mock.Anything, messageID).
		Return(chat.Message{}, chat_errors.ErrMessageNotFound)

	r := setupRouter(rooms, new(mocks.UserRepositoryMock), new(presenceReaderMock), uuid.Nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/message/"+messageID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMessage(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	roomID := uuid.New()
	messageID := uuid.New()

	rooms.On("GetMessage", mock.Anything, messageID).
		Return(chat.Message{ID: messageID, RoomID: roomID}, nil)
	rooms.On("DeleteMessage", mock.Anything, messageID).Return(nil)

	r := setupRouter(rooms, new(mocks.UserRepositoryMock), new(presenceReaderMock), uuid.Nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/chat/message/"+messageID.String(), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	rooms.AssertCalled(t, "DeleteMessage", mock.Anything, messageID)
}

func TestMarkReadRequiresUser(t *testing.T) {
	r := setupRouter(new(mocks.RoomRepositoryMock), new(mocks.UserRepositoryMock), new(presenceReaderMock), uuid.Nil)
	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"messageIds":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/read", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMarkReadAcknowledgesBatch(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	rooms.On("MarkRead", mock.Anything, userID, []uuid.UUID{first, second}).Return(nil)

	r := setupRouter(rooms, new(mocks.UserRepositoryMock), new(presenceReaderMock), userID)
	w := httptest.NewRecorder()
	payload, err := json.Marshal(gin.H{"messageIds": []string{first.String(), second.String(), "junk"}})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/read", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	rooms.AssertCalled(t, "MarkRead", mock.Anything, userID, []uuid.UUID{first, second})
}
