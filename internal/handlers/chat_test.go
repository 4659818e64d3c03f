package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"communication-service/internal/mocks"
	"communication-service/internal/models"
	"communication-service/internal/repositories"
	"communication-service/internal/service"
)

func setupChatRouter(h *ChatHandler, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	router.POST("/chats", h.CreateChat)
	router.GET("/chats", h.ListMyChats)
	router.GET("/chats/:chat_id", h.GetChatHistory)
	router.POST("/chats/:chat_id/messages", h.PostChatMessage)
	return router
}

func TestCreateChat(t *testing.T) {
	registry := new(mocks.RegistryMock)
	h := NewChatHandler(registry, nil, nil, nil, nil, nil)
	router := setupChatRouter(h, 1)

	room := models.ChatRoom{ID: 9, Type: models.RoomTypeGroup, CourseID: 4, Title: "study group", Participants: []int{1, 2, 3}}
	registry.On("CreateRoom", mock.Anything, models.RoomTypeGroup, []int{1, 2, 3}, 4, "study group").Return(room, nil).Once()

	body := bytes.NewBufferString(`{"type":"group","participants":[1,2,3],"course_id":4,"title":"study group"}`)
	req := httptest.NewRequest(http.MethodPost, "/chats", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":9`)
	registry.AssertExpectations(t)
}

func TestCreateChatMissingFields(t *testing.T) {
	registry := new(mocks.RegistryMock)
	h := NewChatHandler(registry, nil, nil, nil, nil, nil)
	router := setupChatRouter(h, 1)

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"type":"group"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	registry.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateChatDuplicateConflicts(t *testing.T) {
	registry := new(mocks.RegistryMock)
	h := NewChatHandler(registry, nil, nil, nil, nil, nil)
	router := setupChatRouter(h, 1)

	registry.On("CreateRoom", mock.Anything, models.RoomTypePrivate, []int{1, 2}, 4, "").Return(models.ChatRoom{}, repositories.ErrRoomExists).Once()

	body := bytes.NewBufferString(`{"type":"private","participants":[1,2],"course_id":4}`)
	req := httptest.NewRequest(http.MethodPost, "/chats", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListMyChats(t *testing.T) {
	projector := new(mocks.ProjectorMock)
	h := NewChatHandler(nil, nil, projector, nil, nil, nil)
	router := setupChatRouter(h, 1)

	projector.On("RoomsForUser", mock.Anything, 1).Return([]models.RoomSummary{{RoomID: 7, Title: "Algebra"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Algebra"`)
	projector.AssertExpectations(t)
}

func TestGetChatHistory(t *testing.T) {
	projector := new(mocks.ProjectorMock)
	guard := new(mocks.GuardMock)
	h := NewChatHandler(nil, nil, projector, guard, nil, nil)
	router := setupChatRouter(h, 1)

	view := models.RoomView{RoomID: 7, CourseTitle: "Linear Algebra", Messages: []models.MessageView{{ID: 10, SenderID: 2, SenderName: "Bob", Content: "hi"}}}
	guard.On("IsParticipant", mock.Anything, 7, 1).Return(true, nil).Once()
	projector.On("RoomHistory", mock.Anything, 7).Return(view, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Bob"`)
}

func TestGetChatHistoryNonMemberForbidden(t *testing.T) {
	projector := new(mocks.ProjectorMock)
	guard := new(mocks.GuardMock)
	h := NewChatHandler(nil, nil, projector, guard, nil, nil)
	router := setupChatRouter(h, 5)

	guard.On("IsParticipant", mock.Anything, 7, 5).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	projector.AssertNotCalled(t, "RoomHistory", mock.Anything, mock.Anything)
}

func TestGetChatHistoryUnknownRoom(t *testing.T) {
	guard := new(mocks.GuardMock)
	h := NewChatHandler(nil, nil, nil, guard, nil, nil)
	router := setupChatRouter(h, 1)

	guard.On("IsParticipant", mock.Anything, 99, 1).Return(false, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetChatHistoryInvalidID(t *testing.T) {
	h := NewChatHandler(nil, nil, nil, nil, nil, nil)
	router := setupChatRouter(h, 1)

	req := httptest.NewRequest(http.MethodGet, "/chats/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostChatMessage(t *testing.T) {
	appender := new(mocks.AppenderMock)
	guard := new(mocks.GuardMock)
	h := NewChatHandler(nil, appender, nil, guard, nil, nil)
	router := setupChatRouter(h, 1)

	msg := models.Message{ID: 42, RoomID: 7, SenderID: 1, Content: "hello"}
	guard.On("IsParticipant", mock.Anything, 7, 1).Return(true, nil).Once()
	appender.On("AppendMessage", mock.Anything, 7, 1, "hello").Return(msg, nil).Once()

	body := bytes.NewBufferString(`{"content":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/chats/7/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":42`)
	appender.AssertExpectations(t)
}

func TestPostChatMessageNonMemberForbidden(t *testing.T) {
	appender := new(mocks.AppenderMock)
	guard := new(mocks.GuardMock)
	h := NewChatHandler(nil, appender, nil, guard, nil, nil)
	router := setupChatRouter(h, 5)

	guard.On("IsParticipant", mock.Anything, 7, 5).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"content":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/chats/7/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	appender.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostChatMessageValidationError(t *testing.T) {
	appender := new(mocks.AppenderMock)
	guard := new(mocks.GuardMock)
	h := NewChatHandler(nil, appender, nil, guard, nil, nil)
	router := setupChatRouter(h, 1)

	guard.On("IsParticipant", mock.Anything, 7, 1).Return(true, nil).Once()
	appender.On("AppendMessage", mock.Anything, 7, 1, " ").Return(models.Message{}, service.ErrValidation).Once()

	body := bytes.NewBufferString(`{"content":" "}`)
	req := httptest.NewRequest(http.MethodPost, "/chats/7/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
