package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"communication-service/internal/directory"
	"communication-service/internal/models"
	"communication-service/internal/repositories"
	"communication-service/internal/service"
	"communication-service/internal/telemetry"
	"communication-service/internal/ws"
)

type chatRegistry interface {
	CreateRoom(ctx context.Context, roomType string, participants []int, courseID int, title string) (models.ChatRoom, error)
}

type messageAppender interface {
	AppendMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error)
}

type historyProjector interface {
	RoomHistory(ctx context.Context, roomID int) (models.RoomView, error)
	RoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error)
}

type accessGuard interface {
	IsParticipant(ctx context.Context, roomID int, userID int) (bool, error)
}

// ChatHandler manages chat room endpoints.
type ChatHandler struct {
	registry  chatRegistry
	appender  messageAppender
	projector historyProjector
	guard     accessGuard
	hub       *ws.Hub
	audit     *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(registry chatRegistry, appender messageAppender, projector historyProjector, guard accessGuard, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		registry:  registry,
		appender:  appender,
		projector: projector,
		guard:     guard,
		hub:       hub,
		audit:     audit,
	}
}

// CreateChat creates a chat room for a participant set within a course.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req struct {
		Type         string `json:"type" binding:"required"`
		Participants []int  `json:"participants" binding:"required"`
		CourseID     int    `json:"course_id" binding:"required"`
		Title        string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.registry.CreateRoom(c.Request.Context(), req.Type, req.Participants, req.CourseID, req.Title)
	if err != nil {
		h.emitAudit(c, "ERROR", "chat room creation failed")
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.emitAudit(c, "INFO", "Chat room created")
	c.JSON(http.StatusCreated, room)
}

// ListMyChats returns every room containing the authenticated user.
func (h *ChatHandler) ListMyChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chats, err := h.projector.RoomsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetChatHistory returns the resolved history view of a room.
func (h *ChatHandler) GetChatHistory(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !h.requireParticipant(c, roomID, userID) {
		return
	}

	view, err := h.projector.RoomHistory(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// PostChatMessage appends a message to a room and broadcasts it.
func (h *ChatHandler) PostChatMessage(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !h.requireParticipant(c, roomID, userID) {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.appender.AppendMessage(c.Request.Context(), roomID, userID, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "message append failed")
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastRoomMessage(roomID, msg)
	}
	h.emitAudit(c, "INFO", "Message appended")
	c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) requireParticipant(c *gin.Context, roomID, userID int) bool {
	member, err := h.guard.IsParticipant(c.Request.Context(), roomID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat room not found"})
		return false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
		return false
	}
	return true
}

func (h *ChatHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func parseRoomID(c *gin.Context) (int, bool) {
	roomID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, false
	}
	return roomID, true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrRoomExists):
		return http.StatusConflict
	case errors.Is(err, repositories.ErrRoomNotFound),
		errors.Is(err, directory.ErrUserNotFound),
		errors.Is(err, directory.ErrCourseNotFound),
		errors.Is(err, repositories.ErrNotificationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
