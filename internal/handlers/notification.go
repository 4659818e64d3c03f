package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"communication-service/internal/repositories"
)

// NotificationHandler exposes a recipient's notifications.
type NotificationHandler struct {
	store repositories.NotificationRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(store repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// ListNotifications returns the authenticated user's notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := c.GetInt("userID")

	notifications, err := h.store.ListForRecipient(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("notification_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.store.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not mark notification read"})
		return
	}
	c.Status(http.StatusNoContent)
}
