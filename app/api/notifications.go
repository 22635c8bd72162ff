package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.notifications.ListNotifications(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, "list_notifications", err)
		return
	}
	c.JSON(http.StatusOK, toNotificationResponses(notifications))
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.notifications.MarkNotificationRead(c.Request.Context(), c.Param("id"), currentUser(c).ID); err != nil {
		writeError(c, "mark_notification_read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := h.notifications.MarkAllNotificationsRead(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, "mark_all_notifications_read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
