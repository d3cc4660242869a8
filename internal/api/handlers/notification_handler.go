package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/api/middleware"
	"linkup-service/internal/service"
	"linkup-service/pkg/response"
)

type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.notifications.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), middleware.UserID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "notifications read")
}
