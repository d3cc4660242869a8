package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/api/middleware"
	"linkup-service/internal/models"
	"linkup-service/internal/service"
	"linkup-service/pkg/response"
)

type MessageHandler struct {
	messages service.MessageService
}

func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// History godoc
// @Summary      Page through a chat's messages, newest first
// @Tags         messages
// @Produce      json
// @Param        chatId path string true "chat id"
// @Param        before query string false "RFC3339 cursor"
// @Success      200 {array} models.Message
// @Security     BearerAuth
// @Router       /chats/{chatId}/messages [get]
func (h *MessageHandler) History(c *gin.Context) {
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = &ts
	}
	_, limit := pagination(c, 50)

	messages, err := h.messages.History(c.Request.Context(), c.Param("chatId"), middleware.UserID(c), limit, before)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Send is the REST fallback for clients whose socket dropped; it
// persists the message without fan-out, and the reconnect refetch
// picks it up everywhere else.
func (h *MessageHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	req.Sender = middleware.UserID(c)

	msg, err := h.messages.SaveMessage(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkRead marks every unread message in a chat as read by the caller.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	modified, err := h.messages.MarkChatRead(c.Request.Context(), c.Param("chatId"), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "modified": modified})
}

// MarkSeen records a single read receipt.
func (h *MessageHandler) MarkSeen(c *gin.Context) {
	var req models.MessageSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.messages.MarkSeen(c.Request.Context(), req.MessageID, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if msg == nil {
		// Own message or unknown id: acknowledged, nothing changed.
		response.OK(c, http.StatusOK, "no receipt recorded")
		return
	}
	c.JSON(http.StatusOK, msg)
}
