package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/api/middleware"
	"linkup-service/internal/models"
	"linkup-service/internal/service"
	"linkup-service/pkg/response"
)

type ChatHandler struct {
	chats  service.ChatService
	groups service.GroupService
}

func NewChatHandler(chats service.ChatService, groups service.GroupService) *ChatHandler {
	return &ChatHandler{chats: chats, groups: groups}
}

// List godoc
// @Summary      List the caller's chats with unread counts
// @Tags         chats
// @Produce      json
// @Success      200 {object} models.ChatListResponse
// @Security     BearerAuth
// @Router       /chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	list, err := h.chats.ListChats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ChatHandler) Get(c *gin.Context) {
	chat, err := h.chats.GetChat(c.Request.Context(), c.Param("chatId"), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// Start godoc
// @Summary      Open or create a direct chat with another user
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        request body handlers.startChatRequest true "other user"
// @Success      200 {object} models.ChatResponse
// @Security     BearerAuth
// @Router       /chats [post]
func (h *ChatHandler) Start(c *gin.Context) {
	var req startChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	chat, err := h.chats.StartDirectChat(c.Request.Context(), middleware.UserID(c), req.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

type startChatRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	group, err := h.groups.CreateGroup(c.Request.Context(), middleware.UserID(c), req.UserIDs)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *ChatHandler) RenameGroup(c *gin.Context) {
	var req models.RenameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	group, err := h.groups.Rename(c.Request.Context(), c.Param("chatId"), req.GroupName, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *ChatHandler) AddGroupMembers(c *gin.Context) {
	var req models.AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	group, err := h.groups.AddMembers(c.Request.Context(), req.GroupID, req.UserIDs)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *ChatHandler) LeaveGroup(c *gin.Context) {
	if err := h.groups.Leave(c.Request.Context(), c.Param("chatId"), middleware.UserID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "left group")
}
