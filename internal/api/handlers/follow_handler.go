package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/api/middleware"
	"linkup-service/internal/service"
	"linkup-service/pkg/response"
)

type FollowHandler struct {
	follows service.FollowService
}

func NewFollowHandler(follows service.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

type followTarget struct {
	UserID string `json:"userId" binding:"required"`
}

// Follow godoc
// @Summary      Follow a user
// @Tags         follows
// @Accept       json
// @Produce      json
// @Param        request body handlers.followTarget true "target user"
// @Success      200 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /follows [post]
func (h *FollowHandler) Follow(c *gin.Context) {
	var req followTarget
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.follows.Follow(c.Request.Context(), middleware.UserID(c), req.UserID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "followed")
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	if err := h.follows.Unfollow(c.Request.Context(), middleware.UserID(c), c.Param("userId")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "unfollowed")
}

func (h *FollowHandler) Status(c *gin.Context) {
	status, err := h.follows.Status(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *FollowHandler) Followers(c *gin.Context) {
	skip, limit := pagination(c, 20)
	users, err := h.follows.Followers(c.Request.Context(), c.Param("userId"), middleware.UserID(c), skip, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *FollowHandler) Following(c *gin.Context) {
	skip, limit := pagination(c, 20)
	users, err := h.follows.Following(c.Request.Context(), c.Param("userId"), middleware.UserID(c), skip, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Mutuals lists users who follow the caller back, the candidate pool
// for group chats.
func (h *FollowHandler) Mutuals(c *gin.Context) {
	users, err := h.follows.Mutuals(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
