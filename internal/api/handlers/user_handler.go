package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/adapters/storage"
	"linkup-service/internal/api/middleware"
	"linkup-service/internal/models"
	"linkup-service/internal/service"
	"linkup-service/pkg/logger"
	"linkup-service/pkg/response"
)

type UserHandler struct {
	users   service.UserService
	avatars *storage.AvatarStore
	log     *logger.Logger
}

func NewUserHandler(users service.UserService, avatars *storage.AvatarStore, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, avatars: avatars, log: log}
}

// Search godoc
// @Summary      Search users by name or username
// @Tags         users
// @Produce      json
// @Param        q query string true "search text"
// @Success      200 {array} models.PublicUser
// @Security     BearerAuth
// @Router       /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	skip, limit := pagination(c, 20)
	results, err := h.users.Search(c.Request.Context(), middleware.UserID(c), c.Query("q"), skip, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *UserHandler) MyInfo(c *gin.Context) {
	user, err := h.users.MyInfo(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Profile godoc
// @Summary      Public profile with relation and presence
// @Tags         users
// @Produce      json
// @Param        username path string true "username"
// @Success      200 {object} models.ProfileInfo
// @Security     BearerAuth
// @Router       /users/{username} [get]
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), middleware.UserID(c), c.Param("username"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.users.Subscribe(c.Request.Context(), middleware.UserID(c), req.Subscription); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "subscribed")
}

// UploadAvatar stores the image and points the profile at it.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "missing avatar file")
		return
	}

	objectName, err := h.avatars.Upload(c.Request.Context(), file)
	if err != nil {
		h.log.Error("upload avatar", "error", err)
		response.Error(c, http.StatusInternalServerError, "upload failed")
		return
	}

	url := h.avatars.URL(objectName)
	if err := h.users.UpdateAvatar(c.Request.Context(), middleware.UserID(c), url); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "avatar": url})
}

// ServeAvatar streams a stored avatar object.
func (h *UserHandler) ServeAvatar(c *gin.Context) {
	objectName := c.Param("object")
	if len(objectName) > 0 && objectName[0] == '/' {
		objectName = objectName[1:]
	}

	obj, err := h.avatars.Fetch(c.Request.Context(), objectName)
	if err != nil {
		response.Error(c, http.StatusNotFound, "avatar not found")
		return
	}
	defer obj.Close()

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj); err != nil {
		h.log.Warn("stream avatar", "object", objectName, "error", err)
	}
}

// pagination reads skip/limit query params with a default page size.
func pagination(c *gin.Context, defaultLimit int64) (skip, limit int64) {
	skip, _ = strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	return skip, limit
}
