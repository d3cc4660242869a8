package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/service"
	"linkup-service/pkg/response"
)

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrGroupTooSmall):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrChatNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotMember):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrNotFollowing),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrNotGroupChat):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidCode):
		response.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotVerified):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrResendLimit):
		response.Error(c, http.StatusTooManyRequests, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "something went wrong")
	}
}
