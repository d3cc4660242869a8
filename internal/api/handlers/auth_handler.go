package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/models"
	"linkup-service/internal/service"
	"linkup-service/pkg/response"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates an unverified account and emails a verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.RegisterRequest true "registration payload"
// @Success      201 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.Register(c.Request.Context(), &req); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "verification code sent")
}

// Verify godoc
// @Summary      Verify an account with the emailed code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.VerifyRequest true "email and code"
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.Verify(c.Request.Context(), &req); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "account verified")
}

func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.ResendCode(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "verification code resent")
}

// SetUsername godoc
// @Summary      Claim a username and log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.UsernameRequest true "username payload"
// @Success      200 {object} models.LoginResponse
// @Failure      409 {object} map[string]interface{}
// @Router       /auth/username [post]
func (h *AuthHandler) SetUsername(c *gin.Context) {
	var req models.UsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.auth.SetUsername(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.LoginRequest true "credentials"
// @Success      200 {object} models.LoginResponse
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "reset code sent")
}

func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.VerifyResetCode(c.Request.Context(), &req); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "code verified")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), &req); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, http.StatusOK, "password updated")
}
