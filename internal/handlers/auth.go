package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/songyu/bugtrack/internal/config"
	"github.com/songyu/bugtrack/internal/middleware"
	"github.com/songyu/bugtrack/internal/services"
	"github.com/songyu/bugtrack/internal/utils"
	"github.com/songyu/bugtrack/pkg/response"
)

type AuthHandler struct {
	auth *services.AuthService
	jwt  *config.JWTConfig
}

func NewAuthHandler(auth *services.AuthService, jwtCfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwtCfg}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid username or password")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, h.jwt.ExpireHour)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"token":     token,
		"user":      user,
		"expire_at": time.Now().Add(time.Duration(h.jwt.ExpireHour) * time.Hour),
	})
}

// GetCurrentUser returns the authenticated user's record.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.auth.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword lets the authenticated user rotate their own password
// after proving the old one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	if _, err := h.auth.Authenticate(user.Username, req.OldPassword); err != nil {
		response.BadRequest(c, "incorrect old password")
		return
	}

	if _, err := h.auth.ChangePassword(user.ID, req.NewPassword); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "password changed"})
}
