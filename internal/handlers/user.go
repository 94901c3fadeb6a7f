package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/songyu/bugtrack/internal/services"
	"github.com/songyu/bugtrack/pkg/response"
)

type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

type CreateUserRequest struct {
	Username string  `json:"username" binding:"required,min=2,max=50"`
	Password string  `json:"password" binding:"required,min=6"`
	Role     string  `json:"role" binding:"required,oneof=admin pm developer tester guest"`
	Email    *string `json:"email"`
	RealName string  `json:"real_name"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.auth.CreateUser(req.Username, req.Password, req.Role, req.Email, req.RealName)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Conflict(c, "username or email already exists")
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, gin.H{"id": id})
}

func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, total, err := h.auth.ListUsers(c.Query("search"), c.Query("role"), page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{
		"items":     users,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.auth.GetUserByID(uint(id))
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

func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req services.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ok, err := h.auth.UpdateUser(uint(id), req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Conflict(c, "username or email already exists")
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	if !ok {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, gin.H{"message": "user updated"})
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ResetPassword sets a user's password without requiring the old one.
// Admin only.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ok, err := h.auth.ChangePassword(uint(id), req.NewPassword)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if !ok {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, gin.H{"message": "password reset"})
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	ok, err := h.auth.DeleteUser(uint(id))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if !ok {
		response.Conflict(c, "user not found or is the last active admin")
		return
	}
	response.Success(c, gin.H{"message": "user deactivated"})
}
