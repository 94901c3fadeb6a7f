package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/songyu/bugtrack/internal/services"
	"github.com/songyu/bugtrack/pkg/response"
)

type DeveloperHandler struct {
	developers *services.DeveloperService
}

func NewDeveloperHandler(developers *services.DeveloperService) *DeveloperHandler {
	return &DeveloperHandler{developers: developers}
}

type CreateDeveloperRequest struct {
	Name   string  `json:"name" binding:"required,min=1,max=100"`
	Email  *string `json:"email"`
	Role   string  `json:"role"`
	Status string  `json:"status" binding:"omitempty,oneof=active departed probation"`
}

func (h *DeveloperHandler) Create(c *gin.Context) {
	var req CreateDeveloperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.developers.Create(req.Name, req.Email, req.Role, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Conflict(c, "developer name or email already exists")
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, gin.H{"id": id})
}

func (h *DeveloperHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	devs, total, err := h.developers.List(
		c.Query("search"),
		c.Query("role"),
		c.Query("status"),
		page, pageSize,
	)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{
		"items":     devs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *DeveloperHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid developer id")
		return
	}

	dev, err := h.developers.GetByID(uint(id))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if dev == nil {
		response.NotFound(c, "developer not found")
		return
	}
	response.Success(c, dev)
}

func (h *DeveloperHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid developer id")
		return
	}

	var req services.DeveloperUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ok, err := h.developers.Update(uint(id), req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Conflict(c, "developer name or email already exists")
			return
		}
		response.ServerError(c, err.Error())
		return
	}
	if !ok {
		response.NotFound(c, "developer not found")
		return
	}
	response.Success(c, gin.H{"message": "developer updated"})
}

func (h *DeveloperHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid developer id")
		return
	}

	ok, err := h.developers.Delete(uint(id))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if !ok {
		response.Conflict(c, "developer has assigned bugs and cannot be deleted")
		return
	}
	response.Success(c, gin.H{"message": "developer deleted"})
}
