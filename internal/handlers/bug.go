package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/songyu/bugtrack/internal/middleware"
	"github.com/songyu/bugtrack/internal/models"
	"github.com/songyu/bugtrack/internal/services"
	"github.com/songyu/bugtrack/pkg/response"
)

type BugHandler struct {
	bugs *services.BugService
	auth *services.AuthService
}

func NewBugHandler(bugs *services.BugService, auth *services.AuthService) *BugHandler {
	return &BugHandler{bugs: bugs, auth: auth}
}

type CreateBugRequest struct {
	Title        string `json:"title" binding:"required,min=1,max=200"`
	Description  string `json:"description" binding:"required"`
	Version      string `json:"version"`
	Region       string `json:"region"`
	AssigneeName string `json:"assignee_name"`
	Status       string `json:"status" binding:"omitempty,oneof=pending urgent normal low resolved"`
	Screenshot   string `json:"screenshot"`
	LogFile      string `json:"log_file"`
}

// requesterName returns the display name the authenticated user submits
// bugs under, matching how ownership is recorded on the record.
func (h *BugHandler) requesterName(c *gin.Context) (string, error) {
	user, err := h.auth.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		return "", err
	}
	if user == nil {
		return middleware.GetUsername(c), nil
	}
	return user.DisplayName(), nil
}

func (h *BugHandler) Create(c *gin.Context) {
	var req CreateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	submitter, err := h.requesterName(c)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	id, err := h.bugs.Create(services.BugCreate{
		Title:        req.Title,
		Description:  req.Description,
		Version:      req.Version,
		Region:       req.Region,
		Submitter:    submitter,
		AssigneeName: req.AssigneeName,
		Status:       req.Status,
		Screenshot:   req.Screenshot,
		LogFile:      req.LogFile,
	})
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, gin.H{"id": id})
}

// List returns bug summaries, optionally scoped to a submitter or an
// assignee via query parameters.
func (h *BugHandler) List(c *gin.Context) {
	var (
		bugs []services.BugSummary
		err  error
	)
	switch {
	case c.Query("submitter") != "":
		bugs, err = h.bugs.ListBySubmitter(c.Query("submitter"))
	case c.Query("assignee") != "":
		bugs, err = h.bugs.ListByAssignee(c.Query("assignee"))
	default:
		bugs, err = h.bugs.List()
	}
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"items": bugs, "total": len(bugs)})
}

func (h *BugHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bug id")
		return
	}

	bug, err := h.bugs.GetByID(uint(id))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if bug == nil {
		response.NotFound(c, "bug not found")
		return
	}
	response.Success(c, bug)
}

func (h *BugHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bug id")
		return
	}

	bug, err := h.bugs.GetByID(uint(id))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if bug == nil {
		response.NotFound(c, "bug not found")
		return
	}

	requester, err := h.requesterName(c)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if !services.Authorize(middleware.GetRole(c), services.ActionEditBug, bug.Submitter, requester) {
		response.Forbidden(c, "no permission to edit this bug")
		return
	}

	var req services.BugUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ok, err := h.bugs.Update(uint(id), req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if !ok {
		response.NotFound(c, "bug not found")
		return
	}
	response.Success(c, gin.H{"message": "bug updated"})
}

type SetStatusRequest struct {
	Status       string `json:"status" binding:"required,oneof=pending urgent normal low resolved"`
	AssigneeName string `json:"assignee_name"`
}

// SetStatus is the quick status flip used by the resolve and reassign
// actions. Unlike a full update it always stamps the resolution time.
func (h *BugHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bug id")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.Status != models.BugStatusResolved &&
		!services.HasPermission(middleware.GetRole(c), services.ActionEditBug) {
		response.Forbidden(c, "no permission to change bug status")
		return
	}

	ok, err := h.bugs.SetStatus(uint(id), req.Status, req.AssigneeName)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if !ok {
		response.NotFound(c, "bug not found")
		return
	}
	response.Success(c, gin.H{"message": "status updated"})
}

func (h *BugHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bug id")
		return
	}

	ok, err := h.bugs.Delete(uint(id))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if !ok {
		response.NotFound(c, "bug not found")
		return
	}
	response.Success(c, gin.H{"message": "bug deleted"})
}

func (h *BugHandler) Stats(c *gin.Context) {
	stats, err := h.bugs.Stats()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, stats)
}
