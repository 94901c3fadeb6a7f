package handlers

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/songyu/bugtrack/internal/services"
	"github.com/songyu/bugtrack/pkg/response"
)

// maxUploadSize caps bug attachments at 10 MB.
const maxUploadSize = 10 << 20

type UploadHandler struct {
	storage *services.StorageService
	export  *services.ExportService
}

func NewUploadHandler(storage *services.StorageService, export *services.ExportService) *UploadHandler {
	return &UploadHandler{storage: storage, export: export}
}

// Upload receives a bug attachment (screenshot or log file) and returns
// the stored path for embedding in the bug record.
func (h *UploadHandler) Upload(c *gin.Context) {
	kind := c.DefaultPostForm("kind", "attachment")
	if kind != "screenshot" && kind != "log" && kind != "attachment" {
		response.BadRequest(c, "kind must be screenshot, log or attachment")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.BadRequest(c, "file exceeds 10MB limit")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	path, err := h.storage.SaveUpload(data, fileHeader.Filename, kind)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, gin.H{"path": path})
}

// ExportBugs streams the full bug list as an xlsx download.
func (h *UploadHandler) ExportBugs(c *gin.Context) {
	data, err := h.export.ExportBugs()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	filename := fmt.Sprintf("bugs_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
