package handler

import (
	"net/http"

	"datastd-go/internal/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler 负责处理词汇快照导出接口。
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler 创建一个新的 ExportHandler 实例。
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export 处理 POST /api/admin/export。
func (h *ExportHandler) Export(c *gin.Context) {
	objectName, url, err := h.exportService.ExportSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"object_name": objectName, "download_url": url})
}
