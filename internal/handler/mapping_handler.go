package handler

import (
	"net/http"

	"datastd-go/internal/errs"
	"datastd-go/internal/service"

	"github.com/gin-gonic/gin"
)

// MappingHandler 负责处理词根映射建议与标准化申请任务的接口。
type MappingHandler struct {
	mappingService service.MappingService
}

// NewMappingHandler 创建一个新的 MappingHandler 实例。
func NewMappingHandler(mappingService service.MappingService) *MappingHandler {
	return &MappingHandler{mappingService: mappingService}
}

// Suggest 处理 GET /api/admin/suggest?q=。
func (h *MappingHandler) Suggest(c *gin.Context) {
	segments, err := h.mappingService.SuggestRoots(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": segments})
}

// submitTaskRequest 是提交标准化申请的请求体。
type submitTaskRequest struct {
	FieldName string `json:"field_name" binding:"required"`
	Submitter string `json:"submitter"`
}

// SubmitTask 处理 POST /api/public/tasks。
func (h *MappingHandler) SubmitTask(c *gin.Context) {
	var req submitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	task, err := h.mappingService.SubmitTask(req.FieldName, req.Submitter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListTasks 处理 GET /api/admin/tasks。
func (h *MappingHandler) ListTasks(c *gin.Context) {
	page, pageSize := parsePagination(c)
	resp, err := h.mappingService.ListTasks(page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CountUnprocessedTasks 处理 GET /api/admin/tasks/count。
func (h *MappingHandler) CountUnprocessedTasks(c *gin.Context) {
	count, err := h.mappingService.CountUnprocessedTasks()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unprocessed_count": count})
}

// ProcessTask 处理 PUT /api/admin/tasks/:id。
func (h *MappingHandler) ProcessTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	task, err := h.mappingService.MarkTaskProcessed(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
