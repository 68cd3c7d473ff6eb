package handler

import (
	"net/http"

	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/internal/service"

	"github.com/gin-gonic/gin"
)

// FieldHandler 负责处理标准字段的管理接口。
type FieldHandler struct {
	fieldService service.FieldService
}

// NewFieldHandler 创建一个新的 FieldHandler 实例。
func NewFieldHandler(fieldService service.FieldService) *FieldHandler {
	return &FieldHandler{fieldService: fieldService}
}

// Create 处理 POST /api/admin/fields。
func (h *FieldHandler) Create(c *gin.Context) {
	var req model.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	field, synced, err := h.fieldService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": field, "vector_synced": synced})
}

// List 处理 GET /api/admin/fields。
func (h *FieldHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	resp, err := h.fieldService.List(page, pageSize, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDetails 处理 GET /api/admin/fields/:id，
// 返回字段本体及按 composition_ids 顺序排列的词根明细。
func (h *FieldHandler) GetDetails(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	field, err := h.fieldService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	roots, err := h.fieldService.GetDetails(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": field, "composition": roots})
}

// Update 处理 PUT /api/admin/fields/:id。
func (h *FieldHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req model.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	field, synced, err := h.fieldService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": field, "vector_synced": synced})
}

// Delete 处理 DELETE /api/admin/fields/:id。
func (h *FieldHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	synced, err := h.fieldService.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功", "vector_synced": synced})
}

// ClearAll 处理 DELETE /api/admin/fields/clear。
func (h *FieldHandler) ClearAll(c *gin.Context) {
	if err := h.fieldService.ClearAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "标准字段数据已清空"})
}
