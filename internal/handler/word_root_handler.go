package handler

import (
	"net/http"

	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/internal/service"

	"github.com/gin-gonic/gin"
)

// WordRootHandler 负责处理标准词根的管理接口。
type WordRootHandler struct {
	rootService service.WordRootService
}

// NewWordRootHandler 创建一个新的 WordRootHandler 实例。
func NewWordRootHandler(rootService service.WordRootService) *WordRootHandler {
	return &WordRootHandler{rootService: rootService}
}

// Create 处理 POST /api/admin/roots。
// 向量同步失败时关系库写入仍然生效，响应中 vector_synced 为 false。
func (h *WordRootHandler) Create(c *gin.Context) {
	var req model.CreateWordRoot
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	root, synced, err := h.rootService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": root, "vector_synced": synced})
}

// BatchImport 处理 POST /api/admin/roots/batch。
func (h *WordRootHandler) BatchImport(c *gin.Context) {
	var items []model.CreateWordRoot
	if err := c.ShouldBindJSON(&items); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	result, err := h.rootService.BatchImport(c.Request.Context(), items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List 处理 GET /api/admin/roots。
func (h *WordRootHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	resp, err := h.rootService.List(page, pageSize, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get 处理 GET /api/admin/roots/:id。
func (h *WordRootHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	root, err := h.rootService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, root)
}

// Update 处理 PUT /api/admin/roots/:id。
func (h *WordRootHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req model.CreateWordRoot
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	root, synced, err := h.rootService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": root, "vector_synced": synced})
}

// Delete 处理 DELETE /api/admin/roots/:id。
func (h *WordRootHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	synced, err := h.rootService.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功", "vector_synced": synced})
}

// ClearAll 处理 DELETE /api/admin/roots/clear。
func (h *WordRootHandler) ClearAll(c *gin.Context) {
	if err := h.rootService.ClearAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "词根数据已清空"})
}
