// Package handler 包含了所有 HTTP 请求的处理器。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"datastd-go/internal/errs"
	"datastd-go/pkg/log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError 把业务错误映射到 HTTP 状态码：
// 校验错误 400，记录不存在 404，其余一律 500 并记录日志。
func respondError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Errorf("请求处理失败: %s %s, error: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
	}
}

// parseIDParam 解析路径中的 :id 参数。
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 ID"})
		return 0, false
	}
	return uint(id), true
}

// parsePagination 解析 page/page_size 查询参数并套用默认值与上限。
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
