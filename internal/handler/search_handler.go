package handler

import (
	"net/http"
	"strconv"

	"datastd-go/internal/service"
	"datastd-go/pkg/database"

	"github.com/gin-gonic/gin"
)

// SearchHandler 负责处理面向业务方的公开检索接口。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchFields 处理 GET /api/public/search?q=。
func (h *SearchHandler) SearchFields(c *gin.Context) {
	results, err := h.searchService.SearchFields(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// SimilarRoots 处理 GET /api/public/similar-roots?q=&top_k=。
func (h *SearchHandler) SimilarRoots(c *gin.Context) {
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "0"))
	results, err := h.searchService.SimilarRoots(c.Request.Context(), c.Query("q"), topK)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Health 处理 GET /api/public/health，探测 MySQL 连接。
func (h *SearchHandler) Health(c *gin.Context) {
	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
