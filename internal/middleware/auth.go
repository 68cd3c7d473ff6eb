package middleware

import (
	"net/http"
	"strings"

	"datastd-go/internal/service"
	"datastd-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验请求头中的 Bearer token，并把对应用户加载到上下文。
// 后续处理器与 AdminAuthMiddleware 通过 c.Get("user") 获取 *model.User。
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少认证信息"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "认证信息格式错误"})
			return
		}

		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效或过期的 token"})
			return
		}

		// token 有效但用户可能已被删除，以数据库中的当前状态为准
		user, err := userService.GetProfile(claims.Username)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
