package handler

import (
	"net/http"

	"datastd-go/internal/errs"
	"datastd-go/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责处理用户认证与管理接口。
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// credentialsRequest 是注册与登录共用的请求体。
type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup 处理 POST /api/auth/signup。
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	user, err := h.userService.Register(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login 处理 POST /api/auth/login。
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	accessToken, refreshToken, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		// 凭证错误统一返回 401，不向调用方泄露用户是否存在
		if errs.IsValidation(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// createUserRequest 是管理员创建用户的请求体。
type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// CreateUser 处理 POST /api/admin/users。
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	user, err := h.userService.Register(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Role != "" && req.Role != user.Role {
		user, err = h.userService.UpdateUserRole(user.ID, req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers 处理 GET /api/admin/users。
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}

// updateRoleRequest 是更新用户角色的请求体。
type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateUserRole 处理 PUT /api/admin/users/:id。
func (h *AuthHandler) UpdateUserRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.NewValidation("无效的请求参数: "+err.Error()))
		return
	}

	user, err := h.userService.UpdateUserRole(id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser 处理 DELETE /api/admin/users/:id。
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}
