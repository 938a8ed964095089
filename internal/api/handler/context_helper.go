package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/internal/api/middleware"
	"research-agenda/backend/pkg/jwt"
	"research-agenda/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果认证中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "未登录")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		response.Unauthorized(c, response.CodeUnauthorized, "未登录")
		return 0, false
	}
	return id, true
}

// GetClaims 取出当前会话声明；匿名请求返回 nil
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(middleware.ContextClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// parseID 解析路径参数 :id，非法时写入 400
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, []response.FieldError{{
			Field:   "id",
			Rule:    "min",
			Message: "ID 必须为正整数",
		}})
		return 0, false
	}
	return id, true
}
