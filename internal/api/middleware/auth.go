package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/pkg/jwt"
	"research-agenda/backend/pkg/response"
)

// 上下文键
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// InternalTokenHeader 外部定时器触发提醒周期时携带的请求头
const InternalTokenHeader = "X-Internal-Token"

// Blacklist 会话黑名单查询
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth 会话认证中间件
// 优先读取会话 Cookie，其次 Authorization: Bearer <token>；
// blacklist 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, cookieName string, blacklist Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, cookieName)
		if token == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "未登录")
			c.Abort()
			return
		}

		claims, ok := verify(c, jwtMgr, blacklist, token)
		if !ok {
			response.Unauthorized(c, response.CodeUnauthorized, "会话无效或已过期")
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证：会话有效时注入用户信息，否则按匿名继续
func OptionalAuth(jwtMgr *jwt.Manager, cookieName string, blacklist Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c, cookieName); token != "" {
			if claims, ok := verify(c, jwtMgr, blacklist, token); ok {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "未登录")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "无权限访问")
		c.Abort()
	}
}

// InternalOrRole 允许携带正确内部令牌的调用方，或具有指定角色的已登录用户
// internalToken 为空时仅按角色放行
func InternalOrRole(internalToken string, allowedRoles ...string) gin.HandlerFunc {
	roleCheck := RoleAuth(allowedRoles...)
	return func(c *gin.Context) {
		if internalToken != "" {
			got := c.GetHeader(InternalTokenHeader)
			if got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(internalToken)) == 1 {
				c.Next()
				return
			}
		}
		roleCheck(c)
	}
}

// ── 内部辅助方法 ──

func extractToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func verify(c *gin.Context, jwtMgr *jwt.Manager, blacklist Blacklist, token string) (*jwt.Claims, bool) {
	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		return nil, false
	}
	if blacklist != nil && claims.ID != "" {
		// Redis 出错时降级放行
		revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		if err == nil && revoked {
			return nil, false
		}
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextClaims, claims)
}
