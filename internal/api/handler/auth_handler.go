package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-agenda/backend/config"
	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/service"
	"research-agenda/backend/pkg/oidc"
	"research-agenda/backend/pkg/response"
)

const (
	stateCookieName   = "agenda_oidc_state"
	stateCookieMaxAge = 600
	stateCookiePath   = "/api/v1/auth"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	idp     IdentityProvider
	cfg     *config.AuthConfig
	logger  *zap.Logger
}

// NewAuthHandler 创建 AuthHandler；idp 为 nil 时登录入口返回 503
func NewAuthHandler(authSvc service.AuthService, idp IdentityProvider, cfg *config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, idp: idp, cfg: cfg, logger: logger}
}

// Login 跳转到身份提供方
// GET /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	if h.idp == nil {
		response.ServiceUnavailable(c, "未配置单点登录")
		return
	}

	state, err := oidc.GenerateState()
	if err != nil {
		h.logger.Error("生成 OIDC state 失败", zap.Error(err))
		response.InternalError(c)
		return
	}

	h.setCookie(c, stateCookieName, state, stateCookieMaxAge, stateCookiePath)
	c.Redirect(http.StatusFound, h.idp.AuthCodeURL(state))
}

// Callback 身份提供方回调：校验 state、换取身份、写入用户并下发会话 Cookie
// GET /api/v1/auth/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	if h.idp == nil {
		response.ServiceUnavailable(c, "未配置单点登录")
		return
	}

	var req dto.OIDCCallbackRequest
	if !bindQuery(c, &req) {
		return
	}

	expected, err := c.Cookie(stateCookieName)
	h.setCookie(c, stateCookieName, "", -1, stateCookiePath)
	if err != nil || expected == "" || expected != req.State {
		response.BadRequest(c, response.CodeInvalidParams, "登录状态校验失败，请重新登录")
		return
	}

	identity, err := h.idp.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		h.logger.Warn("OIDC 授权码换取失败", zap.Error(err))
		response.Unauthorized(c, response.CodeUnauthorized, "身份验证失败")
		return
	}

	method := oidc.LoginMethod
	session, err := h.authSvc.Login(c.Request.Context(), &dto.UpsertUserInput{
		OpenID:      identity.Subject,
		Name:        optionalString(identity.Name),
		Email:       optionalString(identity.Email),
		LoginMethod: &method,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setCookie(c, h.cfg.Cookie.Name, session.Token, session.ExpiresIn, "/")
	response.OK(c, session)
}

// Me 当前用户；匿名时返回 data:null
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		response.OK(c, nil)
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	if user == nil {
		response.OK(c, nil)
		return
	}

	response.OK(c, user)
}

// Logout 清除会话 Cookie，并将当前 Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), GetClaims(c)); err != nil {
		h.logger.Warn("登出处理失败", zap.Error(err))
	}

	h.setCookie(c, h.cfg.Cookie.Name, "", -1, "/")
	response.Success(c)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingOpenID):
		response.Unauthorized(c, response.CodeUnauthorized, "身份提供方未返回用户标识")
	default:
		handleCommonError(c, err)
	}
}

// ── 内部辅助方法 ──

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int, path string) {
	c.SetSameSite(sameSiteMode(h.cfg.Cookie.SameSite))
	c.SetCookie(name, value, maxAge, path, h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
}

func sameSiteMode(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
