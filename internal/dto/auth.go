package dto

// ── 认证模块 DTO ──

// OIDCCallbackRequest OIDC 回调参数
type OIDCCallbackRequest struct {
	Code  string `form:"code"  binding:"required"`
	State string `form:"state" binding:"required"`
}

// UpsertUserInput 登录回调后写入用户的字段，Role 为空表示不指定
type UpsertUserInput struct {
	OpenID      string
	Name        *string
	Email       *string
	LoginMethod *string
	Role        string
}

// SessionResponse 登录成功后返回的会话信息
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // 会话有效期（秒）
	User      UserResponse `json:"user"`
}
