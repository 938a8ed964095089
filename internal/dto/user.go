package dto

// ── 用户模块 DTO ──

// UserResponse 当前用户信息
type UserResponse struct {
	ID           int64   `json:"id"`
	OpenID       string  `json:"open_id"`
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	LoginMethod  *string `json:"login_method"`
	Role         string  `json:"role"`
	LastSignedIn string  `json:"last_signed_in"`
	CreatedAt    string  `json:"created_at"`
}
