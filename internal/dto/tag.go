package dto

// ── 标签模块 DTO ──

// SaveTagRequest 创建/更新标签请求（更新为整体替换）
type SaveTagRequest struct {
	Name  string `json:"name"  binding:"required,min=1,max=100"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// TagResponse 标签信息响应
type TagResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
