package dto

// ── 通用 DTO ──

// ListRequest 列表查询参数
type ListRequest struct {
	Search string `form:"search" binding:"omitempty,max=500"`
}
