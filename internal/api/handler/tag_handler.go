package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/service"
	"research-agenda/backend/pkg/response"
)

// TagHandler 标签模块 HTTP 处理器
type TagHandler struct {
	tagSvc service.TagService
}

// NewTagHandler 创建 TagHandler
func NewTagHandler(tagSvc service.TagService) *TagHandler {
	return &TagHandler{tagSvc: tagSvc}
}

// ListTags 获取当前用户的标签
// GET /api/v1/tags
func (h *TagHandler) ListTags(c *gin.Context) {
	var req dto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tags, err := h.tagSvc.List(c.Request.Context(), userID, req.Search)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, gin.H{"list": tags})
}

// CreateTag 创建标签
// POST /api/v1/tags
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req dto.SaveTagRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tag, err := h.tagSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.Created(c, tag)
}

// UpdateTag 更新标签；不存在或非本人时静默成功
// PUT /api/v1/tags/:id
func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SaveTagRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.tagSvc.Update(c.Request.Context(), id, userID, &req); err != nil {
		handleCommonError(c, err)
		return
	}

	response.Success(c)
}

// DeleteTag 删除标签及其关联
// DELETE /api/v1/tags/:id
func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.tagSvc.Delete(c.Request.Context(), id, userID); err != nil {
		handleCommonError(c, err)
		return
	}

	response.Success(c)
}

// handleTagAssignError 关联了不存在或他人的标签
func handleTagAssignError(c *gin.Context, err error) bool {
	if errors.Is(err, service.ErrTagNotOwned) {
		response.ValidationError(c, []response.FieldError{{
			Field:   "tag_ids",
			Rule:    "owned",
			Message: "标签不存在",
		}})
		return true
	}
	return false
}
