package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/service"
	"research-agenda/backend/pkg/response"
)

// ManuscriptHandler 稿件模块 HTTP 处理器
type ManuscriptHandler struct {
	manuscriptSvc service.ManuscriptService
}

// NewManuscriptHandler 创建 ManuscriptHandler
func NewManuscriptHandler(manuscriptSvc service.ManuscriptService) *ManuscriptHandler {
	return &ManuscriptHandler{manuscriptSvc: manuscriptSvc}
}

// ListManuscripts 获取稿件列表，search 按标题模糊匹配
// GET /api/v1/manuscripts
func (h *ManuscriptHandler) ListManuscripts(c *gin.Context) {
	var req dto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	items, err := h.manuscriptSvc.List(c.Request.Context(), userID, req.Search)
	if err != nil {
		h.handleManuscriptError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// GetManuscript 获取稿件详情
// GET /api/v1/manuscripts/:id
func (h *ManuscriptHandler) GetManuscript(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.manuscriptSvc.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleManuscriptError(c, err)
		return
	}

	response.OK(c, item)
}

// CreateManuscript 创建稿件
// POST /api/v1/manuscripts
func (h *ManuscriptHandler) CreateManuscript(c *gin.Context) {
	var req dto.SaveManuscriptRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.manuscriptSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleManuscriptError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateManuscript 整体替换稿件字段
// 未提供的可选字段置空；tag_ids 省略时保留原有标签
// PUT /api/v1/manuscripts/:id
func (h *ManuscriptHandler) UpdateManuscript(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SaveManuscriptRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.manuscriptSvc.Update(c.Request.Context(), id, userID, &req); err != nil {
		h.handleManuscriptError(c, err)
		return
	}

	response.Success(c)
}

// DeleteManuscript 删除稿件
// DELETE /api/v1/manuscripts/:id
func (h *ManuscriptHandler) DeleteManuscript(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.manuscriptSvc.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleManuscriptError(c, err)
		return
	}

	response.Success(c)
}

func (h *ManuscriptHandler) handleManuscriptError(c *gin.Context, err error) {
	if handleTagAssignError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrManuscriptNotFound):
		response.NotFound(c, response.CodeNotFound, "稿件不存在")
	default:
		handleCommonError(c, err)
	}
}
