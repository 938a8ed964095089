package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/service"
	"research-agenda/backend/pkg/response"
)

// ConferenceHandler 会议模块 HTTP 处理器
type ConferenceHandler struct {
	conferenceSvc service.ConferenceService
}

// NewConferenceHandler 创建 ConferenceHandler
func NewConferenceHandler(conferenceSvc service.ConferenceService) *ConferenceHandler {
	return &ConferenceHandler{conferenceSvc: conferenceSvc}
}

// ListConferences 获取会议列表，search 按名称模糊匹配
// GET /api/v1/conferences
func (h *ConferenceHandler) ListConferences(c *gin.Context) {
	var req dto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	items, err := h.conferenceSvc.List(c.Request.Context(), userID, req.Search)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// GetConference 获取会议详情
// GET /api/v1/conferences/:id
func (h *ConferenceHandler) GetConference(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.conferenceSvc.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.OK(c, item)
}

// CreateConference 创建会议
// POST /api/v1/conferences
func (h *ConferenceHandler) CreateConference(c *gin.Context) {
	var req dto.SaveConferenceRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.conferenceSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateConference 整体替换会议字段；不存在或非本人时静默成功
// PUT /api/v1/conferences/:id
func (h *ConferenceHandler) UpdateConference(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SaveConferenceRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.conferenceSvc.Update(c.Request.Context(), id, userID, &req); err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.Success(c)
}

// DeleteConference 删除会议
// DELETE /api/v1/conferences/:id
func (h *ConferenceHandler) DeleteConference(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.conferenceSvc.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.Success(c)
}

func (h *ConferenceHandler) handleConferenceError(c *gin.Context, err error) {
	if handleTagAssignError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrConferenceNotFound):
		response.NotFound(c, response.CodeNotFound, "会议不存在")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.ValidationError(c, []response.FieldError{{
			Field:   "end_date",
			Rule:    "gtefield",
			Message: "结束日期不能早于开始日期",
		}})
	default:
		handleCommonError(c, err)
	}
}
