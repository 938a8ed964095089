package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/service"
	"research-agenda/backend/pkg/response"
)

// MeetingHandler 组会模块 HTTP 处理器
type MeetingHandler struct {
	meetingSvc service.MeetingService
}

// NewMeetingHandler 创建 MeetingHandler
func NewMeetingHandler(meetingSvc service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingSvc: meetingSvc}
}

// ListMeetings 获取组会列表，search 按标题模糊匹配
// GET /api/v1/meetings
func (h *MeetingHandler) ListMeetings(c *gin.Context) {
	var req dto.ListRequest
	if !bindQuery(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	items, err := h.meetingSvc.List(c.Request.Context(), userID, req.Search)
	if err != nil {
		h.handleMeetingError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// GetMeeting 获取组会详情
// GET /api/v1/meetings/:id
func (h *MeetingHandler) GetMeeting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.meetingSvc.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleMeetingError(c, err)
		return
	}

	response.OK(c, item)
}

// CreateMeeting 创建组会，participants 按提交顺序保存
// POST /api/v1/meetings
func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	var req dto.SaveMeetingRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.meetingSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleMeetingError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateMeeting 整体替换组会字段；不存在或非本人时静默成功
// PUT /api/v1/meetings/:id
func (h *MeetingHandler) UpdateMeeting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SaveMeetingRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.meetingSvc.Update(c.Request.Context(), id, userID, &req); err != nil {
		h.handleMeetingError(c, err)
		return
	}

	response.Success(c)
}

// DeleteMeeting 删除组会及其标签关联、提醒
// DELETE /api/v1/meetings/:id
func (h *MeetingHandler) DeleteMeeting(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.meetingSvc.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleMeetingError(c, err)
		return
	}

	response.Success(c)
}

func (h *MeetingHandler) handleMeetingError(c *gin.Context, err error) {
	if handleTagAssignError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrMeetingNotFound):
		response.NotFound(c, response.CodeNotFound, "组会不存在")
	default:
		handleCommonError(c, err)
	}
}
