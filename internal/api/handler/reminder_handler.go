package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/service"
	"research-agenda/backend/pkg/response"
)

const defaultLogLimit = 50

// ReminderHandler 提醒模块 HTTP 处理器
type ReminderHandler struct {
	reminderSvc service.ReminderService
}

// NewReminderHandler 创建 ReminderHandler
func NewReminderHandler(reminderSvc service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderSvc: reminderSvc}
}

// ListReminders 获取提醒列表
// GET /api/v1/reminders
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	reminders, err := h.reminderSvc.List(c.Request.Context(), userID)
	if err != nil {
		h.handleReminderError(c, err)
		return
	}

	response.OK(c, gin.H{"list": reminders})
}

// CreateReminder 创建提醒，活动必须属于当前用户
// POST /api/v1/reminders
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req dto.CreateReminderRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	reminder, err := h.reminderSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleReminderError(c, err)
		return
	}

	response.Created(c, reminder)
}

// UpdateReminder 局部更新派发设置
// PATCH /api/v1/reminders/:id
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateReminderRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.reminderSvc.Update(c.Request.Context(), id, userID, &req); err != nil {
		h.handleReminderError(c, err)
		return
	}

	response.Success(c)
}

// DeleteReminder 删除提醒
// DELETE /api/v1/reminders/:id
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.reminderSvc.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleReminderError(c, err)
		return
	}

	response.Success(c)
}

// ListReminderLogs 提醒发送记录，按时间倒序
// GET /api/v1/reminders/:id/logs?limit=50
func (h *ReminderHandler) ListReminderLogs(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ReminderLogListRequest
	if !bindQuery(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultLogLimit
	}

	logs, err := h.reminderSvc.Logs(c.Request.Context(), id, userID, limit)
	if err != nil {
		h.handleReminderError(c, err)
		return
	}

	response.OK(c, gin.H{"list": logs})
}

func (h *ReminderHandler) handleReminderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReminderNotFound):
		response.NotFound(c, response.CodeNotFound, "提醒不存在")
	case errors.Is(err, service.ErrActivityNotFound):
		response.ValidationError(c, []response.FieldError{{
			Field:   "activity_id",
			Rule:    "owned",
			Message: "提醒关联的活动不存在",
		}})
	case errors.Is(err, service.ErrInvalidReminderTime):
		response.ValidationError(c, []response.FieldError{{
			Field:   "reminder_time",
			Rule:    "hhmm",
			Message: "reminder_time 格式应为 HH:MM",
		}})
	default:
		handleCommonError(c, err)
	}
}
