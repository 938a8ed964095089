package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"research-agenda/backend/internal/service"
	"research-agenda/backend/pkg/response"
)

// DashboardHandler 仪表盘 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
	now          func() time.Time
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc, now: time.Now}
}

// Summary 计数、近期会议/组会与截止事项
// GET /api/v1/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.dashboardSvc.Summary(c.Request.Context(), userID, h.now())
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, summary)
}
