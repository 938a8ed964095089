package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/pkg/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler 健康检查与提醒周期触发
type SystemHandler struct {
	runner ReminderRunner
	store  Pinger
	redis  Pinger
	logger *zap.Logger
	now    func() time.Time
}

// NewSystemHandler 创建 SystemHandler；redis 为 nil 时不参与健康检查
func NewSystemHandler(runner ReminderRunner, store, redis Pinger, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{runner: runner, store: store, redis: redis, logger: logger, now: time.Now}
}

// Health 存储不可用时返回 503，Redis 不可用只标记为 degraded
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("健康检查: 数据库不可用", zap.Error(err))
			checks["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}

	if h.redis == nil {
		checks["redis"] = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		h.logger.Warn("健康检查: Redis 不可用", zap.Error(err))
		checks["redis"] = "degraded"
	} else {
		checks["redis"] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}

// RunReminders 执行一轮提醒派发，供外部定时器调用
// POST /api/v1/system/reminders/run
func (h *SystemHandler) RunReminders(c *gin.Context) {
	if h.runner == nil {
		response.ServiceUnavailable(c, "提醒派发未启用")
		return
	}

	report, err := h.runner.Run(c.Request.Context(), h.now())
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, dto.RunRemindersResponse{
		Due:     report.Due,
		Sent:    report.Sent,
		Failed:  report.Failed,
		Skipped: report.Skipped,
		Locked:  report.Locked,
	})
}
