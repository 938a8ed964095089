package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-agenda/backend/config"
	"research-agenda/backend/internal/reminder"
	"research-agenda/backend/internal/service"
	pkgerrors "research-agenda/backend/pkg/errors"
	"research-agenda/backend/pkg/oidc"
	"research-agenda/backend/pkg/response"
)

// IdentityProvider 外部身份提供方（OIDC 授权码流程）
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oidc.Identity, error)
}

// ReminderRunner 执行一轮提醒派发
type ReminderRunner interface {
	Run(ctx context.Context, now time.Time) (*reminder.Report, error)
}

// Pinger 依赖健康检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps Handler 层依赖
// Identity 为 nil 表示未配置单点登录；Redis 为 nil 表示未启用缓存
type Deps struct {
	Config    *config.Config
	Service   *service.Service
	Identity  IdentityProvider
	Reminders ReminderRunner
	Store     Pinger
	Redis     Pinger
	Logger    *zap.Logger
}

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Tag        *TagHandler
	Manuscript *ManuscriptHandler
	Conference *ConferenceHandler
	Meeting    *MeetingHandler
	Reminder   *ReminderHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
	System     *SystemHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := d.Service
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, d.Identity, &d.Config.Auth, logger),
		Tag:        NewTagHandler(svc.Tag),
		Manuscript: NewManuscriptHandler(svc.Manuscript),
		Conference: NewConferenceHandler(svc.Conference),
		Meeting:    NewMeetingHandler(svc.Meeting),
		Reminder:   NewReminderHandler(svc.Reminder),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
		Export:     NewExportHandler(svc.Export),
		System:     NewSystemHandler(d.Reminders, d.Store, d.Redis, logger),
	}
}

// handleCommonError 各模块共用的兜底错误映射，不向调用方暴露内部错误
func handleCommonError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		response.StoreUnavailable(c)
		return
	}
	response.InternalError(c)
}
