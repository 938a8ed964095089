package service

import (
	"go.uber.org/zap"

	"research-agenda/backend/config"
	"research-agenda/backend/internal/repository"
	"research-agenda/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Tag        TagService
	Manuscript ManuscriptService
	Conference ConferenceService
	Meeting    MeetingService
	Reminder   ReminderService
	Dashboard  DashboardService
	Export     ExportService
}

// NewService 创建 Service 聚合
// blacklist 为 nil 时（Redis 不可用）登出不吊销 Token，仅清除 Cookie
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Tag:        NewTagService(repo, logger),
		Manuscript: NewManuscriptService(repo, logger),
		Conference: NewConferenceService(repo, logger),
		Meeting:    NewMeetingService(repo, logger),
		Reminder:   NewReminderService(repo, logger),
		Dashboard:  NewDashboardService(repo, logger),
		Export:     NewExportService(repo, logger),
	}
}
