package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-agenda/backend/config"
	"research-agenda/backend/internal/api/handler"
	"research-agenda/backend/internal/api/middleware"
	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/jwt"
	"research-agenda/backend/pkg/metrics"
	"research-agenda/backend/pkg/redis"
)

const (
	maxBodyBytes = 1 << 20

	authRateLimit  = 20
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// rdb、m 可为 nil：分别关闭黑名单/限流与指标采集
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", h.System.Health)
	if cfg.Metrics.Enabled && m != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// rdb 为 nil 时必须传入 nil 接口，而非持有 nil 指针的接口
	var blacklist middleware.Blacklist
	if rdb != nil {
		blacklist = rdb
	}
	cookie := cfg.Auth.Cookie.Name

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（可匿名）
		auth := v1.Group("/auth")
		auth.Use(middleware.OptionalAuth(jwtMgr, cookie, blacklist))
		{
			auth.GET("/login", middleware.RateLimit(rdb, authRateLimit, authRateWindow, logger), h.Auth.Login)
			auth.GET("/callback", middleware.RateLimit(rdb, authRateLimit, authRateWindow, logger), h.Auth.Callback)
			auth.GET("/me", h.Auth.Me)
			auth.POST("/logout", h.Auth.Logout)
		}

		// 系统模块：管理员会话或内部令牌
		system := v1.Group("/system")
		system.Use(middleware.OptionalAuth(jwtMgr, cookie, blacklist))
		{
			system.POST("/reminders/run", middleware.InternalOrRole(cfg.Reminder.InternalToken, model.RoleAdmin), h.System.RunReminders)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, cookie, blacklist))
		{
			// 标签模块
			tags := authorized.Group("/tags")
			{
				tags.GET("", h.Tag.ListTags)
				tags.POST("", h.Tag.CreateTag)
				tags.PUT("/:id", h.Tag.UpdateTag)
				tags.DELETE("/:id", h.Tag.DeleteTag)
			}

			// 稿件模块
			manuscripts := authorized.Group("/manuscripts")
			{
				manuscripts.GET("", h.Manuscript.ListManuscripts)
				manuscripts.GET("/:id", h.Manuscript.GetManuscript)
				manuscripts.POST("", h.Manuscript.CreateManuscript)
				manuscripts.PUT("/:id", h.Manuscript.UpdateManuscript)
				manuscripts.DELETE("/:id", h.Manuscript.DeleteManuscript)
			}

			// 学术会议模块
			conferences := authorized.Group("/conferences")
			{
				conferences.GET("", h.Conference.ListConferences)
				conferences.GET("/:id", h.Conference.GetConference)
				conferences.POST("", h.Conference.CreateConference)
				conferences.PUT("/:id", h.Conference.UpdateConference)
				conferences.DELETE("/:id", h.Conference.DeleteConference)
			}

			// 组会模块
			meetings := authorized.Group("/meetings")
			{
				meetings.GET("", h.Meeting.ListMeetings)
				meetings.GET("/:id", h.Meeting.GetMeeting)
				meetings.POST("", h.Meeting.CreateMeeting)
				meetings.PUT("/:id", h.Meeting.UpdateMeeting)
				meetings.DELETE("/:id", h.Meeting.DeleteMeeting)
			}

			// 提醒模块
			reminders := authorized.Group("/reminders")
			{
				reminders.GET("", h.Reminder.ListReminders)
				reminders.POST("", h.Reminder.CreateReminder)
				reminders.PATCH("/:id", h.Reminder.UpdateReminder)
				reminders.DELETE("/:id", h.Reminder.DeleteReminder)
				reminders.GET("/:id/logs", h.Reminder.ListReminderLogs)
			}

			authorized.GET("/dashboard", h.Dashboard.Summary)

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/calendar.ics", h.Export.ExportCalendar)
				export.GET("/manuscripts.xlsx", h.Export.ExportManuscripts)
			}
		}
	}

	return r
}
