package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"research-agenda/backend/config"
	"research-agenda/backend/internal/reminder"
	"research-agenda/backend/internal/repository"
	"research-agenda/backend/pkg/database"
	"research-agenda/backend/pkg/jwt"
	applogger "research-agenda/backend/pkg/logger"
	"research-agenda/backend/pkg/mail"
	"research-agenda/backend/pkg/metrics"
	"research-agenda/backend/pkg/redis"
)

// App 进程级依赖，HTTP 服务与命令行工具共用
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *database.Store
	Redis   *redis.Client // 连接失败时为 nil，降级运行
	JWT     *jwt.Manager
	Repo    *repository.Repository
	Metrics *metrics.Metrics // 未启用时为 nil
	Mailer  *mail.SMTPMailer
	Cycle   *reminder.Cycle
}

// New 加载配置并装配依赖；数据库为惰性连接，此处不会因数据库不可用而失败
func New(cfgPath string) (*App, error) {
	// 1. 加载配置
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	// 3. 数据库句柄
	store := database.NewStore(&cfg.Database, cfg.Log.Level, logger)

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，会话吊销、限流与提醒互斥锁将不可用", zap.Error(err))
		rdb = nil
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	mailer := mail.NewSMTPMailer(&cfg.Mail)
	if !mailer.Enabled() {
		logger.Warn("未配置 SMTP 服务器，提醒邮件将记录为发送失败")
	}

	repo := repository.NewRepository(store)

	// rdb 为 nil 时传入 nil 接口
	var locker reminder.Locker
	if rdb != nil {
		locker = rdb
	}
	cycle := reminder.NewCycle(repo, mailer, locker, m, reminder.Options{
		Location: cfg.Reminder.Location(),
		LockTTL:  cfg.Reminder.LockTTL,
		Timeout:  cfg.Reminder.CycleTimeout,
	}, logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Redis:   rdb,
		JWT:     jwt.NewManager(&cfg.Auth),
		Repo:    repo,
		Metrics: m,
		Mailer:  mailer,
		Cycle:   cycle,
	}, nil
}

// Migrate 执行全部未应用的迁移
func (a *App) Migrate(ctx context.Context) error {
	return database.MigrateStore(ctx, a.Store, a.Logger)
}

// Close 释放数据库与 Redis 连接
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("关闭数据库连接失败", zap.Error(err))
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	_ = a.Logger.Sync()
}
