package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"research-agenda/backend/internal/api/handler"
	"research-agenda/backend/internal/api/router"
	"research-agenda/backend/internal/app"
	"research-agenda/backend/internal/service"
	"research-agenda/backend/pkg/oidc"
)

func main() {
	cfgPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 1. 加载配置并装配依赖
	a, err := app.New(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	cfg, logger := a.Config, a.Logger
	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 2. 执行数据库迁移；数据库暂不可用时继续启动，写操作返回 503
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := a.Migrate(migrateCtx); err != nil {
		logger.Warn("数据库迁移未执行", zap.Error(err))
	}
	cancelMigrate()

	// 3. 单点登录（可选）
	var idp handler.IdentityProvider
	if cfg.Auth.OIDC.Enabled() {
		discoverCtx, cancelDiscover := context.WithTimeout(context.Background(), 10*time.Second)
		provider, err := oidc.NewProvider(discoverCtx, &cfg.Auth.OIDC)
		cancelDiscover()
		if err != nil {
			logger.Warn("OIDC 初始化失败，登录入口不可用", zap.Error(err))
		} else {
			idp = provider
		}
	} else {
		logger.Warn("未配置 OIDC，登录入口不可用")
	}

	// 4. 依赖注入: Repository → Service → Handler
	// Redis 不可用时必须传入 nil 接口
	var blacklist service.TokenBlacklist
	var redisPinger handler.Pinger
	if a.Redis != nil {
		blacklist = a.Redis
		redisPinger = a.Redis
	}
	svc := service.NewService(cfg, a.Repo, a.JWT, blacklist, logger)
	h := handler.NewHandler(handler.Deps{
		Config:    cfg,
		Service:   svc,
		Identity:  idp,
		Reminders: a.Cycle,
		Store:     a.Store,
		Redis:     redisPinger,
		Logger:    logger,
	})

	// 5. 初始化路由
	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, a.JWT, a.Redis, a.Metrics, logger)

	// 6. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Reminder.CycleTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 7. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}
