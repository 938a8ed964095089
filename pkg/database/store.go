package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"research-agenda/backend/config"
	apperrors "research-agenda/backend/pkg/errors"
)

// Opener 建立底层连接，测试中可替换为 sqlmock
type Opener func() (*gorm.DB, error)

// Store 数据库连接句柄
// 进程启动时构造一次并注入各 Repository；首次使用时才真正连接，
// 成功后在进程生命周期内复用，失败不缓存，下次调用重新尝试。
// 同一时刻只有一个调用方在连接，其余调用方立即得到 ErrStoreUnavailable。
type Store struct {
	open   Opener
	logger *zap.Logger

	mu         sync.Mutex
	db         *gorm.DB
	connecting bool
}

// NewStore 创建 PostgreSQL 连接句柄（惰性连接）
func NewStore(cfg *config.DatabaseConfig, logLevel string, logger *zap.Logger) *Store {
	return NewStoreWithOpener(func() (*gorm.DB, error) {
		return openPostgres(cfg, logLevel, logger)
	}, logger)
}

// NewStoreWithOpener 使用自定义连接函数创建句柄
func NewStoreWithOpener(open Opener, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{open: open, logger: logger}
}

// NewStoreFromDB 包装已建立的连接
func NewStoreFromDB(db *gorm.DB) *Store {
	return &Store{db: db, logger: zap.NewNop()}
}

// DB 返回绑定了 ctx 的连接；不可用时返回包装了 ErrStoreUnavailable 的错误
func (s *Store) DB(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	if db := s.db; db != nil {
		s.mu.Unlock()
		return db.WithContext(ctx), nil
	}
	if s.open == nil {
		s.mu.Unlock()
		return nil, apperrors.ErrStoreUnavailable
	}
	if s.connecting {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: 正在建立连接", apperrors.ErrStoreUnavailable)
	}
	s.connecting = true
	s.mu.Unlock()

	// 连接期间不持锁
	db, err := s.open()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.connecting = false
	if err != nil {
		s.logger.Warn("数据库连接失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	s.db = db
	return db.WithContext(ctx), nil
}

// Ping 检查连接可用性
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.DB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Close 关闭已建立的连接
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}

func openPostgres(cfg *config.DatabaseConfig, logLevel string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: NewGormLogger(logger, logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	logger.Info("数据库连接成功",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.Name),
	)

	return db, nil
}
