package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"research-agenda/backend/config"
	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
	"research-agenda/backend/pkg/jwt"
)

var (
	ErrMissingOpenID = errors.New("身份提供方未返回用户标识")
)

// TokenBlacklist 登出时吊销会话 Token
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	// Login 根据身份提供方返回的信息写入用户并签发会话
	Login(ctx context.Context, in *dto.UpsertUserInput) (*dto.SessionResponse, error)
	// Me 查询当前用户；用户不存在时返回 nil
	Me(ctx context.Context, userID int64) (*dto.UserResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 为 nil 时登出仅清除 Cookie
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, in *dto.UpsertUserInput) (*dto.SessionResponse, error) {
	if in.OpenID == "" {
		return nil, ErrMissingOpenID
	}

	// 1. 写入用户；站点所有者未指定角色时自动提升为 admin
	role := in.Role
	if role == "" && s.cfg.Auth.OwnerOpenID != "" && in.OpenID == s.cfg.Auth.OwnerOpenID {
		role = model.RoleAdmin
	}
	user := &model.User{
		OpenID:       in.OpenID,
		Name:         in.Name,
		Email:        in.Email,
		LoginMethod:  in.LoginMethod,
		Role:         role,
		LastSignedIn: time.Now(),
	}
	if err := s.repo.User.Upsert(ctx, user); err != nil {
		logWriteError(s.logger, "写入用户失败", err, zap.String("open_id", in.OpenID))
		return nil, err
	}

	// 2. 签发会话
	token, err := s.jwtMgr.GenerateSessionToken(user.ID, user.OpenID, user.Role)
	if err != nil {
		s.logger.Error("生成会话 Token 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录", zap.Int64("user_id", user.ID), zap.String("role", user.Role))

	return &dto.SessionResponse{
		Token:     token,
		ExpiresIn: int(s.jwtMgr.TTL().Seconds()),
		User:      toUserResponse(user),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询用户失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
		// 黑名单写入失败不阻断登出，Cookie 仍会被清除
		s.logger.Warn("会话加入黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
	}
	return nil
}
