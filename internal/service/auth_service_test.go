package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"research-agenda/backend/config"
	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/jwt"
)

// ── 测试辅助 ──

type fakeBlacklist struct {
	jti string
	ttl time.Duration
	err error
}

func (f *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	f.jti = jti
	f.ttl = ttl
	return f.err
}

func setupTestAuthService(blacklist TokenBlacklist) (AuthService, *jwt.Manager, *memDB) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:   "test-secret-0123456789",
			SessionTTL:  time.Hour,
			OwnerOpenID: "owner-1",
		},
	}
	repo, db := newMockRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	return NewAuthService(cfg, repo, jwtMgr, blacklist, zap.NewNop()), jwtMgr, db
}

// ── Login ──

func TestAuthService_LoginOwnerPromoted(t *testing.T) {
	svc, jwtMgr, _ := setupTestAuthService(nil)

	sess, err := svc.Login(context.Background(), &dto.UpsertUserInput{
		OpenID: "owner-1",
		Email:  ptr("owner@example.com"),
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if sess.User.Role != model.RoleAdmin {
		t.Errorf("站点所有者应为 admin，实际: %s", sess.User.Role)
	}
	if sess.ExpiresIn != 3600 {
		t.Errorf("期望有效期 3600 秒，实际: %d", sess.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(sess.Token)
	if err != nil {
		t.Fatalf("签发的 Token 应可解析: %v", err)
	}
	if claims.UserID != sess.User.ID || claims.Role != model.RoleAdmin {
		t.Errorf("Token 声明不一致: %+v", claims)
	}
}

func TestAuthService_LoginRegularUser(t *testing.T) {
	svc, _, db := setupTestAuthService(nil)
	ctx := context.Background()

	first, err := svc.Login(ctx, &dto.UpsertUserInput{OpenID: "u-1", Name: ptr("Ada")})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if first.User.Role != model.RoleUser {
		t.Errorf("普通用户应为 user，实际: %s", first.User.Role)
	}

	// 已被提升的角色在未指定角色的再次登录中保留
	db.users[first.User.ID].Role = model.RoleAdmin
	second, err := svc.Login(ctx, &dto.UpsertUserInput{OpenID: "u-1"})
	if err != nil {
		t.Fatalf("再次登录失败: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Error("同一 open_id 应对应同一用户")
	}
	if second.User.Role != model.RoleAdmin {
		t.Errorf("未指定角色时不应覆盖已有角色，实际: %s", second.User.Role)
	}
	if second.User.Name == nil || *second.User.Name != "Ada" {
		t.Error("未提供的姓名应保留原值")
	}
}

func TestAuthService_LoginMissingOpenID(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)

	if _, err := svc.Login(context.Background(), &dto.UpsertUserInput{}); !errors.Is(err, ErrMissingOpenID) {
		t.Errorf("期望 ErrMissingOpenID，实际: %v", err)
	}
}

// ── Me ──

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	ctx := context.Background()

	me, err := svc.Me(ctx, 42)
	if err != nil || me != nil {
		t.Errorf("不存在的用户应返回 nil, nil，实际: %v, %v", me, err)
	}

	sess, _ := svc.Login(ctx, &dto.UpsertUserInput{OpenID: "u-2"})
	me, err = svc.Me(ctx, sess.User.ID)
	if err != nil || me == nil || me.OpenID != "u-2" {
		t.Errorf("期望返回当前用户，实际: %+v, %v", me, err)
	}
}

// ── Logout ──

func TestAuthService_LogoutBlacklists(t *testing.T) {
	bl := &fakeBlacklist{}
	svc, jwtMgr, _ := setupTestAuthService(bl)

	token, _ := jwtMgr.GenerateSessionToken(1, "u-1", model.RoleUser)
	claims, _ := jwtMgr.ParseToken(token)

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("登出失败: %v", err)
	}
	if bl.jti != claims.ID {
		t.Errorf("期望吊销 jti %s，实际: %s", claims.ID, bl.jti)
	}
	if bl.ttl <= 0 || bl.ttl > time.Hour {
		t.Errorf("黑名单有效期应为 Token 剩余时长，实际: %v", bl.ttl)
	}
}

func TestAuthService_LogoutBlacklistFailureIgnored(t *testing.T) {
	bl := &fakeBlacklist{err: errors.New("redis down")}
	svc, jwtMgr, _ := setupTestAuthService(bl)

	token, _ := jwtMgr.GenerateSessionToken(1, "u-1", model.RoleUser)
	claims, _ := jwtMgr.ParseToken(token)

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Errorf("黑名单写入失败不应阻断登出，实际: %v", err)
	}
}
