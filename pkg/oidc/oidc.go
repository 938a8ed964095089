package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"research-agenda/backend/config"
)

var (
	ErrMissingIDToken = errors.New("身份提供方未返回 id_token")
)

// LoginMethod 写入 users.login_method 的取值
const LoginMethod = "oidc"

// Identity 身份提供方返回的用户信息
type Identity struct {
	Subject string
	Name    string
	Email   string
}

// Provider OIDC 授权码流程
type Provider struct {
	oauth    *oauth2.Config
	verifier *gooidc.IDTokenVerifier
}

// NewProvider 通过 issuer 的 discovery 文档创建 Provider
func NewProvider(ctx context.Context, cfg *config.OIDCConfig) (*Provider, error) {
	provider, err := gooidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("加载 OIDC discovery 失败: %w", err)
	}

	return newProvider(&oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       append([]string{gooidc.ScopeOpenID, "email", "profile"}, cfg.Scopes...),
		Endpoint:     provider.Endpoint(),
	}, provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID})), nil
}

func newProvider(oauthCfg *oauth2.Config, verifier *gooidc.IDTokenVerifier) *Provider {
	return &Provider{oauth: oauthCfg, verifier: verifier}
}

// AuthCodeURL 返回跳转到身份提供方的地址
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange 用授权码换取并校验 id_token，返回用户身份
func (p *Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("授权码兑换失败: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrMissingIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id_token 校验失败: %w", err)
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("解析 id_token 声明失败: %w", err)
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}
	return &Identity{
		Subject: idToken.Subject,
		Name:    name,
		Email:   claims.Email,
	}, nil
}

// GenerateState 生成防 CSRF 的 state 参数
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
