package mail

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"research-agenda/backend/config"
)

var (
	ErrNotConfigured = errors.New("未配置 SMTP 服务器")
	ErrNoRecipient   = errors.New("收件人为空")
)

// sendFunc 与 smtp.SendMail 签名一致，测试中替换
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer 通过 SMTP 发送纯文本邮件
type SMTPMailer struct {
	host string
	port int
	from string
	auth smtp.Auth
	send sendFunc
}

// NewSMTPMailer 根据配置创建发送器；未配置用户名时不做认证
func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	m := &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		from: cfg.From,
		send: smtp.SendMail,
	}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return m
}

// Enabled 是否配置了 SMTP 服务器
func (m *SMTPMailer) Enabled() bool {
	return m.host != ""
}

// Send 发送一封邮件
// smtp.SendMail 不接受 ctx，此处仅在发送前检查取消状态
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := m.send(addr, m.auth, m.from, []string{to}, buildMessage(m.from, to, subject, body, time.Now())); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// buildMessage 组装 RFC 5322 报文，主题按 RFC 2047 编码
func buildMessage(from, to, subject, body string, at time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + at.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
