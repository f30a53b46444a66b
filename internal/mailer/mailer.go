// Package mailer 负责将渲染好的短信邮件通过 SMTP 投递出去。
package mailer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

//
// 发送接口
//

// 哨兵错误定义
var (
	// ErrNoRecipients 收件人列表为空
	ErrNoRecipients = errors.New("recipients list cannot be empty")
)

// Mailer 邮件发送接口
// recipients 为显示名到邮箱地址的映射
type Mailer interface {
	Send(ctx context.Context, recipients map[string]string, subject, body string) error
}

// Settings SMTP 连接设置
// 全部取自命令行参数,配置文件只提供收件人
type Settings struct {
	Server   string
	Port     int
	User     string
	Password string
	From     string
}

//
// SMTP 发送实现
//

// SMTPMailer 基于 SMTP 协议的邮件发送器
type SMTPMailer struct {
	transport   *SMTPTransport
	from        string
	currentTime func() time.Time
}

// NewSMTPMailer 创建 SMTP 邮件发送器实例
func NewSMTPMailer(settings Settings) *SMTPMailer {
	return &SMTPMailer{
		transport:   NewSMTPTransport(settings),
		from:        settings.From,
		currentTime: time.Now,
	}
}

// Send 构建并发送一封纯文本邮件
// 信封收件人取映射的地址部分,头部收件人带显示名
func (mailer *SMTPMailer) Send(ctx context.Context, recipients map[string]string, subject, body string) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	sentAt := mailer.currentTime()

	builder := NewEmailBuilder()
	builder.SetFrom(mailer.from)
	builder.SetRecipients(recipients)
	builder.SetSubject(subject)
	builder.SetDate(sentAt)
	builder.SetMessageID(mailer.from, sentAt)
	builder.SetBody(body)

	if err := mailer.transport.SendRaw(ctx, builder.Build(), recipientAddresses(recipients)); err != nil {
		return fmt.Errorf("SMTP 发送失败: %w", err)
	}

	return nil
}

// recipientAddresses 提取并排序信封收件人地址
func recipientAddresses(recipients map[string]string) []string {
	addresses := make([]string, 0, len(recipients))
	for _, address := range recipients {
		addresses = append(addresses, address)
	}

	sort.Strings(addresses)
	return addresses
}
