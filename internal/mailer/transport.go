package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// SMTP 协议端口常量
const (
	DefaultSMTPSSLPort      = 465 // SSL/TLS 加密端口
	DefaultSMTPSTARTTLSPort = 587 // STARTTLS 升级端口
	DefaultDialTimeout      = 30 * time.Second
)

// SMTPTransport 负责底层 SMTP 连接、认证和邮件发送
// 465 端口直接建立 SSL 连接,其余端口先建明文连接再用 STARTTLS 升级
type SMTPTransport struct {
	settings Settings
}

// NewSMTPTransport 创建 SMTP 传输实例
func NewSMTPTransport(settings Settings) *SMTPTransport {
	return &SMTPTransport{settings: settings}
}

// useImplicitTLS 判断是否需要 SSL 直连
func (transport *SMTPTransport) useImplicitTLS() bool {
	return transport.settings.Port == DefaultSMTPSSLPort
}

// serverAddress 返回 host:port 形式的服务器地址
func (transport *SMTPTransport) serverAddress() string {
	return net.JoinHostPort(transport.settings.Server, fmt.Sprintf("%d", transport.settings.Port))
}

// dial 建立 SMTP 客户端连接
// 根据端口自动选择 SSL 或 STARTTLS 协议,返回客户端和清理函数
func (transport *SMTPTransport) dial(ctx context.Context) (*smtp.Client, func(), error) {
	if transport.settings.Server == "" {
		return nil, nil, errors.New("smtp server cannot be empty")
	}

	connection, err := transport.dialConnection(ctx)
	if err != nil {
		return nil, nil, err
	}

	// SSL 协议需要在 TCP 连接上直接建立 TLS 层
	if transport.useImplicitTLS() {
		return transport.createSSLClient(connection)
	}

	// 明文连接建立后立即用 STARTTLS 升级
	return transport.createStartTLSClient(connection)
}

// dialConnection 建立底层 TCP 连接
// 支持 context 超时控制,确保不会无限等待
func (transport *SMTPTransport) dialConnection(ctx context.Context) (net.Conn, error) {
	address := transport.serverAddress()

	var dialer net.Dialer

	// 如果 context 设置了截止时间,使用 context 控制超时
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		connection, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, fmt.Errorf("failed to dial smtp server %s: %w", address, err)
		}

		// 为连接设置整体超时时间
		_ = connection.SetDeadline(deadline)
		return connection, nil
	}

	// 否则使用默认超时时间
	connection, err := net.DialTimeout("tcp", address, DefaultDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial smtp server %s: %w", address, err)
	}

	return connection, nil
}

// createSSLClient 创建 SSL 加密的 SMTP 客户端
// 在已建立的 TCP 连接上进行 TLS 握手
func (transport *SMTPTransport) createSSLClient(connection net.Conn) (*smtp.Client, func(), error) {
	tlsConfig := &tls.Config{
		ServerName: transport.settings.Server,
	}

	tlsConnection := tls.Client(connection, tlsConfig)

	if err := tlsConnection.Handshake(); err != nil {
		_ = connection.Close()
		return nil, nil, fmt.Errorf("ssl handshake failed: %w", err)
	}

	client := smtp.NewClient(tlsConnection)

	closeFunction := func() {
		_ = client.Quit()
		_ = connection.Close()
	}

	return client, closeFunction, nil
}

// createStartTLSClient 创建明文连接并升级到 STARTTLS
// 凭据总是走加密通道,不支持纯明文发送
func (transport *SMTPTransport) createStartTLSClient(connection net.Conn) (*smtp.Client, func(), error) {
	client := smtp.NewClient(connection)

	tlsConfig := &tls.Config{
		ServerName: transport.settings.Server,
	}

	if err := client.StartTLS(tlsConfig); err != nil {
		_ = client.Quit()
		_ = connection.Close()
		return nil, nil, fmt.Errorf("starttls upgrade failed: %w", err)
	}

	closeFunction := func() {
		_ = client.Quit()
		_ = connection.Close()
	}

	return client, closeFunction, nil
}

// createAuthentication 创建 SMTP 认证实例
// 目前仅支持 PLAIN 认证方式(最广泛使用的认证机制)
func (transport *SMTPTransport) createAuthentication() sasl.Client {
	if transport.settings.User == "" || transport.settings.Password == "" {
		return nil
	}

	return sasl.NewPlainClient("", transport.settings.User, transport.settings.Password)
}

// SendRaw 发送原始邮件数据
// rawMessage: 完整的 RFC822 格式邮件内容(包含头部和正文)
// recipients: 信封收件人地址列表
func (transport *SMTPTransport) SendRaw(ctx context.Context, rawMessage []byte, recipients []string) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	client, closeFunction, err := transport.dial(ctx)
	if err != nil {
		return err
	}
	defer closeFunction()

	if err := transport.authenticate(client); err != nil {
		return err
	}

	if err := transport.setMailEnvelope(client, recipients); err != nil {
		return err
	}

	return transport.writeMessageData(client, rawMessage)
}

// authenticate 执行 SMTP 身份认证
// 如果配置了用户名和密码,则进行认证;否则尝试匿名发送
func (transport *SMTPTransport) authenticate(client *smtp.Client) error {
	authentication := transport.createAuthentication()

	// 部分 SMTP 服务器允许匿名发送,因此认证是可选的
	if authentication == nil {
		return nil
	}

	if err := client.Auth(authentication); err != nil {
		return fmt.Errorf("smtp authentication failed: %w", err)
	}

	return nil
}

// setMailEnvelope 设置邮件信封信息
// 包括发件人(MAIL FROM)和所有收件人(RCPT TO)
func (transport *SMTPTransport) setMailEnvelope(client *smtp.Client, recipients []string) error {
	if err := client.Mail(bareAddress(transport.settings.From), nil); err != nil {
		return fmt.Errorf("MAIL FROM command failed: %w", err)
	}

	for _, recipient := range recipients {
		// 跳过空收件人地址
		if recipient == "" {
			continue
		}

		if err := client.Rcpt(recipient, nil); err != nil {
			return fmt.Errorf("RCPT TO command failed for %s: %w", recipient, err)
		}
	}

	return nil
}

// writeMessageData 写入邮件正文数据
// 发送 DATA 命令并传输完整的邮件内容
func (transport *SMTPTransport) writeMessageData(client *smtp.Client, rawMessage []byte) error {
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err = writer.Write(rawMessage); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}

	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close message body: %w", err)
	}

	return nil
}
