package mailer

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/mail"
	"net/textproto"
	"sort"
	"strings"
	"time"
)

//
// 常量定义
//

const (
	// MIME 相关常量
	mimeVersion         = "1.0"
	contentTypePlain    = "text/plain; charset=UTF-8"
	contentTransfer8Bit = "8bit"
	defaultSubject      = "(no subject)"

	// 邮件头常量
	headerFrom            = "From"
	headerTo              = "To"
	headerSubject         = "Subject"
	headerDate            = "Date"
	headerMessageID       = "Message-ID"
	headerMimeVersion     = "MIME-Version"
	headerContentType     = "Content-Type"
	headerContentTransfer = "Content-Transfer-Encoding"

	// 其他常量
	fallbackDomain = "localhost"
	lineBreak      = "\r\n"
)

// headerOrder 邮件头的写出顺序
var headerOrder = []string{
	headerFrom,
	headerTo,
	headerSubject,
	headerDate,
	headerMessageID,
	headerMimeVersion,
	headerContentType,
	headerContentTransfer,
}

//
// 邮件构建器
//

// EmailBuilder 纯文本邮件构建器
// 负责生成符合 RFC822 标准的邮件内容
type EmailBuilder struct {
	headers textproto.MIMEHeader
	body    string
}

// NewEmailBuilder 创建邮件构建器实例
func NewEmailBuilder() *EmailBuilder {
	headers := textproto.MIMEHeader{}
	headers.Set(headerMimeVersion, mimeVersion)
	headers.Set(headerContentType, contentTypePlain)
	headers.Set(headerContentTransfer, contentTransfer8Bit)

	return &EmailBuilder{
		headers: headers,
	}
}

// SetFrom 设置发件人头部
// 支持 "Name <user@host>" 与裸地址两种写法
func (builder *EmailBuilder) SetFrom(from string) {
	if parsed, err := mail.ParseAddress(from); err == nil {
		builder.headers.Set(headerFrom, parsed.String())
		return
	}

	builder.headers.Set(headerFrom, from)
}

// SetRecipients 设置收件人头部
// recipients 为显示名到邮箱地址的映射,按显示名排序保证输出稳定
func (builder *EmailBuilder) SetRecipients(recipients map[string]string) {
	names := make([]string, 0, len(recipients))
	for name := range recipients {
		names = append(names, name)
	}
	sort.Strings(names)

	formatted := make([]string, 0, len(names))
	for _, name := range names {
		address := mail.Address{Name: name, Address: recipients[name]}
		formatted = append(formatted, address.String())
	}

	builder.headers.Set(headerTo, strings.Join(formatted, ", "))
}

// SetSubject 设置主题头部
func (builder *EmailBuilder) SetSubject(subject string) {
	builder.headers.Set(headerSubject, encodeSubject(subject))
}

// SetDate 设置日期头部
func (builder *EmailBuilder) SetDate(sentAt time.Time) {
	builder.headers.Set(headerDate, sentAt.Format(time.RFC1123Z))
}

// SetMessageID 根据发件人地址生成并设置 Message-ID
func (builder *EmailBuilder) SetMessageID(fromAddress string, sentAt time.Time) {
	builder.headers.Set(headerMessageID, generateMessageID(fromAddress, sentAt))
}

// SetBody 设置纯文本正文
func (builder *EmailBuilder) SetBody(body string) {
	builder.body = body
}

// Build 构建完整的邮件内容
// 头部按固定顺序写出,跳过未设置的头部
func (builder *EmailBuilder) Build() []byte {
	var content strings.Builder

	for _, name := range headerOrder {
		value := builder.headers.Get(name)
		if value == "" {
			continue
		}

		content.WriteString(fmt.Sprintf("%s: %s%s", name, value, lineBreak))
	}

	content.WriteString(lineBreak)
	content.WriteString(builder.body)

	return []byte(content.String())
}

//
// 主题编码
//

// encodeSubject 编码邮件主题
// 如果包含非 ASCII 字符则使用 Base64 编码
func encodeSubject(subject string) string {
	if subject == "" {
		return defaultSubject
	}

	if containsNonASCII(subject) {
		return encodeToBase64Subject(subject)
	}

	return subject
}

// containsNonASCII 检查字符串是否包含非 ASCII 字符
func containsNonASCII(text string) bool {
	for _, character := range text {
		if character > 127 {
			return true
		}
	}

	return false
}

// encodeToBase64Subject 将主题编码为 Base64 格式
func encodeToBase64Subject(subject string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(subject))
	return fmt.Sprintf("=?UTF-8?B?%s?=", encoded)
}

//
// 地址处理工具
//

// bareAddress 提取裸邮箱地址
// "Name <user@host>" 形式被剥离为 user@host,裸地址原样返回
func bareAddress(fromAddress string) string {
	if parsed, err := mail.ParseAddress(fromAddress); err == nil {
		return parsed.Address
	}

	return fromAddress
}

// fromDomain 提取发件人地址中的域名部分
func fromDomain(fromAddress string) string {
	address := bareAddress(fromAddress)

	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		return address[at+1:]
	}

	return fallbackDomain
}

// generateMessageID 生成全局唯一的 Message-ID
func generateMessageID(fromAddress string, sentAt time.Time) string {
	return fmt.Sprintf("<%d.%d@%s>", sentAt.UnixNano(), randomToken(), fromDomain(fromAddress))
}

// randomToken 生成随机标记,随机源不可用时退化为纳秒时间戳
func randomToken() uint64 {
	var token uint64
	if err := binary.Read(rand.Reader, binary.LittleEndian, &token); err != nil {
		return uint64(time.Now().UnixNano())
	}

	return token
}
