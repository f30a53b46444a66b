package forwarder

import (
	"fmt"

	"github.com/Noodlesalat/sms2mail/internal/modem"
)

// ==================== 邮件内容渲染 ====================

const (
	subjectFormat = "New SMS from %s"
	bodyFormat    = "From: %s\nDate: %s\n\n%s"

	// 德式日期显示,例如 "15.01.2024, 09:30:00 Uhr"
	displayDateLayout  = "02.01.2006, 15:04:05 Uhr"
	displayDateMissing = "Datum nicht verfügbar"
)

// displayName 将发送方号码映射为可读名称
// 未配置映射时原样返回号码
func displayName(knownSenders map[string]string, number string) string {
	if name, exists := knownSenders[number]; exists && name != "" {
		return name
	}
	return number
}

// renderDisplayDate 渲染短信接收时间的显示形式
func renderDisplayDate(message *modem.SmsMessage) string {
	receivedAt, ok := message.ReceivedAt()
	if !ok {
		return displayDateMissing
	}
	return receivedAt.Format(displayDateLayout)
}

// renderSubject 渲染邮件主题
func renderSubject(senderName string) string {
	return fmt.Sprintf(subjectFormat, senderName)
}

// renderBody 渲染邮件正文
func renderBody(senderName string, message *modem.SmsMessage) string {
	return fmt.Sprintf(bodyFormat, senderName, renderDisplayDate(message), message.Text())
}
