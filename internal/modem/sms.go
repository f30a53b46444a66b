package modem

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/godbus/dbus/v5"
)

// --------------------------- 短信状态 ---------------------------

// SmsState 短信生命周期状态
// 取值遵循管理服务的状态编号,本系统只读,唯一的修改手段是删除整个对象
type SmsState int64

const (
	SmsStateUnknown   SmsState = 0
	SmsStateStored    SmsState = 1
	SmsStateReceiving SmsState = 2
	SmsStateReceived  SmsState = 3
	SmsStateSending   SmsState = 4
	SmsStateSent      SmsState = 5
)

func (state SmsState) String() string {
	switch state {
	case SmsStateStored:
		return "stored"
	case SmsStateReceiving:
		return "receiving"
	case SmsStateReceived:
		return "received"
	case SmsStateSending:
		return "sending"
	case SmsStateSent:
		return "sent"
	default:
		return fmt.Sprintf("unknown(%d)", int64(state))
	}
}

// --------------------------- 短信实体 ---------------------------

// smsTimestampLayouts 管理服务可能给出的时间戳形态
// 不做时区换算,按送达的钟面时间解析与呈现
var smsTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
}

// SmsMessage 远端短信对象的本地只读视图
// 仅在一轮轮询内短暂存在;远端对象的生命周期独立于本进程
type SmsMessage struct {
	proxy *PropertyProxy
}

// NewSmsMessage 绑定一条远端短信并拉取属性快照
func NewSmsMessage(ctx context.Context, bus Bus, path dbus.ObjectPath) *SmsMessage {
	return &SmsMessage{proxy: NewPropertyProxy(ctx, bus, path, smsInterface)}
}

// Path 返回短信对象路径
func (message *SmsMessage) Path() dbus.ObjectPath {
	return message.proxy.Path()
}

// Number 返回发送方号码,缺失时为空串
func (message *SmsMessage) Number() string {
	number, _ := message.proxy.GetString("Number")
	return number
}

// Text 返回短信正文,缺失时为空串
func (message *SmsMessage) Text() string {
	text, _ := message.proxy.GetString("Text")
	return text
}

// State 返回生命周期状态,缺失时为 Unknown
func (message *SmsMessage) State() SmsState {
	value, exists := message.proxy.GetInt("State")
	if !exists {
		return SmsStateUnknown
	}
	return SmsState(value)
}

// Timestamp 返回原始 ISO-8601 时间戳字符串
func (message *SmsMessage) Timestamp() string {
	timestamp, _ := message.proxy.GetString("Timestamp")
	return timestamp
}

// ReceivedAt 惰性解析接收时间
// 解析失败记警告并返回 false;消息仍可投递,只是排序按最早处理
func (message *SmsMessage) ReceivedAt() (time.Time, bool) {
	raw := message.Timestamp()
	if raw == "" {
		log.Printf("%s 短信缺少时间戳 path=%s", logPrefix, message.Path())
		return time.Time{}, false
	}

	parsed, err := parseSmsTimestamp(raw)
	if err != nil {
		log.Printf("%s 时间戳解析失败 path=%s: %v", logPrefix, message.Path(), err)
		return time.Time{}, false
	}
	return parsed, true
}

// parseSmsTimestamp 依次尝试已知时间戳形态
func parseSmsTimestamp(raw string) (time.Time, error) {
	for _, layout := range smsTimestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format '%s'", raw)
}
