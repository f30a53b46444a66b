package modem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/godbus/dbus/v5"
)

// MessagingService 调制解调器短信子接口的本地视图
// 与所属调制解调器共享对象路径,只是绑定另一个接口的属性快照
type MessagingService struct {
	bus   Bus
	proxy *PropertyProxy
}

// NewMessagingService 在指定调制解调器路径上绑定短信接口
func NewMessagingService(ctx context.Context, bus Bus, modemPath dbus.ObjectPath) *MessagingService {
	return &MessagingService{bus: bus, proxy: NewPropertyProxy(ctx, bus, modemPath, messagingInterface)}
}

// ListMessages 返回快照中的短信对象路径列表
func (service *MessagingService) ListMessages() []dbus.ObjectPath {
	listed, exists := service.proxy.GetStringList("Messages")
	if !exists {
		return nil
	}

	paths := make([]dbus.ObjectPath, 0, len(listed))
	for _, path := range listed {
		paths = append(paths, dbus.ObjectPath(path))
	}
	return paths
}

// sortableMessage 排序用的消息与预解析时间戳
type sortableMessage struct {
	message *SmsMessage
	key     time.Time
}

// Received 返回处于已接收状态的短信
// 按时间戳排序,缺失时间戳按最早处理;排序稳定,相同键保持枚举顺序;
// descending 为 true 时最新在前(默认用法)
func (service *MessagingService) Received(ctx context.Context, descending bool) []*SmsMessage {
	var entries []sortableMessage

	for _, path := range service.ListMessages() {
		message := NewSmsMessage(ctx, service.bus, path)
		if message.State() != SmsStateReceived {
			continue
		}

		// 零值时间即"最早",让无时间戳的消息排到最旧一端
		key := time.Time{}
		if receivedAt, ok := message.ReceivedAt(); ok {
			key = receivedAt
		}
		entries = append(entries, sortableMessage{message: message, key: key})
	}

	sort.SliceStable(entries, func(left, right int) bool {
		if descending {
			return entries[left].key.After(entries[right].key)
		}
		return entries[left].key.Before(entries[right].key)
	})

	messages := make([]*SmsMessage, 0, len(entries))
	for _, entry := range entries {
		messages = append(messages, entry.message)
	}
	return messages
}

// MessageByID 按编号或完整路径解析一条短信
// 仅当路径出现在当前消息列表中才构造实体,否则返回 nil
func (service *MessagingService) MessageByID(ctx context.Context, idOrPath string) *SmsMessage {
	path, ok := EncodeObjectPath(KindSMS, idOrPath)
	if !ok {
		return nil
	}

	for _, listed := range service.ListMessages() {
		if listed == path {
			return NewSmsMessage(ctx, service.bus, path)
		}
	}
	return nil
}

// Delete 删除一条远端短信
// 失败向调用方返回错误:删除失败意味着后续轮询可能重复投递,
// 由调用方决定如何记录
func (service *MessagingService) Delete(ctx context.Context, path dbus.ObjectPath) error {
	if err := service.bus.Call(ctx, service.proxy.Path(), methodMessagingDelete, path); err != nil {
		return fmt.Errorf("delete sms %s: %w", path, err)
	}
	return nil
}
