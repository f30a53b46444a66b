// Package forwarder 实现短信转邮件的核心轮询循环:
// 发现调制解调器,读取已接收短信,逐条渲染并通过 SMTP 发出,
// 可选在发送成功后删除源短信。
package forwarder

import (
	"context"
	"log"
	"time"

	"github.com/Noodlesalat/sms2mail/internal/mailer"
	"github.com/Noodlesalat/sms2mail/internal/modem"
	"github.com/Noodlesalat/sms2mail/internal/seencache"
)

const logPrefix = "[Forwarder]"

// Options 轮询循环的行为配置
type Options struct {
	// Recipients 收件人映射,显示名 -> 邮箱地址
	Recipients map[string]string
	// KnownSenders 发送方号码 -> 可读名称
	KnownSenders map[string]string
	// DeleteAfterSending 发送成功后是否删除源短信
	DeleteAfterSending bool
	// Interval 连续模式下两轮轮询之间的间隔
	Interval time.Duration
}

// Forwarder 短信转邮件转发器
type Forwarder struct {
	bus                modem.Bus
	mailer             mailer.Mailer
	recipients         map[string]string
	knownSenders       map[string]string
	deleteAfterSending bool
	interval           time.Duration

	// seenCache 为 nil 时重复检测关闭
	seenCache seencache.Checker
	seenTTL   time.Duration

	tracker *StatsTracker
}

// NewForwarder 创建转发器实例
func NewForwarder(bus modem.Bus, sender mailer.Mailer, options Options) *Forwarder {
	return &Forwarder{
		bus:                bus,
		mailer:             sender,
		recipients:         options.Recipients,
		knownSenders:       options.KnownSenders,
		deleteAfterSending: options.DeleteAfterSending,
		interval:           options.Interval,
		tracker:            NewStatsTracker(),
	}
}

// SetSeenCache 启用已转发标记缓存
func (forwarder *Forwarder) SetSeenCache(checker seencache.Checker, ttl time.Duration) {
	forwarder.seenCache = checker
	forwarder.seenTTL = ttl
}

// Stats 返回运行统计跟踪器
func (forwarder *Forwarder) Stats() *StatsTracker {
	return forwarder.tracker
}

// Run 执行转发循环
// continuous 为 false 时只跑一轮便返回;
// 为 true 时每轮结束后等待固定间隔再跑下一轮,直到 ctx 取消
func (forwarder *Forwarder) Run(ctx context.Context, continuous bool) {
	forwarder.RunCycle(ctx)
	if !continuous {
		return
	}

	for {
		timer := time.NewTimer(forwarder.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("%s 收到停止信号,退出轮询", logPrefix)
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}
		forwarder.RunCycle(ctx)
	}
}

// RunCycle 执行一轮完整的取信-发送流程
func (forwarder *Forwarder) RunCycle(ctx context.Context) {
	forwarder.tracker.CycleStarted()
	defer forwarder.tracker.CycleFinished()

	manager := modem.NewManager(ctx, forwarder.bus)
	device := manager.First(ctx)
	if device == nil {
		log.Printf("%s 未发现调制解调器,本轮跳过", logPrefix)
		return
	}
	forwarder.tracker.ModemObserved(modemIdentity(device))

	messaging := device.Messaging(ctx)
	for _, message := range messaging.Received(ctx, true) {
		if ctx.Err() != nil {
			return
		}
		forwarder.deliverMessage(ctx, messaging, message)
	}
}

// deliverMessage 处理单条短信:渲染、发送、标记、按需删除
// 发送失败只影响当前短信,不中断本轮其余短信
func (forwarder *Forwarder) deliverMessage(ctx context.Context, messaging *modem.MessagingService, message *modem.SmsMessage) {
	forwarder.tracker.MessageSeen()
	log.Printf("%s SMS from %s: %s", logPrefix, message.Number(), message.Text())

	if forwarder.alreadyForwarded(ctx, message) {
		forwarder.tracker.MessageSkipped()
		log.Printf("%s 短信 %s 已转发过,跳过", logPrefix, message.Path())
		return
	}

	senderName := displayName(forwarder.knownSenders, message.Number())
	err := forwarder.mailer.Send(ctx, forwarder.recipients, renderSubject(senderName), renderBody(senderName, message))
	if err != nil {
		forwarder.tracker.MessageFailed()
		log.Printf("%s Failed to send email: %v", logPrefix, err)
		return
	}
	forwarder.tracker.MessageSent()
	log.Printf("%s Email sent successfully.", logPrefix)

	forwarder.markForwarded(ctx, message)
	if forwarder.deleteAfterSending {
		forwarder.deleteMessage(ctx, messaging, message)
	}
}

// alreadyForwarded 查询短信是否已带转发标记
// 缓存不可用时按未转发处理,宁可重复也不丢信
func (forwarder *Forwarder) alreadyForwarded(ctx context.Context, message *modem.SmsMessage) bool {
	if forwarder.seenCache == nil {
		return false
	}
	seen, err := forwarder.seenCache.Seen(ctx, forwarder.cacheKey(message))
	if err != nil {
		log.Printf("%s 查询标记缓存失败: %v", logPrefix, err)
		return false
	}
	return seen
}

// markForwarded 在发送成功后写入转发标记
func (forwarder *Forwarder) markForwarded(ctx context.Context, message *modem.SmsMessage) {
	if forwarder.seenCache == nil {
		return
	}
	if err := forwarder.seenCache.Mark(ctx, forwarder.cacheKey(message), forwarder.seenTTL); err != nil {
		log.Printf("%s 写入标记缓存失败: %v", logPrefix, err)
	}
}

func (forwarder *Forwarder) cacheKey(message *modem.SmsMessage) string {
	return seencache.Key(string(message.Path()), message.Timestamp(), message.Text())
}

// deleteMessage 删除已转发的源短信
func (forwarder *Forwarder) deleteMessage(ctx context.Context, messaging *modem.MessagingService, message *modem.SmsMessage) {
	if err := messaging.Delete(ctx, message.Path()); err != nil {
		forwarder.tracker.MessageDeleteFailed()
		log.Printf("%s Failed to delete SMS %s: %v", logPrefix, message.Path(), err)
		return
	}
	forwarder.tracker.MessageDeleted()
	log.Printf("%s Deleted SMS %s", logPrefix, message.Path())
}

// modemIdentity 采集调制解调器标识信息
func modemIdentity(device *modem.Modem) ModemIdentity {
	return ModemIdentity{
		Path:                string(device.Path()),
		Manufacturer:        device.Manufacturer(),
		Model:               device.Model(),
		EquipmentIdentifier: device.EquipmentIdentifier(),
		OwnNumbers:          device.OwnNumbers(),
	}
}
