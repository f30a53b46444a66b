package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Noodlesalat/sms2mail/internal/modem"
)

var (
	modemRef  = flag.String("modem", "", "调制解调器编号或完整对象路径,留空使用第一个")
	mode      = flag.String("mode", "modems", "操作模式: modems|find|messages|show|purge")
	property  = flag.String("property", "", "find 模式使用的属性名")
	value     = flag.String("value", "", "find 模式使用的属性值")
	smsRef    = flag.String("sms", "", "show 模式使用的短信编号或完整对象路径")
	olderThan = flag.Int("older-than", 30, "purge 模式删除多少天前的短信")
	dryRun    = flag.Bool("dry-run", false, "仅预览,不执行实际操作")
)

func main() {
	flag.Parse()

	bus, err := modem.ConnectSystemBus()
	if err != nil {
		log.Fatalf("连接系统总线失败: %v", err)
	}
	defer bus.Close()

	inspector := &ModemInspector{
		bus:    bus,
		dryRun: *dryRun,
	}

	ctx := context.Background()
	switch *mode {
	case "modems":
		inspector.ListModems(ctx)
	case "find":
		inspector.FindModem(ctx, *property, *value)
	case "messages":
		inspector.ListMessages(ctx, *modemRef)
	case "show":
		inspector.ShowMessage(ctx, *modemRef, *smsRef)
	case "purge":
		inspector.PurgeMessages(ctx, *modemRef, *olderThan)
	default:
		log.Fatalf("未知模式: %s", *mode)
	}
}

// ModemInspector 调制解调器巡检工具
type ModemInspector struct {
	bus    modem.Bus
	dryRun bool
}

// ListModems 列出所有调制解调器及其标识属性
func (inspector *ModemInspector) ListModems(ctx context.Context) {
	manager := modem.NewManager(ctx, inspector.bus)
	paths := manager.ListModems()

	log.Printf("找到 %d 个调制解调器", len(paths))

	for _, path := range paths {
		device := modem.NewModem(ctx, inspector.bus, path)
		fmt.Printf("%s\n", path)
		fmt.Printf("  制造商: %s\n", device.Manufacturer())
		fmt.Printf("  型号: %s\n", device.Model())
		fmt.Printf("  设备标识: %s\n", device.EquipmentIdentifier())
		fmt.Printf("  本机号码: %s\n", strings.Join(device.OwnNumbers(), ", "))
	}
}

// FindModem 按属性值检索调制解调器
func (inspector *ModemInspector) FindModem(ctx context.Context, property, value string) {
	if property == "" || value == "" {
		log.Fatalf("find 模式需要 -property 和 -value 参数")
	}

	manager := modem.NewManager(ctx, inspector.bus)
	single, matches := manager.FindByProperty(ctx, property, value)

	if single != nil {
		fmt.Printf("唯一匹配: %s (%s %s)\n", single.Path(), single.Manufacturer(), single.Model())
		return
	}

	log.Printf("找到 %d 个匹配", len(matches))
	for _, device := range matches {
		fmt.Printf("%s (%s %s)\n", device.Path(), device.Manufacturer(), device.Model())
	}
}

// ListMessages 列出调制解调器上的全部短信
// 包含未接收完成的条目,便于排查卡在中间状态的消息
func (inspector *ModemInspector) ListMessages(ctx context.Context, reference string) {
	messaging := inspector.resolveMessaging(ctx, reference)

	paths := messaging.ListMessages()
	log.Printf("调制解调器上共有 %d 条短信", len(paths))

	for _, path := range paths {
		message := modem.NewSmsMessage(ctx, inspector.bus, path)
		fmt.Printf("%s  [%s]  %s  %s  %s\n",
			path,
			message.State(),
			message.Number(),
			formatReceivedAt(message),
			message.Text(),
		)
	}
}

// ShowMessage 显示一条短信的完整属性
func (inspector *ModemInspector) ShowMessage(ctx context.Context, reference, smsReference string) {
	if smsReference == "" {
		log.Fatalf("show 模式需要 -sms 参数")
	}

	messaging := inspector.resolveMessaging(ctx, reference)

	message := messaging.MessageByID(ctx, smsReference)
	if message == nil {
		log.Fatalf("未找到短信: %q", smsReference)
	}

	fmt.Printf("路径: %s\n", message.Path())
	fmt.Printf("状态: %s\n", message.State())
	fmt.Printf("发送方: %s\n", message.Number())
	fmt.Printf("原始时间戳: %s\n", message.Timestamp())
	fmt.Printf("接收时间: %s\n", formatReceivedAt(message))
	fmt.Printf("正文: %s\n", message.Text())
}

// PurgeMessages 清理早于截止时间的已接收短信
func (inspector *ModemInspector) PurgeMessages(ctx context.Context, reference string, olderThanDays int) {
	messaging := inspector.resolveMessaging(ctx, reference)

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	log.Printf("开始清理 %s 之前接收的短信...", cutoff.Format(time.RFC3339))

	deletedCount := 0
	for _, message := range messaging.Received(ctx, false) {
		receivedAt, ok := message.ReceivedAt()
		if !ok || !receivedAt.Before(cutoff) {
			continue
		}

		if !inspector.dryRun {
			if err := messaging.Delete(ctx, message.Path()); err != nil {
				log.Printf("删除短信 %s 失败: %v", message.Path(), err)
				continue
			}
		}
		deletedCount++
	}

	if inspector.dryRun {
		log.Printf("预览完成: 将删除 %d 条超过 %d 天的短信", deletedCount, olderThanDays)
		return
	}
	log.Printf("清理完成: 删除了 %d 条超过 %d 天的短信", deletedCount, olderThanDays)
}

// 辅助函数

// resolveMessaging 解析目标调制解调器并绑定其短信接口
// reference 为空时使用枚举到的第一个设备
func (inspector *ModemInspector) resolveMessaging(ctx context.Context, reference string) *modem.MessagingService {
	manager := modem.NewManager(ctx, inspector.bus)

	var device *modem.Modem
	if reference == "" {
		device = manager.First(ctx)
	} else {
		device = manager.Resolve(ctx, reference)
	}
	if device == nil {
		log.Fatalf("未找到调制解调器: %q", reference)
	}

	return device.Messaging(ctx)
}

func formatReceivedAt(message *modem.SmsMessage) string {
	receivedAt, ok := message.ReceivedAt()
	if !ok {
		return "-"
	}
	return receivedAt.Format(time.RFC3339)
}
