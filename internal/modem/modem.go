package modem

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// Modem 远端调制解调器对象的本地只读视图
// 由 Manager 解析得到,构造后不可变,轮询结束即丢弃
type Modem struct {
	bus   Bus
	proxy *PropertyProxy
}

// NewModem 绑定一个调制解调器对象并拉取属性快照
func NewModem(ctx context.Context, bus Bus, path dbus.ObjectPath) *Modem {
	return &Modem{bus: bus, proxy: NewPropertyProxy(ctx, bus, path, modemInterface)}
}

// Path 返回调制解调器对象路径
func (device *Modem) Path() dbus.ObjectPath {
	return device.proxy.Path()
}

// Manufacturer 返回制造商名称,缺失时为空串
func (device *Modem) Manufacturer() string {
	manufacturer, _ := device.proxy.GetString("Manufacturer")
	return manufacturer
}

// Model 返回型号名称,缺失时为空串
func (device *Modem) Model() string {
	model, _ := device.proxy.GetString("Model")
	return model
}

// EquipmentIdentifier 返回设备标识(IMEI),缺失时为空串
func (device *Modem) EquipmentIdentifier() string {
	identifier, _ := device.proxy.GetString("EquipmentIdentifier")
	return identifier
}

// OwnNumbers 返回本机号码列表,缺失时为 nil
func (device *Modem) OwnNumbers() []string {
	numbers, _ := device.proxy.GetStringList("OwnNumbers")
	return numbers
}

// Property 返回任意规整后属性,供按属性检索使用
func (device *Modem) Property(name string) (interface{}, bool) {
	return device.proxy.Get(name)
}

// Messaging 绑定本机的短信子接口
// 复用本机的总线句柄与对象路径(非拥有引用),不建立新连接
func (device *Modem) Messaging(ctx context.Context) *MessagingService {
	return NewMessagingService(ctx, device.bus, device.proxy.Path())
}
