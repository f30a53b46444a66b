package modem

import (
	"context"
	"log"

	"github.com/godbus/dbus/v5"
)

// PropertyProxy 远端对象的属性快照
// 构造时一次性拉取指定接口下的全部属性并做类型规整;快照不会自动刷新,
// 观察新状态需要构造新实例。拉取失败只记日志,之后所有读取都按缺失处理
type PropertyProxy struct {
	bus           Bus
	path          dbus.ObjectPath
	interfaceName string
	snapshot      map[string]interface{}
}

// NewPropertyProxy 绑定对象路径并立即拉取属性快照
func NewPropertyProxy(ctx context.Context, bus Bus, path dbus.ObjectPath, interfaceName string) *PropertyProxy {
	proxy := &PropertyProxy{bus: bus, path: path, interfaceName: interfaceName}
	proxy.fetchSnapshot(ctx)
	return proxy
}

// fetchSnapshot 执行一次批量属性拉取
func (proxy *PropertyProxy) fetchSnapshot(ctx context.Context) {
	properties, err := proxy.bus.Properties(ctx, proxy.path, proxy.interfaceName)
	if err != nil {
		log.Printf("%s 拉取属性失败 path=%s iface=%s: %v", logPrefix, proxy.path, proxy.interfaceName, err)
		return
	}

	snapshot := make(map[string]interface{}, len(properties))
	for name, variant := range properties {
		snapshot[name] = normalizeValue(variant)
	}
	proxy.snapshot = snapshot
}

// Path 返回绑定的对象路径
func (proxy *PropertyProxy) Path() dbus.ObjectPath {
	return proxy.path
}

// Get 返回规整后的属性值
// 属性名未知或快照缺失时返回 false
func (proxy *PropertyProxy) Get(name string) (interface{}, bool) {
	if proxy.snapshot == nil {
		return nil, false
	}
	value, exists := proxy.snapshot[name]
	return value, exists
}

// GetString 返回字符串属性
func (proxy *PropertyProxy) GetString(name string) (string, bool) {
	value, exists := proxy.Get(name)
	if !exists {
		return "", false
	}
	text, ok := value.(string)
	if !ok {
		return "", false
	}
	return text, true
}

// GetInt 返回整数属性
func (proxy *PropertyProxy) GetInt(name string) (int64, bool) {
	value, exists := proxy.Get(name)
	if !exists {
		return 0, false
	}
	number, ok := value.(int64)
	if !ok {
		return 0, false
	}
	return number, true
}

// GetStringList 返回字符串序列属性
func (proxy *PropertyProxy) GetStringList(name string) ([]string, bool) {
	value, exists := proxy.Get(name)
	if !exists {
		return nil, false
	}

	switch typed := value.(type) {
	case []string:
		return typed, true
	case []interface{}:
		list := make([]string, 0, len(typed))
		for _, element := range typed {
			text, ok := element.(string)
			if !ok {
				return nil, false
			}
			list = append(list, text)
		}
		return list, true
	default:
		return nil, false
	}
}
