// Package modem 通过系统总线上的调制解调器管理服务访问蜂窝模块。
// 对象发现、属性快照与短信检索都建立在一个最小的总线访问面之上,
// 生产实现基于 godbus,测试中以假对象替代。
package modem

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// --------------------------- 总线常量 ---------------------------

const (
	// ManagerService 调制解调器管理服务的总线名称
	ManagerService = "org.freedesktop.ModemManager1"
	// ManagerRootPath 管理服务对象树根路径
	ManagerRootPath = "/org/freedesktop/ModemManager1"

	modemInterface     = ManagerService + ".Modem"
	messagingInterface = ManagerService + ".Modem.Messaging"
	smsInterface       = ManagerService + ".Sms"

	propertiesInterface    = "org.freedesktop.DBus.Properties"
	objectManagerInterface = "org.freedesktop.DBus.ObjectManager"

	methodGetAll            = propertiesInterface + ".GetAll"
	methodGetManagedObjects = objectManagerInterface + ".GetManagedObjects"
	methodMessagingDelete   = messagingInterface + ".Delete"

	logPrefix = "[ModemManager]"
)

// --------------------------- 总线访问面 ---------------------------

// ManagedObjectMap 受管对象枚举结果:对象路径 -> 接口名 -> 属性负载
type ManagedObjectMap = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Bus 对系统总线的最小访问面
// 所有实体通过注入的句柄访问总线,不持有隐式全局连接
type Bus interface {
	// Properties 拉取某对象在指定接口下的全部属性
	Properties(ctx context.Context, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error)
	// ManagedObjects 执行总线级受管对象枚举
	ManagedObjects(ctx context.Context, path dbus.ObjectPath) (ManagedObjectMap, error)
	// Call 调用对象方法,忽略返回值
	Call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) error
	// Close 释放底层连接
	Close() error
}

// systemBus 基于 godbus 的系统总线实现
type systemBus struct {
	connection *dbus.Conn
	service    string
}

// ConnectSystemBus 建立到系统总线的私有连接并绑定管理服务
func ConnectSystemBus() (Bus, error) {
	connection, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &systemBus{connection: connection, service: ManagerService}, nil
}

func (bus *systemBus) Properties(ctx context.Context, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	var properties map[string]dbus.Variant

	call := bus.connection.Object(bus.service, path).CallWithContext(ctx, methodGetAll, 0, iface)
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&properties); err != nil {
		return nil, fmt.Errorf("decode properties of %s: %w", path, err)
	}
	return properties, nil
}

func (bus *systemBus) ManagedObjects(ctx context.Context, path dbus.ObjectPath) (ManagedObjectMap, error) {
	var managed ManagedObjectMap

	call := bus.connection.Object(bus.service, path).CallWithContext(ctx, methodGetManagedObjects, 0)
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&managed); err != nil {
		return nil, fmt.Errorf("decode managed objects: %w", err)
	}
	return managed, nil
}

func (bus *systemBus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) error {
	return bus.connection.Object(bus.service, path).CallWithContext(ctx, method, 0, args...).Err
}

func (bus *systemBus) Close() error {
	return bus.connection.Close()
}

// --------------------------- 线缆值规整 ---------------------------

// normalizeValue 将线缆值规整为基础 Go 类型
// 规则:字符串与对象路径 -> string;32 位整数(含无符号)-> int64;
// 序列 -> 逐元素递归规整;其余类型原样透传,调用方自行容错
func normalizeValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case dbus.Variant:
		return normalizeValue(typed.Value())
	case dbus.ObjectPath:
		return string(typed)
	case string:
		return typed
	case int32:
		return int64(typed)
	case uint32:
		return int64(typed)
	case []string:
		return typed
	case []dbus.ObjectPath:
		list := make([]string, 0, len(typed))
		for _, path := range typed {
			list = append(list, string(path))
		}
		return list
	case []int32:
		list := make([]int64, 0, len(typed))
		for _, element := range typed {
			list = append(list, int64(element))
		}
		return list
	case []uint32:
		list := make([]int64, 0, len(typed))
		for _, element := range typed {
			list = append(list, int64(element))
		}
		return list
	case []dbus.Variant:
		list := make([]interface{}, 0, len(typed))
		for _, element := range typed {
			list = append(list, normalizeValue(element))
		}
		return list
	case []interface{}:
		list := make([]interface{}, 0, len(typed))
		for _, element := range typed {
			list = append(list, normalizeValue(element))
		}
		return list
	default:
		// 未识别的线缆类型不视为错误,原样返回
		return value
	}
}
