package modem

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// propertyKey 假总线属性表键
type propertyKey struct {
	path  dbus.ObjectPath
	iface string
}

// recordedCall 假总线记录的一次方法调用
type recordedCall struct {
	path   dbus.ObjectPath
	method string
	args   []interface{}
}

// fakeBus 以内存表驱动的总线假对象
type fakeBus struct {
	mu            sync.Mutex
	properties    map[propertyKey]map[string]dbus.Variant
	propertiesErr map[propertyKey]error
	managed       ManagedObjectMap
	managedErr    error
	callErr       map[string]error
	calls         []recordedCall
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		properties:    make(map[propertyKey]map[string]dbus.Variant),
		propertiesErr: make(map[propertyKey]error),
		managed:       make(ManagedObjectMap),
		callErr:       make(map[string]error),
	}
}

// addModem 注册一个调制解调器对象及其属性
func (bus *fakeBus) addModem(id int, properties map[string]dbus.Variant) dbus.ObjectPath {
	path := dbus.ObjectPath(fmt.Sprintf("%s/Modem/%d", ManagerRootPath, id))
	bus.managed[path] = map[string]map[string]dbus.Variant{modemInterface: properties}
	bus.properties[propertyKey{path: path, iface: modemInterface}] = properties
	return path
}

// addSms 注册一条短信对象及其属性
func (bus *fakeBus) addSms(id int, properties map[string]dbus.Variant) dbus.ObjectPath {
	path := dbus.ObjectPath(fmt.Sprintf("%s/SMS/%d", ManagerRootPath, id))
	bus.properties[propertyKey{path: path, iface: smsInterface}] = properties
	return path
}

// setMessages 设置某调制解调器短信接口的消息列表
func (bus *fakeBus) setMessages(modemPath dbus.ObjectPath, smsPaths ...dbus.ObjectPath) {
	bus.properties[propertyKey{path: modemPath, iface: messagingInterface}] = map[string]dbus.Variant{
		"Messages": dbus.MakeVariant(smsPaths),
	}
}

// deleteCalls 返回删除调用传入的全部短信路径
func (bus *fakeBus) deleteCalls() []dbus.ObjectPath {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	var paths []dbus.ObjectPath
	for _, call := range bus.calls {
		if call.method != methodMessagingDelete || len(call.args) != 1 {
			continue
		}
		if path, ok := call.args[0].(dbus.ObjectPath); ok {
			paths = append(paths, path)
		}
	}
	return paths
}

func (bus *fakeBus) Properties(_ context.Context, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	key := propertyKey{path: path, iface: iface}
	if err := bus.propertiesErr[key]; err != nil {
		return nil, err
	}
	properties, exists := bus.properties[key]
	if !exists {
		return nil, fmt.Errorf("no such object %s", path)
	}
	return properties, nil
}

func (bus *fakeBus) ManagedObjects(_ context.Context, _ dbus.ObjectPath) (ManagedObjectMap, error) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.managedErr != nil {
		return nil, bus.managedErr
	}
	return bus.managed, nil
}

func (bus *fakeBus) Call(_ context.Context, path dbus.ObjectPath, method string, args ...interface{}) error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.calls = append(bus.calls, recordedCall{path: path, method: method, args: args})
	return bus.callErr[method]
}

func (bus *fakeBus) Close() error {
	return nil
}
