package modem

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
)

// --------------------------- 属性检索名单 ---------------------------

// lookupProperties 按属性检索允许使用的属性名
// 名单外的属性名直接视为无结果
var lookupProperties = map[string]struct{}{
	"Manufacturer":        {},
	"Model":               {},
	"EquipmentIdentifier": {},
	"OwnNumbers":          {},
	"PrimaryPort":         {},
	"State":               {},
}

// --------------------------- 管理服务客户端 ---------------------------

// Manager 调制解调器管理服务客户端
// 构造时枚举一次受管对象,生命周期内使用该快照;
// 每轮轮询构造新实例以观察最新的设备集合
type Manager struct {
	bus        Bus
	modemPaths []dbus.ObjectPath
}

// NewManager 绑定管理服务并枚举当前调制解调器
func NewManager(ctx context.Context, bus Bus) *Manager {
	manager := &Manager{bus: bus}
	manager.enumerateModems(ctx)
	return manager
}

// enumerateModems 执行总线级受管对象枚举
// 只保留路径条目,随路径返回的属性负载在本层不使用;
// 枚举结果按路径尾段编号排序,保证顺序确定
func (manager *Manager) enumerateModems(ctx context.Context) {
	managed, err := manager.bus.ManagedObjects(ctx, dbus.ObjectPath(ManagerRootPath))
	if err != nil {
		log.Printf("%s 枚举受管对象失败: %v", logPrefix, err)
		return
	}

	paths := make([]dbus.ObjectPath, 0, len(managed))
	for path := range managed {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(left, right int) bool {
		return modemPathBefore(paths[left], paths[right])
	})

	manager.modemPaths = paths
}

// modemPathBefore 按尾段编号比较两条对象路径
func modemPathBefore(left, right dbus.ObjectPath) bool {
	leftID, leftOK := trailingID(left)
	rightID, rightOK := trailingID(right)
	if leftOK && rightOK && leftID != rightID {
		return leftID < rightID
	}
	return left < right
}

// trailingID 提取路径末段的数字编号
func trailingID(path dbus.ObjectPath) (uint64, bool) {
	segments := strings.Split(string(path), "/")
	id, err := strconv.ParseUint(segments[len(segments)-1], 10, 64)
	return id, err == nil
}

// ListModems 返回枚举到的调制解调器对象路径
func (manager *Manager) ListModems() []dbus.ObjectPath {
	return manager.modemPaths
}

// Resolve 按编号或完整路径解析一个调制解调器
// 仅当规范化路径出现在枚举结果中才构造实体,避免绑定到已移除的对象
func (manager *Manager) Resolve(ctx context.Context, idOrPath string) *Modem {
	path, ok := EncodeObjectPath(KindModem, idOrPath)
	if !ok {
		return nil
	}

	for _, listed := range manager.modemPaths {
		if listed == path {
			return NewModem(ctx, manager.bus, path)
		}
	}
	return nil
}

// First 返回枚举到的第一个调制解调器,没有时返回 nil
// 调制解调器未接入是瞬态情况,不构成错误
func (manager *Manager) First(ctx context.Context) *Modem {
	if len(manager.modemPaths) == 0 {
		return nil
	}
	return NewModem(ctx, manager.bus, manager.modemPaths[0])
}

// FindByProperty 按属性值检索调制解调器
// 恰有一个匹配时经 single 返回且 matches 为 nil;其余情况 single 为 nil,
// matches 给出全部匹配(可能为空)。两种返回形态由调用方按结构区分。
// 属性名限定在 lookupProperties 名单内,名单外返回 (nil, nil)
func (manager *Manager) FindByProperty(ctx context.Context, name, value string) (*Modem, []*Modem) {
	if _, allowed := lookupProperties[name]; !allowed {
		log.Printf("%s 不支持按属性 %s 检索", logPrefix, name)
		return nil, nil
	}

	var matches []*Modem
	for _, path := range manager.modemPaths {
		device := NewModem(ctx, manager.bus, path)
		property, exists := device.Property(name)
		if !exists {
			continue
		}
		if propertyContains(property, value) {
			matches = append(matches, device)
		}
	}

	if len(matches) == 1 {
		return matches[0], nil
	}
	return nil, matches
}

// propertyContains 依属性形态实施包含判断
// 字符串按子串;序列按元素相等;整数按十进制文本精确比较
func propertyContains(property interface{}, value string) bool {
	switch typed := property.(type) {
	case string:
		return strings.Contains(typed, value)
	case []string:
		for _, element := range typed {
			if element == value {
				return true
			}
		}
		return false
	case []interface{}:
		for _, element := range typed {
			text, ok := element.(string)
			if ok && text == value {
				return true
			}
		}
		return false
	case int64:
		return strconv.FormatInt(typed, 10) == value
	default:
		return false
	}
}
