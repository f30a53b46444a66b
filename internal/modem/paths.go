package modem

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
)

// ObjectKind 管理服务对象类别
// 对象路径形如 <根路径>/<类别>/<编号>,编号是路径中唯一可变的段
type ObjectKind string

const (
	// KindModem 调制解调器对象
	KindModem ObjectKind = "Modem"
	// KindSMS 短信对象
	KindSMS ObjectKind = "SMS"
)

// basePath 返回该类别对象的路径前缀(含结尾斜杠)
func (kind ObjectKind) basePath() string {
	return ManagerRootPath + "/" + string(kind) + "/"
}

// EncodeObjectPath 将数字编号或完整路径规整为规范对象路径
// 输入已含本类别前缀时取末段重新校验;非数字编号记错误日志并返回 false,
// 调用方将其视为"对象不存在",不向上抛错
func EncodeObjectPath(kind ObjectKind, idOrPath string) (dbus.ObjectPath, bool) {
	base := kind.basePath()

	candidate := idOrPath
	if strings.Contains(idOrPath, base) {
		segments := strings.Split(idOrPath, "/")
		candidate = segments[len(segments)-1]
	}

	id, err := strconv.ParseUint(candidate, 10, 64)
	if err != nil {
		log.Printf("%s Bad object ID provided: %s", logPrefix, idOrPath)
		return "", false
	}

	return dbus.ObjectPath(fmt.Sprintf("%s%d", base, id)), true
}
