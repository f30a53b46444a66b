package forwarder

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/Noodlesalat/sms2mail/internal/modem"
)

const (
	modemInterface     = modem.ManagerService + ".Modem"
	messagingInterface = modem.ManagerService + ".Modem.Messaging"
	smsInterface       = modem.ManagerService + ".Sms"
	deleteMethod       = messagingInterface + ".Delete"
)

// journal 按发生顺序记录假对象观察到的动作
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) record(format string, args ...interface{}) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// propertyKey 假总线属性表键
type propertyKey struct {
	path  dbus.ObjectPath
	iface string
}

// fakeBus 以内存表驱动的总线假对象
type fakeBus struct {
	mu         sync.Mutex
	properties map[propertyKey]map[string]dbus.Variant
	managed    modem.ManagedObjectMap
	deleteErr  error
	journal    *journal
}

func newFakeBus(journal *journal) *fakeBus {
	return &fakeBus{
		properties: make(map[propertyKey]map[string]dbus.Variant),
		managed:    make(modem.ManagedObjectMap),
		journal:    journal,
	}
}

// addModem 注册一个调制解调器对象及其固定标识属性
func (bus *fakeBus) addModem(id int) dbus.ObjectPath {
	path := dbus.ObjectPath(fmt.Sprintf("%s/Modem/%d", modem.ManagerRootPath, id))
	properties := map[string]dbus.Variant{
		"Manufacturer":        dbus.MakeVariant("QUECTEL"),
		"Model":               dbus.MakeVariant("EC25"),
		"EquipmentIdentifier": dbus.MakeVariant("867698040000000"),
		"OwnNumbers":          dbus.MakeVariant([]string{"+4915700000000"}),
	}
	bus.managed[path] = map[string]map[string]dbus.Variant{modemInterface: properties}
	bus.properties[propertyKey{path: path, iface: modemInterface}] = properties
	return path
}

// addSms 注册一条已接收状态的短信对象
func (bus *fakeBus) addSms(id int, number, text, timestamp string) dbus.ObjectPath {
	return bus.addSmsWithState(id, uint32(modem.SmsStateReceived), number, text, timestamp)
}

// addSmsWithState 注册一条指定生命周期状态的短信对象
func (bus *fakeBus) addSmsWithState(id int, state uint32, number, text, timestamp string) dbus.ObjectPath {
	path := dbus.ObjectPath(fmt.Sprintf("%s/SMS/%d", modem.ManagerRootPath, id))
	properties := map[string]dbus.Variant{
		"State":  dbus.MakeVariant(state),
		"Number": dbus.MakeVariant(number),
		"Text":   dbus.MakeVariant(text),
	}
	if timestamp != "" {
		properties["Timestamp"] = dbus.MakeVariant(timestamp)
	}
	bus.properties[propertyKey{path: path, iface: smsInterface}] = properties
	return path
}

// setMessages 设置某调制解调器短信接口的消息列表
func (bus *fakeBus) setMessages(modemPath dbus.ObjectPath, smsPaths ...dbus.ObjectPath) {
	bus.properties[propertyKey{path: modemPath, iface: messagingInterface}] = map[string]dbus.Variant{
		"Messages": dbus.MakeVariant(smsPaths),
	}
}

func (bus *fakeBus) Properties(_ context.Context, path dbus.ObjectPath, iface string) (map[string]dbus.Variant, error) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	properties, exists := bus.properties[propertyKey{path: path, iface: iface}]
	if !exists {
		return nil, fmt.Errorf("no such object %s", path)
	}
	return properties, nil
}

func (bus *fakeBus) ManagedObjects(_ context.Context, _ dbus.ObjectPath) (modem.ManagedObjectMap, error) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	return bus.managed, nil
}

func (bus *fakeBus) Call(_ context.Context, _ dbus.ObjectPath, method string, args ...interface{}) error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if method == deleteMethod && len(args) == 1 {
		if bus.deleteErr != nil {
			bus.journal.record("delete failed %v", args[0])
			return bus.deleteErr
		}
		bus.journal.record("delete %v", args[0])
	}
	return nil
}

func (bus *fakeBus) Close() error {
	return nil
}

// sentMail 假邮件发送器记录的一封邮件
type sentMail struct {
	recipients map[string]string
	subject    string
	body       string
}

// fakeMailer 记录发送请求的邮件发送器假对象
// failSubjects 中列出的主题返回注入的失败
type fakeMailer struct {
	mu           sync.Mutex
	sent         []sentMail
	failSubjects map[string]error
	journal      *journal
}

func newFakeMailer(journal *journal) *fakeMailer {
	return &fakeMailer{
		failSubjects: make(map[string]error),
		journal:      journal,
	}
}

func (mailer *fakeMailer) Send(_ context.Context, recipients map[string]string, subject, body string) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()

	if err := mailer.failSubjects[subject]; err != nil {
		mailer.journal.record("send failed %s", subject)
		return err
	}
	mailer.sent = append(mailer.sent, sentMail{recipients: recipients, subject: subject, body: body})
	mailer.journal.record("send %s", subject)
	return nil
}

func (mailer *fakeMailer) sentMails() []sentMail {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()

	return append([]sentMail(nil), mailer.sent...)
}
