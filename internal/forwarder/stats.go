package forwarder

import (
	"sync"
	"time"
)

// ==================== 数据结构 ====================

// ModemIdentity 最近一次轮询发现的调制解调器标识
type ModemIdentity struct {
	Path                string   `json:"path"`
	Manufacturer        string   `json:"manufacturer"`
	Model               string   `json:"model"`
	EquipmentIdentifier string   `json:"equipment_identifier"`
	OwnNumbers          []string `json:"own_numbers"`
}

// CycleStats 轮询运行统计
type CycleStats struct {
	CyclesRun           int64          `json:"cycles_run"`
	MessagesSeen        int64          `json:"messages_seen"`
	MessagesSent        int64          `json:"messages_sent"`
	MessagesFailed      int64          `json:"messages_failed"`
	MessagesDeleted     int64          `json:"messages_deleted"`
	DeleteFailures      int64          `json:"delete_failures"`
	MessagesSkipped     int64          `json:"messages_skipped"`
	LastCycleStart      time.Time      `json:"last_cycle_start"`
	LastCycleDurationMS int64          `json:"last_cycle_duration_ms"`
	Modem               *ModemIdentity `json:"modem,omitempty"`
}

// ==================== 统计跟踪器 ====================

// StatsTracker 并发安全的运行统计跟踪器
// 轮询循环写入,状态接口读取
type StatsTracker struct {
	mu          sync.Mutex
	stats       CycleStats
	currentTime func() time.Time
}

// NewStatsTracker 创建运行统计跟踪器实例
func NewStatsTracker() *StatsTracker {
	return &StatsTracker{
		currentTime: time.Now,
	}
}

// CycleStarted 记录一轮轮询开始
func (tracker *StatsTracker) CycleStarted() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.stats.CyclesRun++
	tracker.stats.LastCycleStart = tracker.currentTime()
}

// CycleFinished 记录一轮轮询结束并计算耗时
func (tracker *StatsTracker) CycleFinished() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	elapsed := tracker.currentTime().Sub(tracker.stats.LastCycleStart)
	tracker.stats.LastCycleDurationMS = elapsed.Milliseconds()
}

// ModemObserved 记录本轮使用的调制解调器
func (tracker *StatsTracker) ModemObserved(identity ModemIdentity) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.stats.Modem = &identity
}

// MessageSeen 累计处理过的短信数
func (tracker *StatsTracker) MessageSeen() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.stats.MessagesSeen++
}

// MessageSent 累计发送成功数
func (tracker *StatsTracker) MessageSent() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.stats.MessagesSent++
}

// MessageFailed 累计发送失败数
func (tracker *StatsTracker) MessageFailed() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.stats.MessagesFailed++
}

// MessageDeleted 累计删除成功数
func (tracker *StatsTracker) MessageDeleted() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.stats.MessagesDeleted++
}

// MessageDeleteFailed 累计删除失败数
func (tracker *StatsTracker) MessageDeleteFailed() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.stats.DeleteFailures++
}

// MessageSkipped 累计因已转发标记跳过的短信数
func (tracker *StatsTracker) MessageSkipped() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.stats.MessagesSkipped++
}

// Snapshot 返回当前统计的副本
func (tracker *StatsTracker) Snapshot() CycleStats {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	snapshot := tracker.stats
	if tracker.stats.Modem != nil {
		identity := *tracker.stats.Modem
		identity.OwnNumbers = append([]string(nil), tracker.stats.Modem.OwnNumbers...)
		snapshot.Modem = &identity
	}

	return snapshot
}
