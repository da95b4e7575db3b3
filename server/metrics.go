package server

import (
	"sync/atomic"
)

// ArenaMetrics 记录竞技场运行期的关键指标（用于监控与调试）
type ArenaMetrics struct {
	TickCount     int64 // 统计的 Tick 次数
	TotalTickNs   int64 // Tick 累计耗时（纳秒）
	MaxTickNs     int64
	SlowTicks     int64 // 耗时超过固定步长的 Tick 数
	MessagesIn    int64
	BadMessages   int64 // 无法解码或类型未知的消息
	Joins         int64
	JoinsRejected int64 // 已满或重复加入
	Deaths        int64 // 连接玩家的死亡通知数
	Broadcasts    int64
	SendDropped   int64 // 因发送队列满被丢弃的消息数
	Connections   int64 // 当前连接数
}

func (m *ArenaMetrics) IncMessage()            { atomic.AddInt64(&m.MessagesIn, 1) }
func (m *ArenaMetrics) IncBadMessage()         { atomic.AddInt64(&m.BadMessages, 1) }
func (m *ArenaMetrics) IncJoin()               { atomic.AddInt64(&m.Joins, 1) }
func (m *ArenaMetrics) IncJoinRejected()       { atomic.AddInt64(&m.JoinsRejected, 1) }
func (m *ArenaMetrics) IncDeath()              { atomic.AddInt64(&m.Deaths, 1) }
func (m *ArenaMetrics) IncBroadcast()          { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *ArenaMetrics) AddDropped(n int64)     { atomic.AddInt64(&m.SendDropped, n) }
func (m *ArenaMetrics) AddConnections(n int64) { atomic.AddInt64(&m.Connections, n) }

// AddTick 记录一次 Tick 耗时；step 为固定步长
func (m *ArenaMetrics) AddTick(ns, step int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
	if ns > step {
		atomic.AddInt64(&m.SlowTicks, 1)
	}
	for {
		cur := atomic.LoadInt64(&m.MaxTickNs)
		if ns <= cur || atomic.CompareAndSwapInt64(&m.MaxTickNs, cur, ns) {
			return
		}
	}
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *ArenaMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":     tick,
		"avg_tick_ms":    avgMs,
		"max_tick_ms":    float64(atomic.LoadInt64(&m.MaxTickNs)) / 1e6,
		"slow_ticks":     atomic.LoadInt64(&m.SlowTicks),
		"messages_in":    atomic.LoadInt64(&m.MessagesIn),
		"bad_messages":   atomic.LoadInt64(&m.BadMessages),
		"joins":          atomic.LoadInt64(&m.Joins),
		"joins_rejected": atomic.LoadInt64(&m.JoinsRejected),
		"deaths":         atomic.LoadInt64(&m.Deaths),
		"broadcasts":     atomic.LoadInt64(&m.Broadcasts),
		"send_dropped":   atomic.LoadInt64(&m.SendDropped),
		"connections":    atomic.LoadInt64(&m.Connections),
	}
}
