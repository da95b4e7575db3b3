package game

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// IntentMode 指定 Intent.Target 的含义
type IntentMode uint8

const (
	// TargetPoint 目标为世界坐标点，朝向 = 归一化(目标 - 当前位置)
	TargetPoint IntentMode = iota
	// TargetHeading 目标即为期望方向向量
	TargetHeading
)

// Intent 玩家或机器人本 Tick 的操作意图
type Intent struct {
	Target mgl64.Vec2
	Mode   IntentMode
	Boost  bool
}

// InputGate 线程安全的“最后写入者胜出”意图表
// 网络协程只写，Tick 协程每帧 Drain 一次
type InputGate struct {
	mu      sync.Mutex
	pending map[string]Intent
	limit   float64

	accepted atomic.Int64
	rejected atomic.Int64
}

func NewInputGate(coordLimit float64) *InputGate {
	return &InputGate{
		pending: make(map[string]Intent),
		limit:   coordLimit,
	}
}

// SetIntent 记录最新意图，覆盖旧值（不排队）
// 非有限坐标直接拒绝，超出范围的坐标被裁剪
func (g *InputGate) SetIntent(id string, in Intent) bool {
	if id == "" || !finite(in.Target) {
		g.rejected.Add(1)
		return false
	}
	in.Target = mgl64.Vec2{
		clampf(in.Target[0], -g.limit, g.limit),
		clampf(in.Target[1], -g.limit, g.limit),
	}
	g.mu.Lock()
	g.pending[id] = in
	g.mu.Unlock()
	g.accepted.Add(1)
	return true
}

// Drain 取走当前所有意图；只在持锁期间交换 map，不阻塞生产者
func (g *InputGate) Drain() map[string]Intent {
	g.mu.Lock()
	out := g.pending
	g.pending = make(map[string]Intent, len(out))
	g.mu.Unlock()
	return out
}

// Stats 已接受与已拒绝的意图数
func (g *InputGate) Stats() (accepted, rejected int64) {
	return g.accepted.Load(), g.rejected.Load()
}
