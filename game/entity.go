package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind 鹦鹉的控制方
type Kind uint8

const (
	KindPlayer Kind = iota
	KindBot
)

func (k Kind) String() string {
	if k == KindBot {
		return "bot"
	}
	return "player"
}

// FeatherType 羽毛来源
type FeatherType uint8

const (
	FeatherWorld FeatherType = iota
	FeatherBoost
	FeatherDeath
)

func (t FeatherType) String() string {
	switch t {
	case FeatherBoost:
		return "boost"
	case FeatherDeath:
		return "death"
	default:
		return "world"
	}
}

// BotState 机器人有限状态机的状态
type BotState uint8

const (
	BotWander BotState = iota
	BotFeed
	BotAttack
	BotEvade
)

func (s BotState) String() string {
	switch s {
	case BotFeed:
		return "feed"
	case BotAttack:
		return "attack"
	case BotEvade:
		return "evade"
	default:
		return "wander"
	}
}

// Segment 身体链上的一个节点
type Segment struct {
	Pos    mgl64.Vec2
	Radius float64
}

// BotMemory 仅机器人持有的状态
type BotMemory struct {
	State      BotState
	Target     mgl64.Vec2
	TargetID   string // Attack 时为目标鹦鹉，Feed 时为空
	StateTimer float64
	BoostPulse float64
}

// Parrot 玩家与机器人共用的实体，通过 Kind 区分
type Parrot struct {
	ID          string
	DisplayName string
	Kind        Kind

	Pos        mgl64.Vec2
	Heading    mgl64.Vec2
	Energy     float64
	Alive      bool
	IsBoosting bool
	Segments   []Segment

	intent     Intent
	hasIntent  bool
	boostAccum float64

	Bot *BotMemory // 玩家为 nil
}

// Tail 尾部位置；没有身体时取头部后方一点
func (p *Parrot) Tail() mgl64.Vec2 {
	if n := len(p.Segments); n > 0 {
		return p.Segments[n-1].Pos
	}
	return p.Pos.Sub(p.Heading.Mul(10))
}

// Feather 能量拾取物
type Feather struct {
	ID    uint64
	Pos   mgl64.Vec2
	Value float64
	Type  FeatherType
}

// Size 体型随能量单调不减
func (c *Config) Size(energy float64) float64 {
	return c.BaseSize + math.Sqrt(math.Max(0, energy))*c.SizeScale
}

// TurnRate 越大越难转向，但不低于下限
func (c *Config) TurnRate(size float64) float64 {
	return math.Max(c.TurnRateFloor, c.TurnRateBase/(1+size*c.TurnSizeFactor))
}

func (c *Config) VisionRadius(size float64) float64 {
	return c.VisionBase + size*c.VisionScale
}

// TargetSegments 由能量推出的目标段数，限制在 [MinSegments, MaxSegments]
func (c *Config) TargetSegments(energy float64) int {
	n := int(math.Max(0, energy)*c.SegmentsPerEnergy) + c.MinSegments
	if n < c.MinSegments {
		return c.MinSegments
	}
	if n > c.MaxSegments {
		return c.MaxSegments
	}
	return n
}

// SegmentRadius 第 i 段的半径，从头到尾逐渐变细
func (c *Config) SegmentRadius(size float64, i, count int) float64 {
	if i == 0 || count <= 1 {
		return size
	}
	t := float64(i) / float64(count-1)
	return math.Max(c.MinSegmentRadius, size*(1-c.TailTaper*t))
}

func (c *Config) FeatherRadius(value float64) float64 {
	return math.Max(c.MinFeatherRadius, value*c.FeatherRadiusScale)
}
