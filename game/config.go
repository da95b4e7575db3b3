package game

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config 世界的全部可调参数（由外层注入，核心不硬编码）
type Config struct {
	Seed int64 // 随机种子，0 表示使用当前时间

	// 世界
	MapRadius  float64
	MaxPlayers int
	BotCount   int
	TickRate   int // 每秒 Tick 次数

	// 移动
	BaseSpeed      float64
	BoostSpeed     float64
	BoostCostRate  float64 // 加速时每秒消耗的能量
	MinBoostEnergy float64 // 能量高于该值才允许加速
	EnergyFloor    float64

	TurnRateBase   float64 // 弧度/秒
	TurnRateFloor  float64
	TurnSizeFactor float64

	// 体型
	BaseSize          float64
	SizeScale         float64
	VisionBase        float64
	VisionScale       float64
	MinSegments       int
	MaxSegments       int
	SegmentsPerEnergy float64
	SegmentSpacing    float64
	ChainStiffness    float64 // 每 Tick 朝目标点的插值系数
	MinSegmentRadius  float64
	TailTaper         float64 // 尾部半径相对头部缩小的比例

	PlayerStartEnergy float64
	BotStartEnergyMin float64
	BotStartEnergyMax float64

	// 出生
	MinSpawnDistance  float64
	SpawnAttempts     int
	SpawnRadiusFactor float64 // 出生点离中心不超过 MapRadius*该系数

	// 羽毛
	FeatherCap           int
	WorldFeatherMin      float64
	WorldFeatherMax      float64
	BoostFeatherValue    float64
	BoostFeatherInterval float64 // 秒
	DeathFeatherValue    float64
	DeathFeatherStride   int
	MinFeatherRadius     float64
	FeatherRadiusScale   float64

	// 碰撞
	SelfCollision     bool
	SelfCollisionSkip int // 开启自撞时跳过头部附近的段数

	// 机器人
	EvadeRadiusFactor   float64
	EvadeBoostFactor    float64
	AggressionFactor    float64
	InterceptLead       float64
	AttackBoostPeriod   float64
	AttackBoostDuty     float64
	WanderJitter        float64
	BoundaryAvoidFactor float64

	// 输入
	InputCoordLimit float64

	// 名称
	DefaultName   string
	MaxNameLength int

	// 时钟
	MaxFrameTime time.Duration
}

// DefaultConfig 默认参数，数值取自线上调优过的版本
func DefaultConfig() Config {
	return Config{
		MapRadius:  2500,
		MaxPlayers: 20,
		BotCount:   12,
		TickRate:   30,

		BaseSpeed:      300,
		BoostSpeed:     550,
		BoostCostRate:  6,
		MinBoostEnergy: 1,
		EnergyFloor:    0,

		TurnRateBase:   5,
		TurnRateFloor:  3,
		TurnSizeFactor: 0.03,

		BaseSize:          8,
		SizeScale:         0.9,
		VisionBase:        180,
		VisionScale:       3,
		MinSegments:       10,
		MaxSegments:       40,
		SegmentsPerEnergy: 0.5,
		SegmentSpacing:    6,
		ChainStiffness:    0.75,
		MinSegmentRadius:  3,
		TailTaper:         0.5,

		PlayerStartEnergy: 10,
		BotStartEnergyMin: 8,
		BotStartEnergyMax: 14,

		MinSpawnDistance:  100,
		SpawnAttempts:     1000,
		SpawnRadiusFactor: 0.8,

		FeatherCap:           500,
		WorldFeatherMin:      1,
		WorldFeatherMax:      3,
		BoostFeatherValue:    0.5,
		BoostFeatherInterval: 0.25,
		DeathFeatherValue:    1,
		DeathFeatherStride:   1,
		MinFeatherRadius:     1.5,
		FeatherRadiusScale:   0.5,

		SelfCollisionSkip: 8,

		EvadeRadiusFactor:   4,
		EvadeBoostFactor:    2.5,
		AggressionFactor:    0.6,
		InterceptLead:       20,
		AttackBoostPeriod:   2,
		AttackBoostDuty:     0.25,
		WanderJitter:        0.6,
		BoundaryAvoidFactor: 0.85,

		InputCoordLimit: 1e6,

		DefaultName:   "Parrot",
		MaxNameLength: 16,

		MaxFrameTime: 250 * time.Millisecond,
	}
}

// FixedStep 每个 Tick 的固定时长（秒）
func (c Config) FixedStep() float64 {
	return 1 / float64(c.TickRate)
}

// Validate 校验配置，一次返回所有不合法的字段
func (c Config) Validate() error {
	var err error
	positive := func(name string, v float64) {
		if !(v > 0) {
			err = multierr.Append(err, fmt.Errorf("%s must be > 0, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be >= 0, got %v", name, v))
		}
	}

	positive("MapRadius", c.MapRadius)
	positive("TickRate", float64(c.TickRate))
	positive("BaseSpeed", c.BaseSpeed)
	positive("BoostSpeed", c.BoostSpeed)
	positive("TurnRateFloor", c.TurnRateFloor)
	positive("SegmentSpacing", c.SegmentSpacing)
	positive("WorldFeatherMin", c.WorldFeatherMin)
	positive("BoostFeatherValue", c.BoostFeatherValue)
	positive("BoostFeatherInterval", c.BoostFeatherInterval)
	positive("DeathFeatherValue", c.DeathFeatherValue)
	positive("InputCoordLimit", c.InputCoordLimit)
	nonNegative("BoostCostRate", c.BoostCostRate)
	nonNegative("EnergyFloor", c.EnergyFloor)
	nonNegative("MaxPlayers", float64(c.MaxPlayers))
	nonNegative("BotCount", float64(c.BotCount))
	nonNegative("FeatherCap", float64(c.FeatherCap))
	nonNegative("SizeScale", c.SizeScale)
	nonNegative("SegmentsPerEnergy", c.SegmentsPerEnergy)
	nonNegative("TurnRateBase", c.TurnRateBase)

	// 步长按纳秒取整，不能为 0
	if c.TickRate > 0 && time.Second/time.Duration(c.TickRate) <= 0 {
		err = multierr.Append(err, fmt.Errorf("TickRate must be <= %d, got %d", int64(time.Second), c.TickRate))
	}
	if c.MaxNameLength < 1 {
		err = multierr.Append(err, fmt.Errorf("MaxNameLength must be >= 1, got %d", c.MaxNameLength))
	}
	if strings.TrimSpace(c.DefaultName) == "" {
		err = multierr.Append(err, fmt.Errorf("DefaultName must not be empty"))
	}

	if c.MinSegments < 1 {
		err = multierr.Append(err, fmt.Errorf("MinSegments must be >= 1, got %d", c.MinSegments))
	}
	if c.MaxSegments < c.MinSegments {
		err = multierr.Append(err, fmt.Errorf("MaxSegments (%d) must be >= MinSegments (%d)", c.MaxSegments, c.MinSegments))
	}
	if c.WorldFeatherMax < c.WorldFeatherMin {
		err = multierr.Append(err, fmt.Errorf("WorldFeatherMax (%v) must be >= WorldFeatherMin (%v)", c.WorldFeatherMax, c.WorldFeatherMin))
	}
	if c.ChainStiffness <= 0 || c.ChainStiffness > 1 {
		err = multierr.Append(err, fmt.Errorf("ChainStiffness must be in (0,1], got %v", c.ChainStiffness))
	}
	if c.SpawnRadiusFactor <= 0 || c.SpawnRadiusFactor > 1 {
		err = multierr.Append(err, fmt.Errorf("SpawnRadiusFactor must be in (0,1], got %v", c.SpawnRadiusFactor))
	}
	if c.DeathFeatherStride < 1 {
		err = multierr.Append(err, fmt.Errorf("DeathFeatherStride must be >= 1, got %d", c.DeathFeatherStride))
	}
	if c.AttackBoostDuty < 0 || c.AttackBoostDuty > 1 {
		err = multierr.Append(err, fmt.Errorf("AttackBoostDuty must be in [0,1], got %v", c.AttackBoostDuty))
	}
	if c.MaxFrameTime <= 0 {
		err = multierr.Append(err, fmt.Errorf("MaxFrameTime must be > 0, got %v", c.MaxFrameTime))
	}
	return err
}

// Tuning 运行期可热更新的参数子集（管理接口使用）
type Tuning struct {
	BaseSpeed     float64 `json:"baseSpeed"`
	BoostSpeed    float64 `json:"boostSpeed"`
	BoostCostRate float64 `json:"boostCostRate"`
	FeatherCap    int     `json:"featherCap"`
	BotCount      int     `json:"botCount"`
}

func (c Config) tuning() Tuning {
	return Tuning{
		BaseSpeed:     c.BaseSpeed,
		BoostSpeed:    c.BoostSpeed,
		BoostCostRate: c.BoostCostRate,
		FeatherCap:    c.FeatherCap,
		BotCount:      c.BotCount,
	}
}

func (c *Config) applyTuning(t Tuning) {
	c.BaseSpeed = t.BaseSpeed
	c.BoostSpeed = t.BoostSpeed
	c.BoostCostRate = t.BoostCostRate
	c.FeatherCap = t.FeatherCap
	c.BotCount = t.BotCount
}
