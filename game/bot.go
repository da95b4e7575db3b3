package game

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// botView 机器人决策时可读取的本 Tick 借用视图（移动前的世界）
type botView struct {
	cfg *Config
	dir *Directory
	idx *SpatialIndex
	rng *rand.Rand
	dt  float64
}

// decideBot 每 Tick 重新评估状态，严格按优先级：Evade > Attack > Feed > Wander
// 只读世界，返回合成的意图与新的机器人记忆，不修改任何实体
func decideBot(v *botView, bot *Parrot) (Intent, BotMemory) {
	cfg := v.cfg
	mem := BotMemory{}
	if bot.Bot != nil {
		mem = *bot.Bot
	}
	prev := mem.State
	size := cfg.Size(bot.Energy)
	vision := cfg.VisionRadius(size)

	var in Intent
	switch {
	case v.evade(bot, size, &mem, &in):
	case v.attack(bot, vision, &mem, &in):
	case v.feed(bot, vision, &mem, &in):
	default:
		v.wander(bot, &mem, &in)
	}

	if mem.State == prev {
		mem.StateTimer += v.dt
	} else {
		mem.StateTimer = 0
	}
	return in, mem
}

func (v *botView) evade(bot *Parrot, size float64, mem *BotMemory, in *Intent) bool {
	imminent := size * v.cfg.EvadeRadiusFactor
	var (
		nearest *segmentRef
		bestSq  = math.Inf(1)
	)
	for _, s := range v.idx.segmentsNear(bot.Pos, imminent, bot, false) {
		d := distSq(bot.Pos, s.pos)
		if d > imminent*imminent {
			continue
		}
		if nearest == nil || d < bestSq || (d == bestSq && s.before(nearest)) {
			nearest, bestSq = s, d
		}
	}
	if nearest == nil {
		return false
	}
	away := normalizeOr(bot.Pos.Sub(nearest.pos), bot.Heading.Mul(-1))
	closeCall := math.Sqrt(bestSq) < size*v.cfg.EvadeBoostFactor
	*in = Intent{Target: away, Mode: TargetHeading, Boost: closeCall && bot.Energy > v.cfg.MinBoostEnergy}
	mem.State = BotEvade
	mem.Target = nearest.pos
	mem.TargetID = nearest.owner.ID
	return true
}

func (v *botView) attack(bot *Parrot, vision float64, mem *BotMemory, in *Intent) bool {
	radius := vision * v.cfg.AggressionFactor
	var (
		prey   *segmentRef
		bestSq = math.Inf(1)
	)
	for _, h := range v.idx.segmentsNear(bot.Pos, radius, bot, true) {
		if !h.owner.Alive || h.owner.Energy >= bot.Energy {
			continue
		}
		d := distSq(bot.Pos, h.pos)
		if d > radius*radius {
			continue
		}
		if prey == nil || d < bestSq || (d == bestSq && h.before(prey)) {
			prey, bestSq = h, d
		}
	}
	if prey == nil {
		return false
	}
	if mem.State != BotAttack {
		mem.BoostPulse = 0
	}
	mem.BoostPulse += v.dt

	ahead := prey.owner.Pos.Add(prey.owner.Heading.Mul(v.cfg.InterceptLead))
	period := v.cfg.AttackBoostPeriod
	pulsing := period > 0 && math.Mod(mem.BoostPulse, period) < period*v.cfg.AttackBoostDuty
	*in = Intent{Target: ahead, Mode: TargetPoint, Boost: pulsing && bot.Energy > v.cfg.MinBoostEnergy}
	mem.State = BotAttack
	mem.Target = ahead
	mem.TargetID = prey.owner.ID
	return true
}

func (v *botView) feed(bot *Parrot, vision float64, mem *BotMemory, in *Intent) bool {
	var (
		best   *featherRef
		bestSq = math.Inf(1)
	)
	for _, f := range v.idx.feathersNear(bot.Pos, vision) {
		d := distSq(bot.Pos, f.f.Pos)
		if d > vision*vision {
			continue
		}
		if best == nil || d < bestSq || (d == bestSq && f.order < best.order) {
			best, bestSq = f, d
		}
	}
	if best == nil {
		return false
	}
	*in = Intent{Target: best.f.Pos, Mode: TargetPoint}
	mem.State = BotFeed
	mem.Target = best.f.Pos
	mem.TargetID = ""
	return true
}

func (v *botView) wander(bot *Parrot, mem *BotMemory, in *Intent) {
	var dir mgl64.Vec2
	if bot.Pos.Len() > v.cfg.MapRadius*v.cfg.BoundaryAvoidFactor {
		dir = normalizeOr(bot.Pos.Mul(-1), bot.Heading)
	} else {
		jitter := mgl64.Vec2{v.rng.Float64() - 0.5, v.rng.Float64() - 0.5}
		dir = normalizeOr(bot.Heading.Add(jitter.Mul(v.cfg.WanderJitter)), bot.Heading)
	}
	*in = Intent{Target: dir, Mode: TargetHeading}
	mem.State = BotWander
	mem.Target = bot.Pos.Add(dir)
	mem.TargetID = ""
}
