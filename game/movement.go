package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// desiredHeading 把意图换算成期望方向；长度为零时沿用当前朝向
func desiredHeading(p *Parrot, in Intent) mgl64.Vec2 {
	v := in.Target
	if in.Mode == TargetPoint {
		v = in.Target.Sub(p.Pos)
	}
	return normalizeOr(v, p.Heading)
}

// steer 将朝向向期望方向旋转，单 Tick 转角不超过 turnRate(size)*dt
func steer(cfg *Config, p *Parrot, desired mgl64.Vec2, dt float64) {
	angle := signedAngle(p.Heading, desired)
	if math.Abs(angle) < epsilon {
		return
	}
	maxTurn := cfg.TurnRate(cfg.Size(p.Energy)) * dt
	step := math.Min(math.Abs(angle), maxTurn)
	if angle < 0 {
		step = -step
	}
	p.Heading = normalizeOr(rotate(p.Heading, step), p.Heading)
}

// integrate 推进单只鹦鹉一个 Tick：转向、速度、能量、位移
// 返回值为本 Tick 是否应在尾部掉落一根加速羽毛
func integrate(cfg *Config, p *Parrot, in Intent, dt float64) (dropBoost bool) {
	steer(cfg, p, desiredHeading(p, in), dt)

	speed := cfg.BaseSpeed
	p.IsBoosting = in.Boost && p.Energy > cfg.MinBoostEnergy
	if p.IsBoosting {
		speed = cfg.BoostSpeed
		p.Energy = math.Max(cfg.EnergyFloor, p.Energy-cfg.BoostCostRate*dt)

		p.boostAccum += dt
		if p.boostAccum >= cfg.BoostFeatherInterval {
			p.boostAccum -= cfg.BoostFeatherInterval
			dropBoost = true
		}
	} else {
		p.boostAccum = 0
	}

	p.Pos = p.Pos.Add(p.Heading.Mul(speed * dt))
	return dropBoost
}
