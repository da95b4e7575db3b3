package game

import (
	"fmt"

	"go.uber.org/zap"
)

// CauseBoundary 越界死亡的原因标记
const CauseBoundary = "boundary"

// deathMark 一次扫描中的死亡标记，扫描结束后才统一生效
type deathMark struct {
	parrot *Parrot
	cause  string
}

// resolveCollisions 先查边界，再查头部与他人身体的接触
// 扫描只读冻结的索引与实体状态，标记在全部检查完成后才写回 Alive
func resolveCollisions(cfg *Config, d *Directory, idx *SpatialIndex, log *zap.SugaredLogger) []deathMark {
	var marks []deathMark
	for _, p := range d.Parrots() {
		if !p.Alive {
			continue
		}
		cause, dead := checkParrot(cfg, idx, p, log)
		if dead {
			marks = append(marks, deathMark{parrot: p, cause: cause})
		}
	}
	for _, m := range marks {
		m.parrot.Alive = false
		m.parrot.IsBoosting = false
	}
	return marks
}

// checkParrot 单只鹦鹉的检查；内部 panic 被隔离，该鹦鹉本 Tick 视为存活
func checkParrot(cfg *Config, idx *SpatialIndex, p *Parrot, log *zap.SugaredLogger) (cause string, dead bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("collision check panicked", "parrot", p.ID, "panic", fmt.Sprint(r))
			cause, dead = "", false
		}
	}()
	return collisionChecker(cfg, idx, p)
}

var collisionChecker = contactCause

// contactCause 越界或头部压到身体时返回死亡原因
func contactCause(cfg *Config, idx *SpatialIndex, p *Parrot) (string, bool) {
	if p.Pos.Len() > cfg.MapRadius {
		return CauseBoundary, true
	}

	size := cfg.Size(p.Energy)
	var exclude *Parrot
	if !cfg.SelfCollision {
		exclude = p
	}
	for _, s := range idx.segmentsNear(p.Pos, size, exclude, false) {
		if s.owner == p && s.index < cfg.SelfCollisionSkip {
			continue
		}
		if !s.owner.Alive {
			continue
		}
		r := size + s.rad
		if distSq(p.Pos, s.pos) <= r*r {
			return s.owner.DisplayName, true
		}
	}
	return "", false
}
