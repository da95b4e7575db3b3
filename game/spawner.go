package game

import (
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// spawner 维护羽毛数量，并负责三种羽毛的产生与拾取
type spawner struct {
	cfg *Config
	dir *Directory
	rng *rand.Rand
}

// topUp 世界羽毛不足上限时补齐，位置在圆盘内均匀分布
func (s *spawner) topUp() int {
	missing := s.cfg.FeatherCap - s.dir.CountFeathers(FeatherWorld)
	for i := 0; i < missing; i++ {
		s.dir.AddFeather(Feather{
			Pos:   randomInDisk(s.rng, s.cfg.MapRadius),
			Value: s.worldValue(),
			Type:  FeatherWorld,
		})
	}
	if missing < 0 {
		return 0
	}
	return missing
}

func (s *spawner) worldValue() float64 {
	lo, hi := s.cfg.WorldFeatherMin, s.cfg.WorldFeatherMax
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *spawner) emitBoost(p *Parrot) {
	s.dir.AddFeather(Feather{Pos: p.Tail(), Value: s.cfg.BoostFeatherValue, Type: FeatherBoost})
}

// emitDeath 在死者每隔 DeathFeatherStride 节身体处放一根死亡羽毛
func (s *spawner) emitDeath(p *Parrot) int {
	n := 0
	for i := 0; i < len(p.Segments); i += s.cfg.DeathFeatherStride {
		s.dir.AddFeather(Feather{Pos: p.Segments[i].Pos, Value: s.cfg.DeathFeatherValue, Type: FeatherDeath})
		n++
	}
	return n
}

// pickup 按目录顺序结算，先结算者得；返回被吃掉的羽毛数
func (s *spawner) pickup(idx *SpatialIndex) int {
	claimed := make(map[uint64]bool)
	eaten := 0
	for _, p := range s.dir.Parrots() {
		if !p.Alive {
			continue
		}
		size := s.cfg.Size(p.Energy)
		hits := idx.feathersNear(p.Pos, size)
		sort.Slice(hits, func(i, j int) bool { return hits[i].order < hits[j].order })
		for _, h := range hits {
			if claimed[h.f.ID] {
				continue
			}
			r := size + h.rad
			if distSq(p.Pos, h.f.Pos) > r*r {
				continue
			}
			claimed[h.f.ID] = true
			p.Energy += h.f.Value
			s.dir.RemoveFeather(h.f.ID)
			eaten++
		}
	}
	return eaten
}

// safePosition 拒绝采样：离所有鹦鹉至少 minDist，尝试次数用尽后退化为无约束采样
func safePosition(rng *rand.Rand, d *Directory, mapRadius, minDist float64, attempts int) mgl64.Vec2 {
	minSq := minDist * minDist
	for a := 0; a < attempts; a++ {
		pos := randomInDisk(rng, mapRadius)
		ok := true
		for _, p := range d.Parrots() {
			if distSq(p.Pos, pos) < minSq {
				ok = false
				break
			}
		}
		if ok {
			return pos
		}
	}
	return randomInDisk(rng, mapRadius)
}
