package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

const testDt = 1.0 / 30

// testConfig 空世界：无机器人、无世界羽毛、固定种子
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.BotCount = 0
	cfg.FeatherCap = 0
	return cfg
}

func newTestWorld(t *testing.T, mutate func(*Config)) *World {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := NewWorld(cfg)
	require.NoError(t, err)
	return w
}

// placeParrot 直接放入目录，身体沿朝向反方向铺开
func placeParrot(w *World, id string, kind Kind, pos, heading mgl64.Vec2, energy float64) *Parrot {
	p := &Parrot{
		ID:          id,
		DisplayName: id,
		Kind:        kind,
		Pos:         pos,
		Heading:     heading,
		Energy:      energy,
		Alive:       true,
	}
	if kind == KindBot {
		p.Bot = &BotMemory{}
	}
	initSegments(&w.cfg, p, w.cfg.TargetSegments(energy))
	w.dir.AddParrot(p)
	return p
}

func placeFeather(w *World, pos mgl64.Vec2, value float64, t FeatherType) *Feather {
	return w.dir.AddFeather(Feather{Pos: pos, Value: value, Type: t})
}

func (w *World) testBotView(dt float64) *botView {
	return &botView{cfg: &w.cfg, dir: w.dir, idx: buildIndex(w.dir, &w.cfg), rng: w.rng, dt: dt}
}
