package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func collide(w *World) []deathMark {
	return resolveCollisions(&w.cfg, w.dir, buildIndex(w.dir, &w.cfg), zap.NewNop().Sugar())
}

func TestHeadIntoTailKillsOnlyAttacker(t *testing.T) {
	w := newTestWorld(t, nil)
	victim := placeParrot(w, "victim", KindPlayer, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, 10)
	tail := victim.Tail()
	attacker := placeParrot(w, "attacker", KindPlayer, tail.Add(mgl64.Vec2{0, 15}), mgl64.Vec2{0, -1}, 10)

	marks := collide(w)

	require.Len(t, marks, 1)
	assert.Same(t, attacker, marks[0].parrot)
	assert.Equal(t, "victim", marks[0].cause)
	assert.False(t, attacker.Alive)
	assert.True(t, victim.Alive)
}

func TestHeadOnKillsBoth(t *testing.T) {
	w := newTestWorld(t, nil)
	a := placeParrot(w, "a", KindPlayer, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, 10)
	b := placeParrot(w, "b", KindBot, mgl64.Vec2{15, 0}, mgl64.Vec2{-1, 0}, 10)

	marks := collide(w)

	require.Len(t, marks, 2)
	assert.False(t, a.Alive)
	assert.False(t, b.Alive)
	assert.Equal(t, "b", marks[0].cause)
	assert.Equal(t, "a", marks[1].cause)
}

func TestBoundaryKills(t *testing.T) {
	w := newTestWorld(t, nil)
	p := placeParrot(w, "p", KindPlayer, mgl64.Vec2{w.cfg.MapRadius + 1, 0}, mgl64.Vec2{1, 0}, 10)
	p.IsBoosting = true

	marks := collide(w)

	require.Len(t, marks, 1)
	assert.Equal(t, CauseBoundary, marks[0].cause)
	assert.False(t, p.Alive)
	assert.False(t, p.IsBoosting)
}

func TestInsideBoundaryIsSafe(t *testing.T) {
	w := newTestWorld(t, nil)
	placeParrot(w, "p", KindPlayer, mgl64.Vec2{w.cfg.MapRadius - 1, 0}, mgl64.Vec2{1, 0}, 10)
	assert.Empty(t, collide(w))
}

func curl(p *Parrot, i int) {
	p.Segments[i].Pos = p.Pos.Add(mgl64.Vec2{3, 0})
}

func TestOwnBodyIsSafeByDefault(t *testing.T) {
	w := newTestWorld(t, nil)
	p := placeParrot(w, "p", KindPlayer, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, 10)
	curl(p, 12)

	assert.Empty(t, collide(w))
	assert.True(t, p.Alive)
}

func TestSelfCollisionWhenEnabled(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.SelfCollision = true })
	p := placeParrot(w, "p", KindPlayer, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, 10)

	// 头部附近的段一直与头部重叠，不能算自撞
	require.Empty(t, collide(w))

	curl(p, 12)
	marks := collide(w)
	require.Len(t, marks, 1)
	assert.Equal(t, "p", marks[0].cause)
}

func TestCollisionIgnoresDistantParrots(t *testing.T) {
	w := newTestWorld(t, nil)
	placeParrot(w, "a", KindPlayer, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, 10)
	placeParrot(w, "b", KindPlayer, mgl64.Vec2{0, 300}, mgl64.Vec2{1, 0}, 10)
	assert.Empty(t, collide(w))
}

func TestDeathInTickDropsFeathersAndReportsCause(t *testing.T) {
	w := newTestWorld(t, nil)
	placeParrot(w, "victim", KindPlayer, mgl64.Vec2{0, 0}, mgl64.Vec2{0, 1}, 10)
	// 沿 -x 直行，一个 Tick 后头部压在 victim 的身体上
	attacker := placeParrot(w, "attacker", KindPlayer, mgl64.Vec2{20, -40}, mgl64.Vec2{-1, 0}, 10)
	segs := len(attacker.Segments)

	w.Tick(testDt)

	snap := w.GetSnapshot()
	_, alive := snap.Parrot("attacker")
	assert.False(t, alive)
	_, alive = snap.Parrot("victim")
	assert.True(t, alive)
	require.Len(t, snap.Deaths, 1)
	assert.Equal(t, "attacker", snap.Deaths[0].ID)
	assert.Equal(t, "victim", snap.Deaths[0].Cause)

	deathFeathers := 0
	for _, f := range snap.Feathers {
		if f.Type == FeatherDeath.String() {
			deathFeathers++
		}
	}
	assert.Equal(t, segs, deathFeathers)
	_, ok := w.dir.Parrot("attacker")
	assert.False(t, ok)
	assert.Equal(t, int64(1), w.Stats().Deaths)
}

func TestCollisionFaultIsIsolated(t *testing.T) {
	w := newTestWorld(t, nil)
	faulty := placeParrot(w, "faulty", KindPlayer, mgl64.Vec2{w.cfg.MapRadius + 50, 0}, mgl64.Vec2{1, 0}, 10)
	victim := placeParrot(w, "victim", KindPlayer, mgl64.Vec2{0, 0}, mgl64.Vec2{0, 1}, 10)
	attacker := placeParrot(w, "attacker", KindPlayer, mgl64.Vec2{20, -40}, mgl64.Vec2{-1, 0}, 10)

	orig := collisionChecker
	t.Cleanup(func() { collisionChecker = orig })
	collisionChecker = func(cfg *Config, idx *SpatialIndex, p *Parrot) (string, bool) {
		if p.ID == "faulty" {
			panic("broken check")
		}
		return orig(cfg, idx, p)
	}

	w.Tick(testDt)

	assert.True(t, faulty.Alive)
	assert.True(t, victim.Alive)
	assert.False(t, attacker.Alive)
	snap := w.GetSnapshot()
	_, ok := snap.Parrot("faulty")
	assert.True(t, ok)
	require.Len(t, snap.Deaths, 1)
	assert.Equal(t, "attacker", snap.Deaths[0].ID)
	assert.Equal(t, "victim", snap.Deaths[0].Cause)
}
