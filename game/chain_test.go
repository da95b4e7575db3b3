package game

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainParrot(cfg *Config, energy float64) *Parrot {
	p := straightParrot(energy)
	initSegments(cfg, p, cfg.TargetSegments(energy))
	return p
}

func TestChainHeadSnapsToPosition(t *testing.T) {
	cfg := DefaultConfig()
	p := chainParrot(&cfg, 10)
	p.Pos = mgl64.Vec2{37, -12}
	updateChain(&cfg, p)
	assert.Equal(t, p.Pos, p.Segments[0].Pos)
}

func TestChainGrowsAtMostOnePerTick(t *testing.T) {
	cfg := DefaultConfig()
	p := chainParrot(&cfg, 10)
	require.Len(t, p.Segments, 15)

	p.Energy = 1000
	for want := 16; want <= cfg.MaxSegments; want++ {
		updateChain(&cfg, p)
		assert.Len(t, p.Segments, want)
	}
	updateChain(&cfg, p)
	assert.Len(t, p.Segments, cfg.MaxSegments)
}

func TestChainShrinksAtMostOnePerTick(t *testing.T) {
	cfg := DefaultConfig()
	p := chainParrot(&cfg, 1000)
	require.Len(t, p.Segments, cfg.MaxSegments)

	p.Energy = 0
	for want := cfg.MaxSegments - 1; want >= cfg.MinSegments; want-- {
		updateChain(&cfg, p)
		assert.Len(t, p.Segments, want)
	}
	updateChain(&cfg, p)
	assert.Len(t, p.Segments, cfg.MinSegments)
}

func TestSegmentCountBoundedUnderEnergySwings(t *testing.T) {
	cfg := DefaultConfig()
	p := chainParrot(&cfg, 10)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		before := len(p.Segments)
		p.Energy = rng.Float64() * 200
		updateChain(&cfg, p)
		n := len(p.Segments)
		assert.GreaterOrEqual(t, n, cfg.MinSegments)
		assert.LessOrEqual(t, n, cfg.MaxSegments)
		assert.LessOrEqual(t, abs(n-before), 1)
	}
}

func TestChainDoesNotCollapseWhileBoosting(t *testing.T) {
	cfg := DefaultConfig()
	p := chainParrot(&cfg, 40)
	step := cfg.BoostSpeed * testDt
	for i := 0; i < 200; i++ {
		p.Pos = p.Pos.Add(p.Heading.Mul(step))
		updateChain(&cfg, p)
	}
	for i := 1; i < len(p.Segments); i++ {
		gap := dist(p.Segments[i-1].Pos, p.Segments[i].Pos)
		assert.Greater(t, gap, cfg.SegmentSpacing*0.5, "segment %d collapsed", i)
		assert.Less(t, gap, cfg.SegmentSpacing+step, "segment %d overstretched", i)
	}
}

func TestChainRadiiRecomputedFromEnergy(t *testing.T) {
	cfg := DefaultConfig()
	p := chainParrot(&cfg, 10)
	p.Energy = 90
	updateChain(&cfg, p)
	assert.Equal(t, cfg.Size(90), p.Segments[0].Radius)
	for i := 1; i < len(p.Segments); i++ {
		assert.LessOrEqual(t, p.Segments[i].Radius, p.Segments[i-1].Radius)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
