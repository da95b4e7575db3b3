package game

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func distSq(a, b mgl64.Vec2) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

func dist(a, b mgl64.Vec2) float64 {
	return math.Sqrt(distSq(a, b))
}

// normalizeOr 归一化；零长度向量返回 fallback，避免除零
func normalizeOr(v, fallback mgl64.Vec2) mgl64.Vec2 {
	l := v.Len()
	if l < epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}

func finite(v mgl64.Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsNaN(v[1]) && !math.IsInf(v[0], 0) && !math.IsInf(v[1], 0)
}

// signedAngle 从 a 转到 b 的有向角，范围 (-π, π]
func signedAngle(a, b mgl64.Vec2) float64 {
	cross := a[0]*b[1] - a[1]*b[0]
	return math.Atan2(cross, a.Dot(b))
}

func rotate(v mgl64.Vec2, angle float64) mgl64.Vec2 {
	s, c := math.Sincos(angle)
	return mgl64.Vec2{v[0]*c - v[1]*s, v[0]*s + v[1]*c}
}

func randomUnit(rng *rand.Rand) mgl64.Vec2 {
	a := rng.Float64() * 2 * math.Pi
	return mgl64.Vec2{math.Cos(a), math.Sin(a)}
}

// randomInDisk 圆盘内均匀采样：r = R*sqrt(u)，θ = 2πv
func randomInDisk(rng *rand.Rand, radius float64) mgl64.Vec2 {
	r := radius * math.Sqrt(rng.Float64())
	theta := 2 * math.Pi * rng.Float64()
	return mgl64.Vec2{r * math.Cos(theta), r * math.Sin(theta)}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
