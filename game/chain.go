package game

import "github.com/go-gl/mathgl/mgl64"

// initSegments 出生时沿朝向反方向铺开身体
func initSegments(cfg *Config, p *Parrot, count int) {
	size := cfg.Size(p.Energy)
	p.Segments = make([]Segment, count, cfg.MaxSegments)
	for i := range p.Segments {
		p.Segments[i] = Segment{
			Pos:    p.Pos.Sub(p.Heading.Mul(float64(i) * cfg.SegmentSpacing)),
			Radius: cfg.SegmentRadius(size, i, count),
		}
	}
}

// updateChain 头部精确贴合位置，其余段以弹簧式插值跟随前一段；
// 段数每 Tick 最多增减一节，只在尾部操作
func updateChain(cfg *Config, p *Parrot) {
	if len(p.Segments) == 0 {
		initSegments(cfg, p, cfg.MinSegments)
	}

	p.Segments[0].Pos = p.Pos
	for i := 1; i < len(p.Segments); i++ {
		prev := p.Segments[i-1].Pos
		cur := p.Segments[i].Pos
		dir := normalizeOr(prev.Sub(cur), p.Heading)
		target := prev.Sub(dir.Mul(cfg.SegmentSpacing))
		p.Segments[i].Pos = cur.Add(target.Sub(cur).Mul(cfg.ChainStiffness))
	}

	want := cfg.TargetSegments(p.Energy)
	switch n := len(p.Segments); {
	case want > n:
		tail := p.Segments[n-1].Pos
		back := p.Heading
		if n > 1 {
			back = normalizeOr(p.Segments[n-2].Pos.Sub(tail), p.Heading)
		}
		p.Segments = append(p.Segments, Segment{Pos: tail.Sub(back.Mul(cfg.SegmentSpacing))})
	case want < n:
		p.Segments = p.Segments[:n-1]
	}

	size := cfg.Size(p.Energy)
	for i := range p.Segments {
		p.Segments[i].Radius = cfg.SegmentRadius(size, i, len(p.Segments))
	}
}

// segmentPositions 复制一份身体坐标
func segmentPositions(p *Parrot) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = s.Pos
	}
	return out
}
