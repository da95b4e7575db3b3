package game

import (
	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
)

// segmentRef 索引中的一节身体
type segmentRef struct {
	owner *Parrot
	order int // 所属鹦鹉在目录中的位置
	index int // 段序号，0 为头部
	pos   mgl64.Vec2
	rad   float64
	rect  rtreego.Rect
}

func (s *segmentRef) Bounds() rtreego.Rect { return s.rect }

type featherRef struct {
	f     *Feather
	order int
	rad   float64
	rect  rtreego.Rect
}

func (r *featherRef) Bounds() rtreego.Rect { return r.rect }

// SpatialIndex 单个 Tick 内有效的粗筛索引（R 树），之后必须丢弃
type SpatialIndex struct {
	segments *rtreego.Rtree
	feathers *rtreego.Rtree
	maxSeg   float64
	maxFea   float64
}

func boundsOf(p mgl64.Vec2, r float64) rtreego.Rect {
	if r < epsilon {
		r = epsilon
	}
	return rtreego.Point{p[0], p[1]}.ToRect(r)
}

// buildIndex 对当前存活鹦鹉的身体以及全部羽毛建索引
func buildIndex(d *Directory, cfg *Config) *SpatialIndex {
	idx := &SpatialIndex{}

	var segs []rtreego.Spatial
	for order, p := range d.Parrots() {
		if !p.Alive {
			continue
		}
		for i, s := range p.Segments {
			segs = append(segs, &segmentRef{owner: p, order: order, index: i, pos: s.Pos, rad: s.Radius, rect: boundsOf(s.Pos, s.Radius)})
			if s.Radius > idx.maxSeg {
				idx.maxSeg = s.Radius
			}
		}
	}
	idx.segments = rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, segs...)

	fs := make([]rtreego.Spatial, 0, d.FeatherCount())
	for order, f := range d.Feathers() {
		r := cfg.FeatherRadius(f.Value)
		fs = append(fs, &featherRef{f: f, order: order, rad: r, rect: boundsOf(f.Pos, r)})
		if r > idx.maxFea {
			idx.maxFea = r
		}
	}
	idx.feathers = rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, fs...)
	return idx
}

// segmentsNear 返回圆 (center, radius) 的包围盒内其它鹦鹉的身体段
// exclude 为 nil 时不排除任何鹦鹉
func (idx *SpatialIndex) segmentsNear(center mgl64.Vec2, radius float64, exclude *Parrot, headsOnly bool) []*segmentRef {
	hits := idx.segments.SearchIntersect(boundsOf(center, radius+idx.maxSeg), func(_ []rtreego.Spatial, obj rtreego.Spatial) (bool, bool) {
		s := obj.(*segmentRef)
		return s.owner == exclude || (headsOnly && s.index != 0), false
	})
	out := make([]*segmentRef, len(hits))
	for i, h := range hits {
		out[i] = h.(*segmentRef)
	}
	return out
}

func (idx *SpatialIndex) feathersNear(center mgl64.Vec2, radius float64) []*featherRef {
	hits := idx.feathers.SearchIntersect(boundsOf(center, radius+idx.maxFea))
	out := make([]*featherRef, len(hits))
	for i, h := range hits {
		out[i] = h.(*featherRef)
	}
	return out
}

// before 用于距离相同时按目录顺序打破平局
func (s *segmentRef) before(o *segmentRef) bool {
	if s.order != o.order {
		return s.order < o.order
	}
	return s.index < o.index
}
