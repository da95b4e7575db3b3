package game

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// ParrotView 对外广播的鹦鹉只读投影
type ParrotView struct {
	ID         string       `json:"id" msgpack:"id"`
	Name       string       `json:"name" msgpack:"name"`
	Kind       string       `json:"kind" msgpack:"kind"`
	Pos        mgl64.Vec2   `json:"pos" msgpack:"pos"`
	Heading    mgl64.Vec2   `json:"heading" msgpack:"heading"`
	Energy     float64      `json:"energy" msgpack:"energy"`
	Size       float64      `json:"size" msgpack:"size"`
	Segments   []mgl64.Vec2 `json:"segments" msgpack:"segments"`
	IsBoosting bool         `json:"boosting" msgpack:"boosting"`
}

type FeatherView struct {
	ID    uint64     `json:"id" msgpack:"id"`
	Pos   mgl64.Vec2 `json:"pos" msgpack:"pos"`
	Value float64    `json:"value" msgpack:"value"`
	Type  string     `json:"type" msgpack:"type"`
}

// DeathView 本 Tick 死亡的鹦鹉，网络层据此通知玩家
type DeathView struct {
	ID    string `json:"id" msgpack:"id"`
	Name  string `json:"name" msgpack:"name"`
	Kind  string `json:"kind" msgpack:"kind"`
	Cause string `json:"cause" msgpack:"cause"`
}

// WorldView 一个 Tick 结束后的不可变快照，发布后任何人都不得修改
type WorldView struct {
	Tick      uint64        `json:"tick" msgpack:"tick"`
	MapRadius float64       `json:"mapRadius" msgpack:"mapRadius"`
	Parrots   []ParrotView  `json:"parrots" msgpack:"parrots"`
	Feathers  []FeatherView `json:"feathers" msgpack:"feathers"`
	Deaths    []DeathView   `json:"deaths,omitempty" msgpack:"deaths,omitempty"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	ID     string  `json:"id" msgpack:"id"`
	Name   string  `json:"name" msgpack:"name"`
	Energy float64 `json:"energy" msgpack:"energy"`
}

// buildSnapshot 必须在清理阶段之后调用，不会读到半更新的世界
func buildSnapshot(cfg *Config, tick uint64, d *Directory, deaths []DeathView) *WorldView {
	v := &WorldView{
		Tick:      tick,
		MapRadius: cfg.MapRadius,
		Parrots:   make([]ParrotView, 0, d.ParrotCount()),
		Feathers:  make([]FeatherView, 0, d.FeatherCount()),
		Deaths:    deaths,
	}
	for _, p := range d.Parrots() {
		if !p.Alive {
			continue
		}
		v.Parrots = append(v.Parrots, ParrotView{
			ID:         p.ID,
			Name:       p.DisplayName,
			Kind:       p.Kind.String(),
			Pos:        p.Pos,
			Heading:    p.Heading,
			Energy:     p.Energy,
			Size:       cfg.Size(p.Energy),
			Segments:   segmentPositions(p),
			IsBoosting: p.IsBoosting,
		})
	}
	for _, f := range d.Feathers() {
		v.Feathers = append(v.Feathers, FeatherView{ID: f.ID, Pos: f.Pos, Value: f.Value, Type: f.Type.String()})
	}
	return v
}

// Leaderboard 存活鹦鹉按能量降序，topN <= 0 表示全部
func (v *WorldView) Leaderboard(topN int) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(v.Parrots))
	for _, p := range v.Parrots {
		out = append(out, LeaderboardEntry{ID: p.ID, Name: p.Name, Energy: p.Energy})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Energy > out[j].Energy })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// CountKind 快照中某类鹦鹉的数量
func (v *WorldView) CountKind(k Kind) int {
	n := 0
	for _, p := range v.Parrots {
		if p.Kind == k.String() {
			n++
		}
	}
	return n
}

// Parrot 按 id 查找
func (v *WorldView) Parrot(id string) (ParrotView, bool) {
	for _, p := range v.Parrots {
		if p.ID == id {
			return p, true
		}
	}
	return ParrotView{}, false
}

func (v *WorldView) HasFeather(id uint64) bool {
	for _, f := range v.Feathers {
		if f.ID == id {
			return true
		}
	}
	return false
}
