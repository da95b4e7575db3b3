package server

import (
	"parrotarena/game"
)

// PlayerID 表示连接的唯一标识，加入世界后即鹦鹉 id
type PlayerID string

// Player 竞技场内的一个连接；未加入或死亡后仍然接收广播（观战）
type Player struct {
	ID   PlayerID
	Name string
	Conn *ClientConn

	joined bool // 当前是否有存活的鹦鹉
}

// 服务端消息类型
const (
	MsgWelcome     = "welcome"
	MsgUpdate      = "update"
	MsgLeaderboard = "leaderboard"
	MsgDeath       = "death"
	MsgError       = "error"
)

type WelcomeMessage struct {
	Type      string  `json:"type" msgpack:"type"`
	PlayerID  string  `json:"playerId" msgpack:"playerId"`
	Name      string  `json:"name" msgpack:"name"`
	MapRadius float64 `json:"mapRadius" msgpack:"mapRadius"`
	TickRate  int     `json:"tickRate" msgpack:"tickRate"`
}

// UpdateMessage 世界快照的广播形式
type UpdateMessage struct {
	Type      string             `json:"type" msgpack:"type"`
	Tick      uint64             `json:"tick" msgpack:"tick"`
	MapRadius float64            `json:"mapRadius" msgpack:"mapRadius"`
	Parrots   []game.ParrotView  `json:"parrots" msgpack:"parrots"`
	Feathers  []game.FeatherView `json:"feathers" msgpack:"feathers"`
}

type LeaderboardMessage struct {
	Type    string                  `json:"type" msgpack:"type"`
	Entries []game.LeaderboardEntry `json:"entries" msgpack:"entries"`
}

type DeathMessage struct {
	Type  string `json:"type" msgpack:"type"`
	Cause string `json:"cause" msgpack:"cause"`
}

type ErrorMessage struct {
	Type  string `json:"type" msgpack:"type"`
	Error string `json:"error" msgpack:"error"`
}

func newUpdate(v *game.WorldView) UpdateMessage {
	return UpdateMessage{Type: MsgUpdate, Tick: v.Tick, MapRadius: v.MapRadius, Parrots: v.Parrots, Feathers: v.Feathers}
}
