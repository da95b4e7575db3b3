package server

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"parrotarena/game"
)

// 客户端消息类型
const (
	MsgJoin  = "join"
	MsgInput = "input"
)

// ClientMessage 入站消息（WebSocket 文本 JSON 或二进制 msgpack）
// 示例：{"type":"join","name":"polly"}
//
//	{"type":"input","x":120,"y":-40,"mode":"point","boost":true}
type ClientMessage struct {
	Type  string  `json:"type" msgpack:"type"`
	Name  string  `json:"name,omitempty" msgpack:"name,omitempty"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Mode  string  `json:"mode,omitempty" msgpack:"mode,omitempty"`
	Boost bool    `json:"boost,omitempty" msgpack:"boost,omitempty"`
}

// Intent 将输入消息转换为世界意图；mode 缺省为目标点
func (m ClientMessage) Intent() game.Intent {
	mode := game.TargetPoint
	if strings.EqualFold(m.Mode, "heading") {
		mode = game.TargetHeading
	}
	return game.Intent{Target: mgl64.Vec2{m.X, m.Y}, Mode: mode, Boost: m.Boost}
}
