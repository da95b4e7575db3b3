package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec 连接级的消息编解码；连接建立时通过 ?codec= 选择
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// FrameType WebSocket 帧类型（文本或二进制）
	FrameType() int
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) FrameType() int                     { return websocket.TextMessage }

type msgpackCodec struct{}

func (msgpackCodec) Name() string                       { return "msgpack" }
func (msgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (msgpackCodec) FrameType() int                     { return websocket.BinaryMessage }

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

// CodecByName 空字符串默认 JSON
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
