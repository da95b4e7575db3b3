package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 1 << 16
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws    *websocket.Conn
	codec Codec
	send  chan []byte
	done  chan struct{}
	once  sync.Once
}

func NewClientConn(ws *websocket.Conn, codec Codec, queue int) *ClientConn {
	if codec == nil {
		codec = JSON
	}
	return &ClientConn{
		ws:    ws,
		codec: codec,
		send:  make(chan []byte, queue),
		done:  make(chan struct{}),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）；返回是否入队
func (c *ClientConn) Enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		// 为了实时性，丢弃新消息（防止阻塞 Tick）
		return false
	}
}

// Send 用连接的编解码器编码后入队
func (c *ClientConn) Send(v any) bool {
	b, err := c.codec.Marshal(v)
	if err != nil {
		Log.Errorw("encode message failed", "codec", c.codec.Name(), "err", err)
		return false
	}
	return c.Enqueue(b)
}

// Close 关闭底层连接并结束写协程；可重复调用
func (c *ClientConn) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期发送 ping
func (c *ClientConn) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.Close()
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(c.codec.FrameType(), msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息并交给竞技场；退出时断开该连接
func (c *ClientConn) readPump(a *Arena, id PlayerID) {
	defer func() {
		a.Disconnect(id)
		c.Close()
	}()
	c.ws.SetReadLimit(maxMessage)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugw("ws read error", "arena", a.ID, "player", id, "err", err)
			}
			return
		}
		var m ClientMessage
		if err := c.codec.Unmarshal(payload, &m); err != nil {
			a.metrics.IncBadMessage()
			continue
		}
		a.HandleMessage(id, m)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?arena=arena-1&codec=json|msgpack
// 连接后先观战，发送 join 消息后才在世界中生成鹦鹉
func (m *ArenaManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	codec, err := CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	arena, err := m.GetOrCreateArena(m.arenaParam(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "err", err)
		return
	}

	id := PlayerID(uuid.NewString())
	client := NewClientConn(ws, codec, m.settings.SendQueue)
	arena.Connect(id, client)

	go client.writePump()
	go client.readPump(arena, id)
}
