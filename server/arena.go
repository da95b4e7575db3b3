package server

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"parrotarena/game"
)

// Arena 竞技场：一个权威世界 + 固定步长时钟 + 已连接的客户端
// 世界状态只由时钟协程推进；连接的读协程只写入意图或加入/离开请求
type Arena struct {
	ID string

	world    *game.World
	clock    *game.Clock
	metrics  *ArenaMetrics
	settings Settings
	log      *zap.SugaredLogger

	mu      sync.RWMutex
	players map[PlayerID]*Player

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewArena 创建竞技场与其世界，尚未开始 Tick
func NewArena(id string, s Settings) (*Arena, error) {
	log := Log.With("arena", id)
	w, err := game.NewWorld(s.Game, game.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &Arena{
		ID:       id,
		world:    w,
		clock:    game.NewClock(s.Game),
		metrics:  &ArenaMetrics{},
		settings: s,
		log:      log,
		players:  make(map[PlayerID]*Player),
	}, nil
}

func (a *Arena) World() *game.World     { return a.world }
func (a *Arena) Metrics() *ArenaMetrics { return a.metrics }

// Connect 登记新连接，开始接收广播（此时还没有鹦鹉）
func (a *Arena) Connect(id PlayerID, conn *ClientConn) *Player {
	p := &Player{ID: id, Conn: conn}
	a.mu.Lock()
	a.players[id] = p
	a.mu.Unlock()
	a.metrics.AddConnections(1)
	a.log.Debugw("client connected", "player", id, "codec", conn.codec.Name())
	return p
}

// Disconnect 连接断开：立即移除其鹦鹉（不掉落羽毛）
func (a *Arena) Disconnect(id PlayerID) {
	a.mu.Lock()
	p, ok := a.players[id]
	delete(a.players, id)
	a.mu.Unlock()
	if !ok {
		return
	}
	a.world.RemoveEntity(string(id))
	if p.Conn != nil {
		p.Conn.Close()
	}
	a.metrics.AddConnections(-1)
	a.log.Debugw("client disconnected", "player", id)
}

// HandleMessage 分发一条已解码的客户端消息
func (a *Arena) HandleMessage(id PlayerID, m ClientMessage) {
	a.metrics.IncMessage()
	switch m.Type {
	case MsgJoin:
		a.Join(id, m.Name)
	case MsgInput:
		// 意图只记录，下一次 Tick 生效；未加入的 id 会被世界忽略
		a.world.SetIntent(string(id), m.Intent())
	default:
		a.metrics.IncBadMessage()
	}
}

// Join 在世界中为连接生成鹦鹉并回复 welcome；失败时回复 error
func (a *Arena) Join(id PlayerID, name string) error {
	a.mu.Lock()
	p, ok := a.players[id]
	a.mu.Unlock()
	if !ok {
		return errors.New("unknown connection")
	}

	if err := a.world.Join(string(id), name); err != nil {
		a.metrics.IncJoinRejected()
		p.Conn.Send(ErrorMessage{Type: MsgError, Error: err.Error()})
		a.log.Infow("join rejected", "player", id, "err", err)
		return err
	}

	cfg := a.world.Config()
	if clean, ok := a.world.DisplayName(string(id)); ok {
		name = clean
	}
	a.mu.Lock()
	p.Name = name
	p.joined = true
	a.mu.Unlock()
	a.metrics.IncJoin()
	p.Conn.Send(WelcomeMessage{
		Type:      MsgWelcome,
		PlayerID:  string(id),
		Name:      name,
		MapRadius: cfg.MapRadius,
		TickRate:  cfg.TickRate,
	})
	return nil
}

// Counts 当前连接数（含观战）与其中拥有存活鹦鹉的数量
func (a *Arena) Counts() (connections, playing int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.players {
		if p.joined {
			playing++
		}
	}
	return len(a.players), playing
}

// notifyDeaths 向本 Tick 死亡的已连接玩家发送 death；之后可以重新 join
func (a *Arena) notifyDeaths(deaths []game.DeathView) {
	if len(deaths) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, d := range deaths {
		p, ok := a.players[PlayerID(d.ID)]
		if !ok {
			continue
		}
		p.joined = false
		a.metrics.IncDeath()
		if !p.Conn.Send(DeathMessage{Type: MsgDeath, Cause: d.Cause}) {
			a.metrics.AddDropped(1)
		}
	}
}

// Broadcast 将消息广播给所有连接；每种编解码只编码一次
func (a *Arena) Broadcast(v any) {
	encoded := make(map[Codec][]byte, 2)
	var dropped int64

	a.mu.RLock()
	for _, p := range a.players {
		c := p.Conn.codec
		b, ok := encoded[c]
		if !ok {
			var err error
			if b, err = c.Marshal(v); err != nil {
				a.log.Errorw("encode broadcast failed", "codec", c.Name(), "err", err)
				continue
			}
			encoded[c] = b
		}
		if !p.Conn.Enqueue(b) {
			dropped++
		}
	}
	a.mu.RUnlock()

	a.metrics.IncBroadcast()
	if dropped > 0 {
		a.metrics.AddDropped(dropped)
	}
}
