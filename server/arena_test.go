package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"parrotarena/game"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.Game.Seed = 1
	s.Game.BotCount = 0
	s.Game.FeatherCap = 10
	s.Game.MaxPlayers = 2
	s.LeaderboardEvery = 2
	s.SendQueue = 16
	return s
}

func newTestArena(t *testing.T) *Arena {
	t.Helper()
	a, err := NewArena("test", testSettings())
	require.NoError(t, err)
	return a
}

// fakeClient 不带网络连接的客户端，直接读取发送队列
func fakeClient(a *Arena, id string, codec Codec) *ClientConn {
	c := NewClientConn(nil, codec, 16)
	a.Connect(PlayerID(id), c)
	return c
}

type envelope struct {
	Type string `json:"type" msgpack:"type"`
}

func drain(c *ClientConn) [][]byte {
	var out [][]byte
	for {
		select {
		case b := <-c.send:
			out = append(out, b)
		default:
			return out
		}
	}
}

func types(t *testing.T, msgs [][]byte) []string {
	t.Helper()
	var out []string
	for _, b := range msgs {
		var e envelope
		require.NoError(t, json.Unmarshal(b, &e))
		out = append(out, e.Type)
	}
	return out
}

func step(a *Arena, seq uint64) {
	a.world.Tick(a.clock.Step.Seconds())
	a.onTick(seq, 0)
}

func TestArenaJoinSendsWelcome(t *testing.T) {
	a := newTestArena(t)
	c := fakeClient(a, "p1", JSON)

	a.HandleMessage("p1", ClientMessage{Type: MsgJoin, Name: "  Polly "})

	msgs := drain(c)
	require.Len(t, msgs, 1)
	var w WelcomeMessage
	require.NoError(t, json.Unmarshal(msgs[0], &w))
	assert.Equal(t, MsgWelcome, w.Type)
	assert.Equal(t, "p1", w.PlayerID)
	assert.Equal(t, "Polly", w.Name)
	assert.Equal(t, a.settings.Game.MapRadius, w.MapRadius)

	conns, playing := a.Counts()
	assert.Equal(t, 1, conns)
	assert.Equal(t, 1, playing)
}

func TestArenaJoinRejectedWhenFull(t *testing.T) {
	a := newTestArena(t)
	for _, id := range []string{"a", "b"} {
		fakeClient(a, id, JSON)
		require.NoError(t, a.Join(PlayerID(id), id))
	}
	c := fakeClient(a, "c", JSON)

	err := a.Join("c", "c")
	assert.ErrorIs(t, err, game.ErrArenaFull)

	msgs := drain(c)
	require.Len(t, msgs, 1)
	var e ErrorMessage
	require.NoError(t, json.Unmarshal(msgs[0], &e))
	assert.Equal(t, MsgError, e.Type)
	assert.Equal(t, int64(1), a.metrics.JoinsRejected)
}

func TestArenaBroadcastsUpdatesAndLeaderboard(t *testing.T) {
	a := newTestArena(t)
	c := fakeClient(a, "p1", JSON)
	require.NoError(t, a.Join("p1", "Polly"))
	drain(c)

	step(a, 1)
	assert.Equal(t, []string{MsgUpdate}, types(t, drain(c)))

	step(a, 2)
	msgs := drain(c)
	assert.Equal(t, []string{MsgUpdate, MsgLeaderboard}, types(t, msgs))

	var u UpdateMessage
	require.NoError(t, json.Unmarshal(msgs[0], &u))
	assert.Equal(t, uint64(2), u.Tick)
	require.Len(t, u.Parrots, 1)
	assert.Equal(t, "p1", u.Parrots[0].ID)
	assert.Len(t, u.Feathers, 10)

	var lb LeaderboardMessage
	require.NoError(t, json.Unmarshal(msgs[1], &lb))
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, "Polly", lb.Entries[0].Name)
}

func TestArenaSpectatorReceivesUpdates(t *testing.T) {
	a := newTestArena(t)
	c := fakeClient(a, "watcher", JSON)
	step(a, 1)
	assert.Equal(t, []string{MsgUpdate}, types(t, drain(c)))
}

func TestArenaInputSteersParrot(t *testing.T) {
	a := newTestArena(t)
	fakeClient(a, "p1", JSON)
	require.NoError(t, a.Join("p1", ""))
	step(a, 1)
	before, ok := a.world.GetSnapshot().Parrot("p1")
	require.True(t, ok)

	// 朝当前朝向的右侧转
	right := mgl64.Vec2{before.Heading.Y(), -before.Heading.X()}
	a.HandleMessage("p1", ClientMessage{Type: MsgInput, X: right.X(), Y: right.Y(), Mode: "heading"})
	step(a, 2)

	after, ok := a.world.GetSnapshot().Parrot("p1")
	require.True(t, ok)
	assert.NotEqual(t, before.Heading, after.Heading)
	assert.Greater(t, after.Heading.Dot(right), before.Heading.Dot(right))
}

func TestArenaUnknownMessageCounted(t *testing.T) {
	a := newTestArena(t)
	fakeClient(a, "p1", JSON)
	a.HandleMessage("p1", ClientMessage{Type: "dance"})
	assert.Equal(t, int64(1), a.metrics.BadMessages)
	assert.Equal(t, int64(1), a.metrics.MessagesIn)
}

func TestArenaDeathNotification(t *testing.T) {
	a := newTestArena(t)
	c := fakeClient(a, "p1", JSON)
	require.NoError(t, a.Join("p1", "Polly"))
	drain(c)

	// 直接把鹦鹉推到边界外
	r := a.settings.Game.MapRadius
	_, err := a.world.Tune(func(tu *game.Tuning) { tu.BaseSpeed = 3 * r * float64(a.settings.Game.TickRate) })
	require.NoError(t, err)
	a.HandleMessage("p1", ClientMessage{Type: MsgInput, X: 1, Y: 0, Mode: "heading"})
	step(a, 1)

	msgs := drain(c)
	require.NotEmpty(t, msgs)
	var d DeathMessage
	require.NoError(t, json.Unmarshal(msgs[0], &d))
	assert.Equal(t, MsgDeath, d.Type)
	assert.Equal(t, game.CauseBoundary, d.Cause)

	_, playing := a.Counts()
	assert.Equal(t, 0, playing)

	// 死亡后可以重新加入
	assert.NoError(t, a.Join("p1", "Polly"))
}

func TestArenaDisconnectRemovesParrot(t *testing.T) {
	a := newTestArena(t)
	c := fakeClient(a, "p1", JSON)
	require.NoError(t, a.Join("p1", "Polly"))

	a.Disconnect("p1")
	a.Disconnect("p1")
	step(a, 1)

	_, ok := a.world.GetSnapshot().Parrot("p1")
	assert.False(t, ok)
	conns, _ := a.Counts()
	assert.Zero(t, conns)
	assert.False(t, c.Enqueue([]byte("late")))
	assert.Empty(t, a.world.GetSnapshot().Deaths)
}

func TestArenaBroadcastPerCodec(t *testing.T) {
	a := newTestArena(t)
	jc := fakeClient(a, "j", JSON)
	mc := fakeClient(a, "m", MsgPack)

	step(a, 1)

	jm := drain(jc)
	require.Len(t, jm, 1)
	var je envelope
	require.NoError(t, json.Unmarshal(jm[0], &je))
	assert.Equal(t, MsgUpdate, je.Type)

	mm := drain(mc)
	require.Len(t, mm, 1)
	var u UpdateMessage
	require.NoError(t, msgpack.Unmarshal(mm[0], &u))
	assert.Equal(t, MsgUpdate, u.Type)
	assert.Equal(t, uint64(1), u.Tick)
	assert.Len(t, u.Feathers, 10)
}

func TestArenaSlowClientDropsMessages(t *testing.T) {
	a := newTestArena(t)
	c := NewClientConn(nil, JSON, 1)
	a.Connect("slow", c)

	step(a, 1)
	step(a, 3)
	assert.Len(t, drain(c), 1)
	assert.Equal(t, int64(1), a.metrics.SendDropped)
}

func TestArenaStartStop(t *testing.T) {
	a := newTestArena(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)
	a.Start(ctx)
	a.Stop()
	a.Stop()
	assert.Equal(t, a.world.Stats().Ticks, int64(a.world.GetSnapshot().Tick))
}
