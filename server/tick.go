package server

import (
	"context"
	"time"
)

// Start 启动竞技场的 Tick 循环（单协程推进世界）；重复调用无效
func (a *Arena) Start(parent context.Context) {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return
	}
	a.started = true
	ctx, cancel := context.WithCancel(parent)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.mu.Unlock()

	a.clock.OnTick = a.onTick
	go func() {
		defer close(a.done)
		a.log.Infow("arena started", "tickRate", a.settings.Game.TickRate)
		// 核心循环：处理输入 → 更新世界 → 发布快照，之后由 onTick 广播
		a.clock.Run(ctx, a.world)
		a.log.Infow("arena stopped", "ticks", a.world.Stats().Ticks)
	}()
}

// Stop 取消时钟并等待当前 Tick 结束
func (a *Arena) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// onTick 在时钟协程中、每个 Tick 发布之后调用
func (a *Arena) onTick(seq uint64, took time.Duration) {
	a.metrics.AddTick(took.Nanoseconds(), a.clock.Step.Nanoseconds())
	if took > a.clock.Step {
		a.log.Warnw("slow tick", "seq", seq, "took", took)
	}

	snap := a.world.GetSnapshot()
	a.notifyDeaths(snap.Deaths)
	if seq%uint64(a.settings.BroadcastEvery) == 0 {
		a.Broadcast(newUpdate(snap))
	}
	if seq%uint64(a.settings.LeaderboardEvery) == 0 {
		a.Broadcast(LeaderboardMessage{Type: MsgLeaderboard, Entries: snap.Leaderboard(a.settings.LeaderboardSize)})
	}
}
