package game

import (
	"context"
	"time"
)

// Ticker 被时钟驱动的对象
type Ticker interface {
	Tick(dt float64)
}

// Clock 固定步长调度器：累加真实耗时，按固定 dt 连续推进
type Clock struct {
	Step     time.Duration
	MaxFrame time.Duration // 单次循环计入的最长耗时，防止卡顿后的“死亡螺旋”

	// OnTick 每个 Tick 完成后调用（广播、指标），在 Tick 协程中执行
	OnTick func(seq uint64, took time.Duration)

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
	seq   uint64
}

func NewClock(cfg Config) *Clock {
	return &Clock{
		Step:     time.Second / time.Duration(cfg.TickRate),
		MaxFrame: cfg.MaxFrameTime,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run 阻塞直到 ctx 取消；每轮外层循环检查一次取消，已开始的 Tick 总会完整执行
func (c *Clock) Run(ctx context.Context, t Ticker) {
	dt := c.Step.Seconds()
	last := c.now()
	var acc time.Duration
	for ctx.Err() == nil {
		now := c.now()
		frame := now.Sub(last)
		last = now
		if frame > c.MaxFrame {
			frame = c.MaxFrame
		}
		if frame > 0 {
			acc += frame
		}
		for acc >= c.Step {
			start := c.now()
			t.Tick(dt)
			acc -= c.Step
			c.seq++
			if c.OnTick != nil {
				c.OnTick(c.seq, c.now().Sub(start))
			}
		}
		c.sleep(ctx, c.Step-acc)
	}
}
