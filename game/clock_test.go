package game

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingTicker struct {
	n  atomic.Int64
	dt float64
}

func (c *countingTicker) Tick(dt float64) {
	c.n.Add(1)
	c.dt = dt
}

// fakeClock 手动推进的时间源
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func newFakeClock(cfg Config) (*Clock, *fakeClock) {
	fc := &fakeClock{t: time.Unix(0, 0)}
	c := NewClock(cfg)
	c.now = fc.now
	c.sleep = func(_ context.Context, d time.Duration) {
		if d > 0 {
			fc.t = fc.t.Add(d)
		}
	}
	return c, fc
}

func TestClockRunsFixedSteps(t *testing.T) {
	c, _ := newFakeClock(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seqs []uint64
	c.OnTick = func(seq uint64, _ time.Duration) {
		seqs = append(seqs, seq)
		if seq == 10 {
			cancel()
		}
	}
	tk := &countingTicker{}
	c.Run(ctx, tk)

	assert.Equal(t, int64(10), tk.n.Load())
	assert.InDelta(t, 1.0/30, tk.dt, 1e-9)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, seqs)
}

func TestClockClampsLongFrames(t *testing.T) {
	c, fc := newFakeClock(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sleeps := 0
	c.sleep = func(_ context.Context, _ time.Duration) {
		sleeps++
		if sleeps == 1 {
			// 一次 2 秒的卡顿
			fc.t = fc.t.Add(2 * time.Second)
			return
		}
		cancel()
	}
	tk := &countingTicker{}
	c.Run(ctx, tk)

	maxTicks := int64(c.MaxFrame / c.Step)
	assert.Equal(t, maxTicks, tk.n.Load())
	assert.Less(t, tk.n.Load(), int64(2*time.Second/c.Step))
}

func TestClockStopsOnCancelledContext(t *testing.T) {
	c, _ := newFakeClock(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tk := &countingTicker{}
	c.Run(ctx, tk)
	assert.Zero(t, tk.n.Load())
}

func TestClockRealTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickRate = 60
	c := NewClock(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	tk := &countingTicker{}
	done := make(chan struct{})
	go func() {
		c.Run(ctx, tk)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("clock did not stop after cancel")
	}
	n := tk.n.Load()
	assert.Greater(t, n, int64(3))
	assert.Less(t, n, int64(30))
}

func TestClockDrivesWorld(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.BotCount = 2 })
	c, _ := newFakeClock(w.Config())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.OnTick = func(seq uint64, _ time.Duration) {
		if seq == 5 {
			cancel()
		}
	}
	c.Run(ctx, w)
	assert.Equal(t, uint64(5), w.GetSnapshot().Tick)
}
