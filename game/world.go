package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrArenaFull     = errors.New("arena is full")
	ErrAlreadyJoined = errors.New("parrot already joined")
)

// Stats 世界运行期计数
type Stats struct {
	Ticks         int64 `json:"ticks"`
	Joins         int64 `json:"joins"`
	Deaths        int64 `json:"deaths"`
	BotRespawns   int64 `json:"botRespawns"`
	FeathersEaten int64 `json:"feathersEaten"`
	BotFaults     int64 `json:"botFaults"`
}

// World 权威世界：Tick 协程是唯一写者
// mu 在整个 Tick 期间持有；Join/RemoveEntity/Tune 只短暂持锁并在 Tick 之间生效
type World struct {
	mu   sync.Mutex
	cfg  Config
	dir  *Directory
	gate *InputGate
	rng  *rand.Rand
	sp   *spawner
	log  *zap.SugaredLogger

	tick    uint64
	botSeq  int
	current atomic.Pointer[WorldView]

	ticks, joins, deaths, respawns, eaten, botFaults atomic.Int64
}

// Option 构造 World 时的可选项
type Option func(*World)

// WithLogger 注入日志；默认不输出
func WithLogger(l *zap.SugaredLogger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWorld 校验配置，生成初始机器人与满额世界羽毛，并发布第 0 帧快照
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world config: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := &World{
		cfg:  cfg,
		dir:  NewDirectory(),
		gate: NewInputGate(cfg.InputCoordLimit),
		rng:  rand.New(rand.NewSource(seed)),
		log:  zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(w)
	}
	w.sp = &spawner{cfg: &w.cfg, dir: w.dir, rng: w.rng}

	for i := 0; i < cfg.BotCount; i++ {
		w.spawnBot()
	}
	w.sp.topUp()
	w.current.Store(buildSnapshot(&w.cfg, 0, w.dir, nil))
	w.log.Infow("world initialized", "mapRadius", cfg.MapRadius, "bots", cfg.BotCount, "feathers", w.dir.FeatherCount())
	return w, nil
}

// Join 在安全位置生成玩家；已存在或玩家已满时不做任何事
func (w *World) Join(id, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.dir.Parrot(id); ok {
		return ErrAlreadyJoined
	}
	if w.dir.CountKind(KindPlayer) >= w.cfg.MaxPlayers {
		return ErrArenaFull
	}
	p := w.newParrot(id, w.cleanName(name), KindPlayer, w.cfg.PlayerStartEnergy)
	w.dir.AddParrot(p)
	w.joins.Add(1)
	w.log.Infow("player joined", "id", id, "name", p.DisplayName)
	return nil
}

// DisplayName 已加入鹦鹉清洗后的名字
func (w *World) DisplayName(id string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.dir.Parrot(id)
	if !ok {
		return "", false
	}
	return p.DisplayName, true
}

// SetIntent 记录玩家最新意图，下一个 Tick 生效；未知 id 在 Drain 时被忽略
func (w *World) SetIntent(id string, in Intent) {
	w.gate.SetIntent(id, in)
}

// RemoveEntity 断线时立即移除，不掉落羽毛；未知 id 不做任何事
func (w *World) RemoveEntity(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dir.RemoveParrot(id); ok {
		w.log.Infow("parrot removed", "id", id)
	}
}

// Tick 推进一个固定步长，仅由 Clock（或测试）调用
func (w *World) Tick(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	cfg := &w.cfg

	// 1. 玩家意图
	for id, in := range w.gate.Drain() {
		if p, ok := w.dir.Parrot(id); ok && p.Alive && p.Kind == KindPlayer {
			p.intent, p.hasIntent = in, true
		}
	}

	// 2. 机器人决策，全部基于移动前的同一个视图
	view := &botView{cfg: cfg, dir: w.dir, idx: buildIndex(w.dir, cfg), rng: w.rng, dt: dt}
	for _, p := range w.dir.Parrots() {
		if p.Alive && p.Kind == KindBot {
			w.thinkBot(view, p)
		}
	}

	// 3. 移动与身体
	for _, p := range w.dir.Parrots() {
		if !p.Alive {
			continue
		}
		in := Intent{Target: p.Heading, Mode: TargetHeading}
		if p.hasIntent {
			in = p.intent
		}
		boosted := integrate(cfg, p, in, dt)
		updateChain(cfg, p)
		if boosted {
			w.sp.emitBoost(p)
		}
	}

	// 4. 拾取与补齐
	idx := buildIndex(w.dir, cfg)
	w.eaten.Add(int64(w.sp.pickup(idx)))
	w.sp.topUp()

	// 5. 碰撞标记
	marks := resolveCollisions(cfg, w.dir, idx, w.log)
	causes := make(map[*Parrot]string, len(marks))
	for _, m := range marks {
		causes[m.parrot] = m.cause
	}

	// 6. 清理死亡者
	var deaths []DeathView
	for _, p := range w.dir.PurgeDead() {
		n := w.sp.emitDeath(p)
		deaths = append(deaths, DeathView{ID: p.ID, Name: p.DisplayName, Kind: p.Kind.String(), Cause: causes[p]})
		w.deaths.Add(1)
		w.log.Debugw("parrot died", "id", p.ID, "kind", p.Kind.String(), "cause", causes[p], "feathers", n)
	}
	for w.dir.CountKind(KindBot) < cfg.BotCount {
		w.spawnBot()
		w.respawns.Add(1)
	}

	// 7. 发布快照
	w.current.Store(buildSnapshot(cfg, w.tick, w.dir, deaths))
	w.ticks.Add(1)
}

var botDecider = decideBot

// thinkBot 单个机器人的决策；panic 被隔离，该机器人本 Tick 保持直行不加速
func (w *World) thinkBot(v *botView, p *Parrot) {
	defer func() {
		if r := recover(); r != nil {
			w.botFaults.Add(1)
			w.log.Errorw("bot decision panicked", "bot", p.ID, "panic", fmt.Sprint(r))
			p.intent, p.hasIntent = Intent{Target: p.Heading, Mode: TargetHeading}, true
		}
	}()
	in, mem := botDecider(v, p)
	p.intent, p.hasIntent = in, true
	p.Bot = &mem
}

// GetSnapshot 最近一次 Tick 的不可变快照，不会等待正在进行的 Tick
func (w *World) GetSnapshot() *WorldView {
	return w.current.Load()
}

// GetLeaderboard 存活鹦鹉按能量降序
func (w *World) GetLeaderboard(topN int) []LeaderboardEntry {
	return w.GetSnapshot().Leaderboard(topN)
}

// Tune 在 Tick 之间原子地修改可热更新参数；校验失败时不生效
func (w *World) Tune(fn func(*Tuning)) (Tuning, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := w.cfg.tuning()
	fn(&t)
	next := w.cfg
	next.applyTuning(t)
	if err := next.Validate(); err != nil {
		return w.cfg.tuning(), err
	}
	w.cfg = next
	w.log.Infow("tuning updated", "tuning", t)
	return t, nil
}

func (w *World) Tuning() Tuning {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg.tuning()
}

// Config 当前配置的副本
func (w *World) Config() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// InputStats 输入门接受与拒绝的意图数
func (w *World) InputStats() (accepted, rejected int64) {
	return w.gate.Stats()
}

func (w *World) Stats() Stats {
	return Stats{
		Ticks:         w.ticks.Load(),
		Joins:         w.joins.Load(),
		Deaths:        w.deaths.Load(),
		BotRespawns:   w.respawns.Load(),
		FeathersEaten: w.eaten.Load(),
		BotFaults:     w.botFaults.Load(),
	}
}

func (w *World) spawnBot() *Parrot {
	w.botSeq++
	energy := w.cfg.BotStartEnergyMin + w.rng.Float64()*(w.cfg.BotStartEnergyMax-w.cfg.BotStartEnergyMin)
	p := w.newParrot(w.nextBotID(), fmt.Sprintf("Bot %d", w.botSeq), KindBot, energy)
	p.Bot = &BotMemory{State: BotWander}
	for !w.dir.AddParrot(p) {
		p.ID = w.nextBotID()
	}
	return p
}

// nextBotID 从世界的随机源生成 id，同一种子得到同一序列
func (w *World) nextBotID() string {
	for {
		id := "bot_" + uuid.Must(uuid.NewRandomFromReader(w.rng)).String()
		if _, taken := w.dir.Parrot(id); !taken {
			return id
		}
	}
}

func (w *World) newParrot(id, name string, kind Kind, energy float64) *Parrot {
	cfg := &w.cfg
	p := &Parrot{
		ID:          id,
		DisplayName: name,
		Kind:        kind,
		Pos:         safePosition(w.rng, w.dir, cfg.MapRadius*cfg.SpawnRadiusFactor, cfg.MinSpawnDistance, cfg.SpawnAttempts),
		Heading:     randomUnit(w.rng),
		Energy:      energy,
		Alive:       true,
	}
	initSegments(cfg, p, cfg.TargetSegments(energy))
	return p
}

func (w *World) cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return w.cfg.DefaultName
	}
	if utf8.RuneCountInString(name) > w.cfg.MaxNameLength {
		name = string([]rune(name)[:w.cfg.MaxNameLength])
	}
	return name
}
