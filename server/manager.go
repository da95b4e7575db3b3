package server

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ArenaManager 管理多个竞技场的生命周期
type ArenaManager struct {
	mu       sync.RWMutex
	arenas   map[string]*Arena
	settings Settings
	ctx      context.Context
}

// NewArenaManager ctx 取消时所有竞技场的时钟随之停止
func NewArenaManager(ctx context.Context, s Settings) *ArenaManager {
	return &ArenaManager{
		arenas:   make(map[string]*Arena),
		settings: s,
		ctx:      ctx,
	}
}

// GetOrCreateArena 获取或创建竞技场，并确保开始 Tick
func (m *ArenaManager) GetOrCreateArena(id string) (*Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.arenas[id]
	if !ok {
		var err error
		a, err = NewArena(id, m.settings)
		if err != nil {
			return nil, errors.Wrapf(err, "create arena %s", id)
		}
		m.arenas[id] = a
		a.Start(m.ctx)
		Log.Infow("arena created", "arena", id)
	}
	return a, nil
}

// Arena 只查找，不创建
func (m *ArenaManager) Arena(id string) (*Arena, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.arenas[id]
	return a, ok
}

// IDs 按名称排序
func (m *ArenaManager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.arenas))
	for id := range m.arenas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown 停止所有竞技场并等待它们的 Tick 结束
func (m *ArenaManager) Shutdown() {
	m.mu.RLock()
	arenas := make([]*Arena, 0, len(m.arenas))
	for _, a := range m.arenas {
		arenas = append(arenas, a)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, a := range arenas {
		wg.Add(1)
		go func(a *Arena) {
			defer wg.Done()
			a.Stop()
		}(a)
	}
	wg.Wait()
}

// arenaParam ?arena= 缺省为默认竞技场
func (m *ArenaManager) arenaParam(r *http.Request) string {
	if id := r.URL.Query().Get("arena"); id != "" {
		return id
	}
	return m.settings.DefaultArena
}
