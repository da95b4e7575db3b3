package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"parrotarena/game"
)

// HandleAdminConfig 提供竞技场可调参数的读取与热更新
// GET  /admin/config?arena=arena-1  返回当前参数
// POST /admin/config?arena=arena-1  以 JSON 载荷更新部分字段，下一个 Tick 生效
func (m *ArenaManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	arena, ok := m.lookup(w, r)
	if !ok {
		return
	}

	type patch struct {
		BaseSpeed     *float64 `json:"baseSpeed,omitempty"`
		BoostSpeed    *float64 `json:"boostSpeed,omitempty"`
		BoostCostRate *float64 `json:"boostCostRate,omitempty"`
		FeatherCap    *int     `json:"featherCap,omitempty"`
		BotCount      *int     `json:"botCount,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, arena.World().Tuning())
	case http.MethodPost:
		var body patch
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t, err := arena.World().Tune(func(t *game.Tuning) {
			if body.BaseSpeed != nil {
				t.BaseSpeed = *body.BaseSpeed
			}
			if body.BoostSpeed != nil {
				t.BoostSpeed = *body.BoostSpeed
			}
			if body.BoostCostRate != nil {
				t.BoostCostRate = *body.BoostCostRate
			}
			if body.FeatherCap != nil {
				t.FeatherCap = *body.FeatherCap
			}
			if body.BotCount != nil {
				t.BotCount = *body.BotCount
			}
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		Log.Infow("config updated", "arena", arena.ID, "tuning", t)
		writeJSON(w, http.StatusOK, t)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定竞技场的运行指标
// GET /metrics?arena=arena-1
func (m *ArenaManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	arena, ok := m.lookup(w, r)
	if !ok {
		return
	}
	snap := arena.World().GetSnapshot()
	accepted, rejected := arena.World().InputStats()
	conns, playing := arena.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"arena":       arena.ID,
		"tick":        snap.Tick,
		"metrics":     arena.Metrics().Snapshot(),
		"world":       arena.World().Stats(),
		"parrots":     len(snap.Parrots),
		"bots":        snap.CountKind(game.KindBot),
		"feathers":    len(snap.Feathers),
		"connections": conns,
		"playing":     playing,
		"inputs": map[string]int64{
			"accepted": accepted,
			"rejected": rejected,
		},
	})
}

// HandleLeaderboard GET /leaderboard?arena=arena-1&n=10
func (m *ArenaManager) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	arena, ok := m.lookup(w, r)
	if !ok {
		return
	}
	n := m.settings.LeaderboardSize
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = v
	}
	writeJSON(w, http.StatusOK, arena.World().GetLeaderboard(n))
}

// HandleArenas GET /arenas 列出已创建的竞技场
func (m *ArenaManager) HandleArenas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.IDs())
}

func (m *ArenaManager) lookup(w http.ResponseWriter, r *http.Request) (*Arena, bool) {
	id := m.arenaParam(r)
	a, ok := m.Arena(id)
	if !ok {
		http.Error(w, "arena not found: "+id, http.StatusNotFound)
	}
	return a, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
