package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter 注册 WebSocket、管理与监控接口；staticDir 非空时把 / 映射到静态资源
func NewRouter(m *ArenaManager, staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", m.HandleWS)
	r.HandleFunc("/admin/config", m.HandleAdminConfig).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/metrics", m.HandleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard", m.HandleLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/arenas", m.HandleArenas).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return r
}
