package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parrotarena/server"
)

// ParrotArena 入口：启动 HTTP + WebSocket 服务，并初始化竞技场管理器
func main() {
	var (
		envFile string
		addr    string
		logFile string
	)
	flag.StringVar(&envFile, "env", ".env", "optional dotenv file with PARROT_* settings")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides PARROT_ADDR, e.g. :8080")
	flag.StringVar(&logFile, "log", "", "log file path, overrides PARROT_LOG_FILE")
	flag.Parse()

	settings, err := server.LoadSettings(envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if addr != "" {
		settings.Addr = addr
	}
	if logFile != "" {
		settings.LogFile = logFile
	}

	// zap 日志写入文件（带滚动）
	if err := server.InitLogger(settings.LogFile, settings.LogLevel, settings.LogConsole); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer server.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	am := server.NewArenaManager(ctx, settings)
	// 先预创建默认竞技场，便于快速试跑
	if _, err := am.GetOrCreateArena(settings.DefaultArena); err != nil {
		server.Log.Fatalw("create default arena", "err", err)
	}

	srv := &http.Server{
		Addr:              settings.Addr,
		Handler:           server.NewRouter(am, settings.StaticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		server.Log.Infof("ParrotArena listening on %s; open http://localhost%v/", settings.Addr, settings.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）：先停止接入，再停止所有竞技场的时钟
	<-ctx.Done()
	server.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnw("http shutdown", "err", err)
	}
	am.Shutdown()
}
