package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duelcore/core"
	"duelcore/server"
)

// duelcore 入口：启动 HTTP + WebSocket 服务，并初始化房间管理器
func main() {
	var (
		addr      string
		logFile   string
		logLevel  string
		logStdout bool
	)
	cfg := core.DefaultConfig()
	flag.StringVar(&addr, "addr", ":8080", "server listen address, e.g. :8080")
	flag.StringVar(&logFile, "log", "app.log", "log file path (rotated)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.BoolVar(&logStdout, "log-stdout", false, "also write logs to stdout")
	flag.Float64Var(&cfg.Tuning.Speed, "speed", cfg.Tuning.Speed, "player speed in units per second")
	flag.Float64Var(&cfg.World.Width, "world-w", cfg.World.Width, "world width")
	flag.Float64Var(&cfg.World.Height, "world-h", cfg.World.Height, "world height")
	flag.Parse()

	// 使用 zap 日志库写入文件（带滚动）
	if err := server.InitLogger(server.LogOptions{FilePath: logFile, Level: logLevel, Stdout: logStdout}); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	if err := cfg.Validate(); err != nil {
		server.Log.Fatalf("config: %v", err)
	}

	sched := server.NewTickerScheduler()
	rm := server.NewRoomManager(cfg, sched)

	mux := http.NewServeMux()
	rm.Routes(mux)

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		server.Log.Infof("duelcore listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnw("http shutdown", "err", err)
	}
	rm.Shutdown()
	sched.Wait()
}
