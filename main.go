package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stockradar/config"
	"stockradar/engine"
	shttp "stockradar/http"
	"stockradar/logging"
	"stockradar/scheduler"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	runOnce := flag.Bool("once", false, "立即生成一次报告后退出")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer logger.Sync()

	cfgMgr := config.NewManager(*configPath, cfg)

	eng, err := engine.New(cfgMgr, logger)
	if err != nil {
		logger.Fatal("init engine failed", zap.Error(err))
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *runOnce {
		if _, err := eng.GenerateReport(ctx, time.Now()); err != nil {
			logger.Fatal("report run failed", zap.Error(err))
		}
		return
	}

	sched := scheduler.New(func(now time.Time) {
		runCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := eng.GenerateReport(runCtx, now); err != nil {
			logger.Error("scheduled report run failed", zap.Error(err))
		}
	}, logger)
	if err := sched.Start(cfg.Schedule.Times); err != nil {
		logger.Fatal("start scheduler failed", zap.Error(err))
	}
	defer sched.Stop()

	// 配置文件热加载：时刻表变更直接应用到调度器
	closeWatcher, err := cfgMgr.Watch(logger, func(next *config.Config) {
		if err := sched.Update(next.Schedule.Times); err != nil {
			logger.Warn("apply reloaded schedule failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	} else {
		defer closeWatcher()
	}

	hub := shttp.NewHub(cfg.Http.AllowedOrigins, logger)
	eng.SetBroadcast(hub.BroadcastReport)

	handlers := shttp.NewHandlers(eng, cfgMgr, sched.Update, logger)
	server := shttp.NewServer(cfg.Http.Port, cfg.Http.AllowedOrigins, handlers, hub, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := server.Stop(); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
}
