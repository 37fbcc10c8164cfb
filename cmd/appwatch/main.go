package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"appwatch/internal/cache"
	"appwatch/internal/catalog"
	"appwatch/internal/checker"
	"appwatch/internal/config"
	"appwatch/internal/notify"
	"appwatch/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to optional yaml config (env vars always win)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	log, closeLog := logx.New(logx.Config{
		Level:   cfg.Log.Level,
		Console: true,
		File:    logx.FileConfig{Enabled: cfg.Log.FileEnabled, Path: cfg.Log.File},
	})
	defer func() { _ = closeLog() }()

	appIDs := cfg.AppIDs
	if len(appIDs) == 0 {
		log.Warn("APP_IDS not set, falling back to the built-in test id",
			logx.String("app_id", config.TestAppID))
		appIDs = []string{config.TestAppID}
	}
	log.Info("appwatch starting",
		logx.String("push_method", cfg.PushMethod),
		logx.Int("apps", len(appIDs)),
		logx.Int("region_try_limit", catalog.ClampTryLimit(cfg.RegionTryLimit)))

	client := catalog.NewClient(catalog.ClientConfig{
		Timeout:    cfg.HTTP.TimeoutDuration(),
		RetryMax:   cfg.HTTP.RetryMax,
		RatePerSec: cfg.HTTP.RatePerSec,
	}, log)
	resolver := catalog.NewResolver(client, cfg.RegionTryLimit, log)
	store := cache.NewStore(cfg.CacheFile, log)
	dispatcher := notify.NewDispatcher(cfg, log)

	chk := checker.New(resolver, store, dispatcher, appIDs, log)
	if err := chk.Run(ctx); err != nil {
		log.Error("run aborted", logx.Err(err))
		os.Exit(1)
	}
}
