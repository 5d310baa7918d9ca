package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hungryfaceai/webrtc-signaling-server/internal/api"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/config"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/events"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/liveness"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/logger"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/presence"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/registry"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/router"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/ws"
)

const probeDeadline = 5 * time.Second

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	var pres *presence.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Pass,
			DB:       cfg.Redis.DB,
		})
		pres = presence.NewStore(rdb, cfg.Redis.Prefix, cfg.PresenceTTL, zl)
		zl.Infow("presence mirroring enabled", "addr", cfg.Redis.Addr)
	}

	var pub *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		pub = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.LifecycleTopic, zl)
		zl.Infow("lifecycle events enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.LifecycleTopic)
	}

	reg := registry.New()
	rt := router.New(reg, pres, pub, zl)
	sup := liveness.New(cfg.SweepInterval, probeDeadline, zl)
	wsh := ws.NewHandler(rt, sup, ws.Options{
		WriteDeadline:  cfg.WriteDeadline,
		MaxMessageSize: cfg.WS.MaxMessageSizeBytes,
		SendBufferSize: cfg.WS.SendBufferSize,
	}, zl)
	app := api.NewServer(cfg, wsh, reg)

	sup.Start()

	errs := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		zl.Infof("signaling relay listening on %s (ws path %s)", addr, cfg.WS.Path)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		zl.Fatalf("server error: %v", err)
	case s := <-sig:
		zl.Infof("signal received: %v", s)
	}

	sup.Stop()
	if err := pub.Close(); err != nil {
		zl.Warnf("event publisher close: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		zl.Warnf("shutdown: %v", err)
	}
	zl.Info("shutting down")
}
