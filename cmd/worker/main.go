package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hostel/internal/config"
	"hostel/internal/queue"
	"hostel/internal/store"
	"hostel/internal/tally"
)

// Worker consumes activity events from Redis and maintains the daily tally.
func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueBackend != "redis" {
		log.Error("worker needs QUEUE_BACKEND=redis; the memory queue is drained by the api process", "queue", cfg.QueueBackend)
		os.Exit(2)
	}

	rdb := store.NewRedis(store.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if rdb.Client == nil {
		log.Error("worker needs REDIS_ADDR")
		os.Exit(2)
	}
	defer rdb.Close()
	if !rdb.Healthy(ctx) {
		log.Warn("redis not reachable yet, will keep retrying", "addr", cfg.RedisAddr)
	}

	q := queue.NewRedisQueue(rdb.Client, cfg.QueueKey, log)
	log.Info("worker started, waiting for events", "key", cfg.QueueKey)
	if err := tally.Run(ctx, q, tally.New(rdb.Client), log); err != nil {
		log.Error("queue consume failed", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}
