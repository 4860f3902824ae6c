package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hostel/internal/config"
	"hostel/internal/hostel"
	"hostel/internal/httpmiddleware"
	"hostel/internal/metrics"
	"hostel/internal/queue"
	"hostel/internal/store"
	"hostel/internal/tally"
	"hostel/internal/web"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func runHTTP(cfg config.App, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := store.NewDB(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	rdb := store.NewRedis(store.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer rdb.Close()

	var daily web.DailyReader
	var tl *tally.Tally
	if rdb.Client != nil {
		tl = tally.New(rdb.Client)
		daily = tl
	}

	var q queue.Queue
	switch cfg.QueueBackend {
	case "redis":
		if rdb.Client == nil {
			return errors.New("QUEUE_BACKEND=redis needs REDIS_ADDR")
		}
		q = queue.NewRedisQueue(rdb.Client, cfg.QueueKey, log)
	case "memory":
		if tl == nil {
			q = queue.Discard{}
			break
		}
		// No separate worker can see an in-memory queue, so drain it here.
		mem := queue.NewInMemory(256)
		q = mem
		go func() {
			if err := tally.Run(ctx, mem, tl, log); err != nil {
				log.Warn("in-process tally stopped", "error", err)
			}
		}()
	default:
		q = queue.Discard{}
	}

	var limiter httpmiddleware.Limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	if cfg.RateLimitBackend == "redis" && rdb.Client != nil {
		limiter = httpmiddleware.NewFixedWindow(rdb.Client, cfg.RateLimitPerMin)
	}

	repo := hostel.NewRepository(db.Client)
	h := web.New(web.Options{
		Service:  hostel.NewService(repo, nil),
		Reporter: hostel.NewReporter(repo),
		Events:   q,
		Tally:    daily,
		Metrics:  metrics.New(),
		Logger:   log,
		Location: loc,
		Health: func(ctx context.Context) map[string]bool {
			return map[string]bool{"db": db.Healthy(ctx), "redis": rdb.Healthy(ctx)}
		},
	})

	tmpl, err := web.Templates(cfg.TemplatesDir)
	if err != nil {
		return err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders(cfg.Production()))
	r.Use(httpmiddleware.RateLimit(limiter, log))
	h.Register(r, tmpl)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "db", cfg.DBDriver, "queue", cfg.QueueBackend, "tz", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", "error", err)
	}
	log.Info("server exited")
	return nil
}
