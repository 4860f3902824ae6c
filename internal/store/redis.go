package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig selects the Redis server used for the queue, tally and
// rate limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis holds the shared client. A Redis value with a nil Client stands
// for "not configured" and reports unhealthy.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client with short timeouts. It does not dial; the
// first command does.
func NewRedis(cfg RedisConfig) *Redis {
	if cfg.Addr == "" {
		return &Redis{}
	}
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})}
}

// Healthy pings the server.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
