// Package tally keeps per-day activity counters in Redis hashes.
package tally

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"hostel/internal/queue"
)

const (
	keyPrefix = "hostel:tally:"
	ttl       = 8 * 24 * time.Hour
)

// Counts is one day's activity.
type Counts struct {
	CheckIns   int64 `json:"checkins"`
	Complaints int64 `json:"complaints"`
	Feedback   int64 `json:"feedback"`
}

// Tally reads and writes daily counters.
type Tally struct {
	client *redis.Client
}

// New creates a tally over client.
func New(client *redis.Client) *Tally {
	return &Tally{client: client}
}

// Key returns the hash key for day (YYYY-MM-DD).
func Key(day string) string { return keyPrefix + day }

// Apply increments the counter matching evt.Kind. Unknown kinds are ignored.
func (t *Tally) Apply(ctx context.Context, evt queue.Event) error {
	field, ok := fieldFor(evt.Kind)
	if !ok || evt.Day == "" {
		return nil
	}
	key := Key(evt.Day)
	pipe := t.client.TxPipeline()
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("tally %s %s: %w", key, field, err)
	}
	return nil
}

// Daily returns the counts for day; a day with no activity is all zeros.
func (t *Tally) Daily(ctx context.Context, day string) (Counts, error) {
	vals, err := t.client.HGetAll(ctx, Key(day)).Result()
	if err != nil {
		return Counts{}, fmt.Errorf("read tally %s: %w", day, err)
	}
	return parseCounts(vals), nil
}

func fieldFor(kind string) (string, bool) {
	switch kind {
	case queue.KindCheckIn:
		return "checkins", true
	case queue.KindComplaint:
		return "complaints", true
	case queue.KindFeedback:
		return "feedback", true
	}
	return "", false
}

func parseCounts(vals map[string]string) Counts {
	var c Counts
	c.CheckIns, _ = strconv.ParseInt(vals["checkins"], 10, 64)
	c.Complaints, _ = strconv.ParseInt(vals["complaints"], 10, 64)
	c.Feedback, _ = strconv.ParseInt(vals["feedback"], 10, 64)
	return c
}
