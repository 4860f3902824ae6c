package tally

import (
	"context"
	"log/slog"

	"hostel/internal/queue"
)

// Applier records one event.
type Applier interface {
	Apply(ctx context.Context, evt queue.Event) error
}

// Run consumes q and applies every event until the queue channel closes.
// Failed applies are logged and dropped; the tally is best effort.
func Run(ctx context.Context, q queue.Queue, a Applier, log *slog.Logger) error {
	events, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for evt := range events {
		if err := a.Apply(ctx, evt); err != nil {
			log.Warn("tally apply failed", "kind", evt.Kind, "day", evt.Day, "error", err)
			continue
		}
		log.Debug("tally applied", "kind", evt.Kind, "day", evt.Day)
	}
	return nil
}
