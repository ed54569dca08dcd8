package worker

import (
	"context"
	"log/slog"
	"time"
)

// SharePurger deletes expired report share links.
type SharePurger interface {
	PurgeExpiredShares(ctx context.Context) (int64, error)
}

// ShareWorker periodically removes expired share links.
type ShareWorker struct {
	purger   SharePurger
	interval time.Duration
}

// NewShareWorker creates a new ShareWorker.
func NewShareWorker(purger SharePurger, interval time.Duration) *ShareWorker {
	return &ShareWorker{
		purger:   purger,
		interval: interval,
	}
}

func (w *ShareWorker) purge(ctx context.Context) {
	n, err := w.purger.PurgeExpiredShares(ctx)
	if err != nil {
		slog.Error("ShareWorker: purge failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("ShareWorker: purged expired share links", "count", n)
	}
}

// Run starts the share worker loop. It blocks until the context is cancelled.
func (w *ShareWorker) Run(ctx context.Context) {
	slog.Info("ShareWorker: starting", "interval", w.interval)

	// Purge immediately on startup
	w.purge(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ShareWorker: shutting down")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}
