package http

import (
	"context"
	"log/slog"
	"time"
)

// IdleCleaner drops idle rate limiter state.
type IdleCleaner interface {
	CleanupExpired() int
	ActiveClients() int
}

// StartRateLimitCleanup periodically removes idle client buckets until ctx
// is canceled. It blocks; run it in its own goroutine.
func StartRateLimitCleanup(ctx context.Context, limiter IdleCleaner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped")
			return

		case <-ticker.C:
			removed := limiter.CleanupExpired()
			slog.Debug("rate limit cleanup completed",
				slog.Int("removed", removed),
				slog.Int("active_clients", limiter.ActiveClients()))
		}
	}
}
