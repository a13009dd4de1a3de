package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/expensebot/core/logger"
)

// StartSweeper removes expired sessions every interval until ctx is done.
func StartSweeper(ctx context.Context, store Store, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := store.Sweep(now); n > 0 {
					logger.Info(ctx, logger.Session, "session.sweep",
						slog.String("status", "ok"),
						slog.Int("removed", n),
					)
				}
			}
		}
	}()
}
