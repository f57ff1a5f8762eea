package ratelimit

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type Sweeper interface {
	Sweep(now time.Time) int
}

// StartSweeper periodically evicts stale records from in-memory stores until
// ctx is cancelled.
func StartSweeper(ctx context.Context, interval time.Duration, clock func() time.Time, sweepers ...Sweeper) {
	if interval <= 0 || len(sweepers) == 0 {
		return
	}
	if clock == nil {
		clock = time.Now
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := clock()
				removed := 0
				for _, s := range sweepers {
					removed += s.Sweep(now)
				}
				if removed > 0 {
					log.Debugw("swept stale quota records", "removed", removed)
				}
			}
		}
	}()
}
