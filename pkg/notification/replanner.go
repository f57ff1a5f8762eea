package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type (
	DeviceLister interface {
		ListDeviceIDs(ctx context.Context) ([]string, error)
	}

	// Replanner rebuilds every known device's schedule once a day so day
	// offsets follow the calendar even when the inventory is untouched.
	Replanner struct {
		coordinator *Coordinator
		listers     []DeviceLister
		hour        int
		now         func() time.Time
	}
)

func NewReplanner(coordinator *Coordinator, hour int, now func() time.Time, listers ...DeviceLister) *Replanner {
	if now == nil {
		now = time.Now
	}
	return &Replanner{coordinator: coordinator, listers: listers, hour: hour, now: now}
}

// ReplanAll recomputes every device reported by the listers and returns how
// many succeeded.
func (r *Replanner) ReplanAll(ctx context.Context) (int, error) {
	deviceIDs, err := r.devices(ctx)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, deviceID := range deviceIDs {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if _, err := r.coordinator.Request(ctx, deviceID); err != nil {
			log.Warnw("replan failed", "device_id", deviceID, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

func (r *Replanner) devices(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, lister := range r.listers {
		ids, err := lister.ListDeviceIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list devices: %w", err)
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	deviceIDs := make([]string, 0, len(seen))
	for id := range seen {
		deviceIDs = append(deviceIDs, id)
	}
	sort.Strings(deviceIDs)
	return deviceIDs, nil
}

// NextRun returns the next time the daily pass should start after now.
func (r *Replanner) NextRun(now time.Time) time.Time {
	y, m, d := now.Date()
	next := time.Date(y, m, d, r.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, r.hour, 0, 0, 0, now.Location())
	}
	return next
}

// Start runs one pass immediately and then one per day until ctx is done.
func (r *Replanner) Start(ctx context.Context) {
	go func() {
		r.pass(ctx)
		for {
			wait := time.Until(r.NextRun(r.now()))
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				r.pass(ctx)
			}
		}
	}()
}

func (r *Replanner) pass(ctx context.Context) {
	start := time.Now()
	n, err := r.ReplanAll(ctx)
	if err != nil {
		log.Errorw("daily replan aborted", "error", err, "replanned", n)
		return
	}
	log.Infow("daily replan finished", "devices", n, "took", time.Since(start).String())
}
