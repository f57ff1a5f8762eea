package notification

import (
	"context"
	"freshkeep-backend/domain"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const defaultRunTimeout = 30 * time.Second

type (
	result struct {
		plan domain.NotificationPlan
		err  error
	}

	// flight tracks the single in-flight recompute of one device. Requests
	// that arrive while it runs mark it dirty and are served by the next run.
	flight struct {
		current []chan result
		next    []chan result
		dirty   bool
	}

	// Coordinator serializes recomputes per device. Concurrent requests for a
	// device that is already being planned collapse into one extra run, so
	// the last run always starts after the last request.
	Coordinator struct {
		planner Planner
		timeout time.Duration

		mu      sync.Mutex
		flights map[string]*flight
		wg      sync.WaitGroup
	}
)

func NewCoordinator(planner Planner, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &Coordinator{
		planner: planner,
		timeout: timeout,
		flights: make(map[string]*flight),
	}
}

// Request recomputes the device's schedule and waits for a run that started
// after the call. The run itself is not bound to ctx; ctx only limits how
// long the caller waits.
func (c *Coordinator) Request(ctx context.Context, deviceID string) (domain.NotificationPlan, error) {
	ch := make(chan result, 1)
	c.enqueue(deviceID, ch)

	select {
	case res := <-ch:
		return res.plan, res.err
	case <-ctx.Done():
		return domain.NotificationPlan{}, ctx.Err()
	}
}

// Trigger schedules a recompute without waiting for it.
func (c *Coordinator) Trigger(deviceID string) {
	c.enqueue(deviceID, nil)
}

// Wait blocks until every in-flight run has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) enqueue(deviceID string, ch chan result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.flights[deviceID]; ok {
		f.dirty = true
		if ch != nil {
			f.next = append(f.next, ch)
		}
		return
	}

	f := &flight{}
	if ch != nil {
		f.current = append(f.current, ch)
	}
	c.flights[deviceID] = f
	c.wg.Add(1)
	go c.run(deviceID, f)
}

func (c *Coordinator) run(deviceID string, f *flight) {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		waiters := f.current
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		plan, err := c.planner.Recompute(ctx, deviceID)
		cancel()

		if err != nil {
			log.Errorw("notification recompute failed", "device_id", deviceID, "error", err)
		}
		for _, ch := range waiters {
			ch <- result{plan: plan, err: err}
		}

		c.mu.Lock()
		if !f.dirty {
			delete(c.flights, deviceID)
			c.mu.Unlock()
			return
		}
		f.current = f.next
		f.next = nil
		f.dirty = false
		c.mu.Unlock()
	}
}
