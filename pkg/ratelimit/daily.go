package ratelimit

import (
	"context"
	"errors"
	"freshkeep-backend/domain"
	"sync"
	"time"
)

const (
	DefaultScanLimit   = 5
	DefaultRecipeLimit = 3
)

var ErrUnknownAction = errors.New("unknown quota action")

type (
	// DailyQuota caps costly actions per device per calendar day. The check
	// and the increment happen as one atomic step per device.
	DailyQuota interface {
		CheckAndConsume(ctx context.Context, deviceID string, action domain.Action, now time.Time) (Result, error)
		Limit(action domain.Action) int
	}

	Limits struct {
		Scans   int
		Recipes int
	}

	usage struct {
		scans   int
		recipes int
		day     string
	}

	MemoryQuota struct {
		mu       sync.Mutex
		limits   Limits
		location *time.Location
		records  map[string]*usage
	}
)

func DefaultLimits() Limits {
	return Limits{Scans: DefaultScanLimit, Recipes: DefaultRecipeLimit}
}

func (l Limits) For(action domain.Action) (int, error) {
	switch action {
	case domain.ActionScan:
		return l.Scans, nil
	case domain.ActionRecipe:
		return l.Recipes, nil
	default:
		return 0, ErrUnknownAction
	}
}

// NewMemoryQuota keeps usage in process memory. Calendar days are computed in
// loc; a nil loc means UTC.
func NewMemoryQuota(limits Limits, loc *time.Location) *MemoryQuota {
	if loc == nil {
		loc = time.UTC
	}
	return &MemoryQuota{
		limits:   limits,
		location: loc,
		records:  make(map[string]*usage),
	}
}

func (q *MemoryQuota) Limit(action domain.Action) int {
	limit, _ := q.limits.For(action)
	return limit
}

func (q *MemoryQuota) CheckAndConsume(_ context.Context, deviceID string, action domain.Action, now time.Time) (Result, error) {
	limit, err := q.limits.For(action)
	if err != nil {
		return Result{}, err
	}

	today := dayKey(now, q.location)
	resetAt := nextMidnight(now, q.location)

	q.mu.Lock()
	defer q.mu.Unlock()

	record, ok := q.records[deviceID]
	if !ok || record.day != today {
		record = &usage{day: today}
		q.records[deviceID] = record
	}

	counter := &record.scans
	if action == domain.ActionRecipe {
		counter = &record.recipes
	}

	if *counter >= limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	*counter++
	return Result{Allowed: true, Remaining: limit - *counter, ResetAt: resetAt}, nil
}

// Sweep drops records left over from previous days.
func (q *MemoryQuota) Sweep(now time.Time) int {
	today := dayKey(now, q.location)

	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	for deviceID, record := range q.records {
		if record.day != today {
			delete(q.records, deviceID)
			removed++
		}
	}
	return removed
}

func (q *MemoryQuota) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

func dayKey(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(domain.DateLayout)
}

func nextMidnight(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
