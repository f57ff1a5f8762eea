package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"freshkeep-backend/domain"
	"freshkeep-backend/entities"

	"github.com/google/uuid"
)

type fakeInventory struct {
	items []entities.FoodItem
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeInventory) QueryExpiringWithin(_ context.Context, _ string, days int, today time.Time) ([]entities.FoodItem, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []entities.FoodItem
	for _, item := range f.items {
		d := daysBetween(item.ExpirationDate, today)
		if d >= 0 && d <= days {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeInventory) QueryExpired(_ context.Context, _ string, today time.Time) ([]entities.FoodItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entities.FoodItem
	for _, item := range f.items {
		if daysBetween(item.ExpirationDate, today) < 0 {
			out = append(out, item)
		}
	}
	return out, nil
}

func daysBetween(target, today time.Time) int {
	ty, tm, td := target.Date()
	ny, nm, nd := today.Date()
	return int(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Sub(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)).Hours() / 24)
}

type fakePreferences struct {
	prefs domain.NotificationPreferences
	err   error
}

func (f *fakePreferences) GetPreferences(context.Context, string) (domain.NotificationPreferences, error) {
	return f.prefs, f.err
}

type scheduledCall struct {
	content   domain.AlertContent
	trigger   domain.AlertTrigger
	hour      int
	minute    int
	immediate bool
}

// fakeNotifier keeps the live schedule per device the way a real alert store
// would: CancelAll wipes it, Schedule* appends.
type fakeNotifier struct {
	mu         sync.Mutex
	granted    bool
	permErr    error
	cancelErr  error
	failOn     func(domain.AlertContent) error
	cancels    int
	schedule   map[string][]scheduledCall
	permChecks int
}

func newFakeNotifier(granted bool) *fakeNotifier {
	return &fakeNotifier{granted: granted, schedule: make(map[string][]scheduledCall)}
}

func (f *fakeNotifier) RequestPermission(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permChecks++
	return f.granted, f.permErr
}

func (f *fakeNotifier) CancelAll(_ context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	if f.cancelErr != nil {
		return f.cancelErr
	}
	delete(f.schedule, deviceID)
	return nil
}

func (f *fakeNotifier) ScheduleOneShot(_ context.Context, deviceID string, content domain.AlertContent, fireImmediately bool) error {
	return f.add(deviceID, scheduledCall{content: content, trigger: domain.TriggerImmediate, immediate: fireImmediately})
}

func (f *fakeNotifier) ScheduleDailyRecurring(_ context.Context, deviceID string, content domain.AlertContent, hour, minute int) error {
	return f.add(deviceID, scheduledCall{content: content, trigger: domain.TriggerDaily, hour: hour, minute: minute})
}

func (f *fakeNotifier) add(deviceID string, call scheduledCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != nil {
		if err := f.failOn(call.content); err != nil {
			return err
		}
	}
	f.schedule[deviceID] = append(f.schedule[deviceID], call)
	return nil
}

func (f *fakeNotifier) live(deviceID string) []scheduledCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scheduledCall(nil), f.schedule[deviceID]...)
}

func foodItem(name string, expires time.Time) entities.FoodItem {
	return entities.FoodItem{
		ID:             uuid.New(),
		DeviceID:       "device-1",
		Name:           name,
		ExpirationDate: expires,
		Disposition:    string(domain.DispositionActive),
	}
}

var errStore = errors.New("store unavailable")
