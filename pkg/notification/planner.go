// Package notification keeps each device's alert schedule in line with its
// inventory. The schedule is never edited in place: every recompute cancels
// everything and schedules the full set again.
package notification

import (
	"context"
	"errors"
	"fmt"
	"freshkeep-backend/domain"
	"freshkeep-backend/entities"
	"freshkeep-backend/internal/utils/metrics"
	"freshkeep-backend/pkg/expiry"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
)

type (
	InventoryQuery interface {
		QueryExpiringWithin(ctx context.Context, deviceID string, days int, today time.Time) ([]entities.FoodItem, error)
		QueryExpired(ctx context.Context, deviceID string, today time.Time) ([]entities.FoodItem, error)
	}

	PreferencesSource interface {
		GetPreferences(ctx context.Context, deviceID string) (domain.NotificationPreferences, error)
	}

	// Notifier is the per-device alert capability. ScheduleOneShot and
	// ScheduleDailyRecurring may return domain.ErrPermissionDenied if the
	// permission was revoked after RequestPermission succeeded.
	Notifier interface {
		RequestPermission(ctx context.Context, deviceID string) (bool, error)
		CancelAll(ctx context.Context, deviceID string) error
		ScheduleOneShot(ctx context.Context, deviceID string, content domain.AlertContent, fireImmediately bool) error
		ScheduleDailyRecurring(ctx context.Context, deviceID string, content domain.AlertContent, hour, minute int) error
	}

	Planner interface {
		Recompute(ctx context.Context, deviceID string) (domain.NotificationPlan, error)
		SendTest(ctx context.Context, deviceID string) error
	}

	PlannerConfig struct {
		LookaheadDays int
		DigestHour    int
		DigestMinute  int
		Now           func() time.Time
	}

	planner struct {
		inventory   InventoryQuery
		preferences PreferencesSource
		notifier    Notifier
		config      PlannerConfig
	}
)

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		LookaheadDays: domain.DefaultLookaheadDays,
		DigestHour:    domain.DefaultDigestHour,
		DigestMinute:  domain.DefaultDigestMinute,
		Now:           time.Now,
	}
}

func NewPlanner(inventory InventoryQuery, preferences PreferencesSource, notifier Notifier, config PlannerConfig) (Planner, error) {
	if config.LookaheadDays <= 0 {
		config.LookaheadDays = domain.DefaultLookaheadDays
	}
	if config.DigestHour < 0 || config.DigestHour > 23 || config.DigestMinute < 0 || config.DigestMinute > 59 {
		return nil, domain.ErrInvalidDigestSchedule
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &planner{
		inventory:   inventory,
		preferences: preferences,
		notifier:    notifier,
		config:      config,
	}, nil
}

func (p *planner) Recompute(ctx context.Context, deviceID string) (domain.NotificationPlan, error) {
	now := p.config.Now()
	plan := domain.NotificationPlan{
		DeviceID:   deviceID,
		Alerts:     []domain.PlannedAlert{},
		ComputedAt: now,
	}

	if err := p.notifier.CancelAll(ctx, deviceID); err != nil {
		return plan, fmt.Errorf("cancel scheduled alerts: %w", err)
	}

	granted, err := p.notifier.RequestPermission(ctx, deviceID)
	if err != nil {
		return plan, fmt.Errorf("request permission: %w", err)
	}
	if !granted {
		log.Debugw("notification permission not granted, schedule left empty", "device_id", deviceID)
		return plan, nil
	}
	plan.PermissionGranted = true

	var (
		prefs    domain.NotificationPreferences
		expiring []entities.FoodItem
		expired  []entities.FoodItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prefs, err = p.preferences.GetPreferences(gctx, deviceID)
		return err
	})
	g.Go(func() error {
		var err error
		expiring, err = p.inventory.QueryExpiringWithin(gctx, deviceID, p.config.LookaheadDays, now)
		return err
	})
	g.Go(func() error {
		var err error
		expired, err = p.inventory.QueryExpired(gctx, deviceID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return plan, fmt.Errorf("load inventory: %w", err)
	}

	plan.ExpiredCount = len(expired)
	plan.ExpiringCount = len(expiring)

	s := &scheduler{notifier: p.notifier, deviceID: deviceID, plan: &plan}

	for _, item := range expired {
		s.oneShot(ctx, expiredContent(item.ID.String(), item.Name))
	}

	for _, item := range expiring {
		days := expiry.DaysUntil(item.ExpirationDate, now)
		switch {
		case days < 0:
			// Already covered by the expired list.
			continue
		case days == 0:
			if prefs.Notifies(0) {
				s.oneShot(ctx, expiresOnDayContent(item.ID.String(), item.Name, 0))
			}
		default:
			for _, n := range prefs.NotifyDaysBefore {
				if n > 0 && n == days {
					s.oneShot(ctx, expiresOnDayContent(item.ID.String(), item.Name, n))
				}
			}
		}
	}

	if prefs.DailySummary && len(expired)+len(expiring) > 0 {
		s.daily(ctx, digestContent(len(expired), len(expiring)), p.config.DigestHour, p.config.DigestMinute)
	}

	metrics.Count(ctx, metrics.PlannerRuns, 1)
	metrics.Count(ctx, metrics.AlertsScheduled, int64(len(plan.Alerts)))
	log.Debugw("notification schedule recomputed",
		"device_id", deviceID,
		"alerts", len(plan.Alerts),
		"expired", plan.ExpiredCount,
		"expiring", plan.ExpiringCount,
	)
	return plan, nil
}

// SendTest schedules a single immediate alert so the device owner can check
// delivery works. It does not touch the rest of the schedule.
func (p *planner) SendTest(ctx context.Context, deviceID string) error {
	granted, err := p.notifier.RequestPermission(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("request permission: %w", err)
	}
	if !granted {
		return domain.ErrPermissionDenied
	}
	return p.notifier.ScheduleOneShot(ctx, deviceID, testContent(), true)
}

// scheduler records what was actually scheduled. After a permission denial
// every further call is a no-op.
type scheduler struct {
	notifier Notifier
	deviceID string
	plan     *domain.NotificationPlan
	stopped  bool
}

func (s *scheduler) oneShot(ctx context.Context, content domain.AlertContent) {
	if s.stopped {
		return
	}
	err := s.notifier.ScheduleOneShot(ctx, s.deviceID, content, true)
	s.record(err, domain.PlannedAlert{AlertContent: content, Trigger: domain.TriggerImmediate})
}

func (s *scheduler) daily(ctx context.Context, content domain.AlertContent, hour, minute int) {
	if s.stopped {
		return
	}
	err := s.notifier.ScheduleDailyRecurring(ctx, s.deviceID, content, hour, minute)
	s.record(err, domain.PlannedAlert{AlertContent: content, Trigger: domain.TriggerDaily, Hour: hour, Minute: minute})
}

func (s *scheduler) record(err error, alert domain.PlannedAlert) {
	switch {
	case err == nil:
		s.plan.Alerts = append(s.plan.Alerts, alert)
	case errors.Is(err, domain.ErrPermissionDenied):
		s.stopped = true
		log.Infow("notification permission revoked during recompute", "device_id", s.deviceID)
	default:
		log.Errorw("failed to schedule alert",
			"device_id", s.deviceID,
			"kind", alert.Kind,
			"item_id", alert.ItemID,
			"error", err,
		)
	}
}
