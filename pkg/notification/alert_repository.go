package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"freshkeep-backend/domain"
	"freshkeep-backend/entities"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	PermissionSource interface {
		PermissionGranted(ctx context.Context, deviceID string) (bool, error)
	}

	// AlertRepository persists the alert schedule. It is the only writer of
	// scheduled_alerts and doubles as the planner's Notifier.
	AlertRepository interface {
		Notifier
		ListScheduled(ctx context.Context, deviceID string) ([]entities.ScheduledAlert, error)
		PendingOneShots(ctx context.Context, hour, minute, limit int) ([]entities.ScheduledAlert, error)
		DueDaily(ctx context.Context, day string, hour, minute, limit int) ([]entities.ScheduledAlert, error)
		MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
		MarkFired(ctx context.Context, id uuid.UUID, day string) error
	}

	alertRepository struct {
		db          *gorm.DB
		permissions PermissionSource
		deferHour   int
		deferMinute int
		now         func() time.Time
	}
)

// NewAlertRepository stores alerts in db. One-shot alerts that should not
// fire immediately are held until deferHour:deferMinute. A nil now uses
// time.Now.
func NewAlertRepository(db *gorm.DB, permissions PermissionSource, deferHour, deferMinute int, now func() time.Time) AlertRepository {
	if now == nil {
		now = time.Now
	}
	return &alertRepository{
		db:          db,
		permissions: permissions,
		deferHour:   deferHour,
		deferMinute: deferMinute,
		now:         now,
	}
}

func (r *alertRepository) RequestPermission(ctx context.Context, deviceID string) (bool, error) {
	return r.permissions.PermissionGranted(ctx, deviceID)
}

func (r *alertRepository) CancelAll(ctx context.Context, deviceID string) error {
	return r.db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&entities.ScheduledAlert{}).Error
}

func (r *alertRepository) ScheduleOneShot(ctx context.Context, deviceID string, content domain.AlertContent, fireImmediately bool) error {
	alert, err := newAlert(deviceID, content)
	if err != nil {
		return err
	}
	if fireImmediately {
		alert.Trigger = string(domain.TriggerImmediate)
	} else {
		alert.Trigger = string(domain.TriggerOnce)
		alert.Hour = r.deferHour
		alert.Minute = r.deferMinute
	}
	return r.create(ctx, alert)
}

func (r *alertRepository) ScheduleDailyRecurring(ctx context.Context, deviceID string, content domain.AlertContent, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return domain.ErrInvalidDigestSchedule
	}
	alert, err := newAlert(deviceID, content)
	if err != nil {
		return err
	}
	alert.Trigger = string(domain.TriggerDaily)
	alert.Hour = hour
	alert.Minute = minute

	// A daily alert created at or after its time of day starts tomorrow.
	now := r.now()
	if now.Hour() > hour || (now.Hour() == hour && now.Minute() >= minute) {
		alert.LastFiredOn = now.Format(domain.DateLayout)
	}
	return r.create(ctx, alert)
}

// create re-checks the permission so a revocation racing a recompute stops
// the remaining writes.
func (r *alertRepository) create(ctx context.Context, alert *entities.ScheduledAlert) error {
	granted, err := r.permissions.PermissionGranted(ctx, alert.DeviceID)
	if err != nil {
		return err
	}
	if !granted {
		return domain.ErrPermissionDenied
	}
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) ListScheduled(ctx context.Context, deviceID string) ([]entities.ScheduledAlert, error) {
	var alerts []entities.ScheduledAlert
	if err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at asc").
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// PendingOneShots returns undelivered immediate alerts plus deferred ones
// whose time of day has been reached.
func (r *alertRepository) PendingOneShots(ctx context.Context, hour, minute, limit int) ([]entities.ScheduledAlert, error) {
	var alerts []entities.ScheduledAlert
	if err := r.db.WithContext(ctx).
		Where("delivered_at IS NULL").
		Where(r.db.Where("\"trigger\" = ?", domain.TriggerImmediate).
			Or("\"trigger\" = ? AND (hour < ? OR (hour = ? AND minute <= ?))", domain.TriggerOnce, hour, hour, minute)).
		Order("created_at asc").
		Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) DueDaily(ctx context.Context, day string, hour, minute, limit int) ([]entities.ScheduledAlert, error) {
	var alerts []entities.ScheduledAlert
	if err := r.db.WithContext(ctx).
		Where("\"trigger\" = ? AND last_fired_on <> ?", domain.TriggerDaily, day).
		Where("hour < ? OR (hour = ? AND minute <= ?)", hour, hour, minute).
		Order("created_at asc").
		Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entities.ScheduledAlert{}).
		Where("id = ?", id).
		Update("delivered_at", at).Error
}

func (r *alertRepository) MarkFired(ctx context.Context, id uuid.UUID, day string) error {
	return r.db.WithContext(ctx).Model(&entities.ScheduledAlert{}).
		Where("id = ?", id).
		Update("last_fired_on", day).Error
}

func newAlert(deviceID string, content domain.AlertContent) (*entities.ScheduledAlert, error) {
	alert := &entities.ScheduledAlert{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Kind:      string(content.Kind),
		DayOffset: content.DayOffset,
		Title:     content.Title,
		Body:      content.Body,
	}

	if content.ItemID != "" {
		itemID, err := uuid.Parse(content.ItemID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		alert.ItemID = &itemID
	}

	if len(content.Data) > 0 {
		data, err := json.Marshal(content.Data)
		if err != nil {
			return nil, fmt.Errorf("encode alert data: %w", err)
		}
		alert.Data = datatypes.JSON(data)
	}

	return alert, nil
}

func toScheduledResponse(alert entities.ScheduledAlert) domain.ScheduledAlertResponse {
	response := domain.ScheduledAlertResponse{
		ID:          alert.ID.String(),
		Kind:        domain.AlertKind(alert.Kind),
		DayOffset:   alert.DayOffset,
		Title:       alert.Title,
		Body:        alert.Body,
		Trigger:     domain.AlertTrigger(alert.Trigger),
		Hour:        alert.Hour,
		Minute:      alert.Minute,
		DeliveredAt: alert.DeliveredAt,
	}
	if alert.ItemID != nil {
		response.ItemID = alert.ItemID.String()
	}
	return response
}
