package domain

import (
	"errors"
	"time"
)

type (
	AlertKind    string
	AlertTrigger string
)

const (
	AlertExpiredNow   AlertKind = "expired_now"
	AlertExpiresOnDay AlertKind = "expires_on_day"
	AlertDailyDigest  AlertKind = "daily_digest"
	AlertTest         AlertKind = "test"

	TriggerImmediate AlertTrigger = "immediate"
	TriggerDaily     AlertTrigger = "daily"
	TriggerOnce      AlertTrigger = "once"

	DefaultLookaheadDays = 7
	DefaultDigestHour    = 9
	DefaultDigestMinute  = 0
)

var (
	MessageSuccessGetPreferences    = "notification preferences retrieved successfully"
	MessageSuccessUpdatePreferences = "notification preferences updated successfully"
	MessageSuccessSetPermission     = "notification permission updated successfully"
	MessageSuccessRecompute         = "notification schedule recomputed successfully"
	MessageSuccessGetScheduled      = "scheduled notifications retrieved successfully"
	MessageSuccessSendTest          = "test notification scheduled"

	MessageFailedGetPreferences    = "failed to retrieve notification preferences"
	MessageFailedUpdatePreferences = "failed to update notification preferences"
	MessageFailedSetPermission     = "failed to update notification permission"
	MessageFailedRecompute         = "failed to recompute notification schedule"
	MessageFailedGetScheduled      = "failed to retrieve scheduled notifications"
	MessageFailedSendTest          = "failed to schedule test notification"

	ErrPermissionDenied      = errors.New("notification permission not granted")
	ErrPreferencesNotFound   = errors.New("device preferences not found")
	ErrInvalidNotifyDay      = errors.New("notify days must be non-negative")
	ErrInvalidDigestSchedule = errors.New("invalid digest time")
)

type (
	NotificationPreferences struct {
		NotifyDaysBefore []int `json:"notify_days_before"`
		DailySummary     bool  `json:"daily_summary"`
	}

	UpdatePreferencesRequest struct {
		NotifyDaysBefore []int  `json:"notify_days_before" validate:"omitempty,max=31,dive,min=0,max=365"`
		DailySummary     *bool  `json:"daily_summary"`
		Email            string `json:"email" validate:"omitempty,email"`
		Currency         string `json:"currency" validate:"omitempty,len=3"`
	}

	PreferencesResponse struct {
		NotifyDaysBefore  []int  `json:"notify_days_before"`
		DailySummary      bool   `json:"daily_summary"`
		PermissionGranted bool   `json:"permission_granted"`
		Email             string `json:"email,omitempty"`
		Currency          string `json:"currency"`
	}

	SetPermissionRequest struct {
		Granted *bool `json:"granted" validate:"required"`
	}

	AlertContent struct {
		Kind      AlertKind         `json:"kind"`
		DayOffset int               `json:"day_offset"`
		ItemID    string            `json:"item_id,omitempty"`
		Title     string            `json:"title"`
		Body      string            `json:"body"`
		Data      map[string]string `json:"data,omitempty"`
	}

	PlannedAlert struct {
		AlertContent
		Trigger AlertTrigger `json:"trigger"`
		Hour    int          `json:"hour,omitempty"`
		Minute  int          `json:"minute,omitempty"`
	}

	NotificationPlan struct {
		DeviceID          string         `json:"device_id"`
		PermissionGranted bool           `json:"permission_granted"`
		ExpiredCount      int            `json:"expired_count"`
		ExpiringCount     int            `json:"expiring_count"`
		Alerts            []PlannedAlert `json:"alerts"`
		ComputedAt        time.Time      `json:"computed_at"`
	}

	ScheduledAlertResponse struct {
		ID          string       `json:"id"`
		Kind        AlertKind    `json:"kind"`
		DayOffset   int          `json:"day_offset"`
		ItemID      string       `json:"item_id,omitempty"`
		Title       string       `json:"title"`
		Body        string       `json:"body"`
		Trigger     AlertTrigger `json:"trigger"`
		Hour        int          `json:"hour,omitempty"`
		Minute      int          `json:"minute,omitempty"`
		DeliveredAt *time.Time   `json:"delivered_at,omitempty"`
	}
)

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		NotifyDaysBefore: []int{3, 1, 0},
		DailySummary:     true,
	}
}

// Notifies reports whether n is one of the configured day offsets.
func (p NotificationPreferences) Notifies(n int) bool {
	for _, d := range p.NotifyDaysBefore {
		if d == n {
			return true
		}
	}
	return false
}
