package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScheduledAlert struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	DeviceID    string         `gorm:"index;not null" json:"device_id"`
	Kind        string         `gorm:"size:32;not null" json:"kind"` // "expired_now", "expires_on_day", "daily_digest", "test"
	DayOffset   int            `json:"day_offset"`
	ItemID      *uuid.UUID     `gorm:"type:uuid" json:"item_id,omitempty"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Data        datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	Trigger     string         `gorm:"size:16;not null" json:"trigger"` // "immediate", "once", "daily"
	Hour        int            `json:"hour"`
	Minute      int            `json:"minute"`
	DeliveredAt *time.Time     `gorm:"index" json:"delivered_at,omitempty"`
	LastFiredOn string         `gorm:"size:10" json:"last_fired_on,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (ScheduledAlert) TableName() string {
	return "scheduled_alerts"
}
