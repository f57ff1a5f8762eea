package entities

import (
	"time"

	"gorm.io/datatypes"
)

// DevicePreference holds the notification settings of one device. A device
// without a row uses the defaults from domain.DefaultNotificationPreferences.
type DevicePreference struct {
	DeviceID          string         `gorm:"primaryKey" json:"device_id"`
	NotifyDaysBefore  datatypes.JSON `gorm:"type:jsonb" json:"notify_days_before"`
	DailySummary      bool           `json:"daily_summary"`
	PermissionGranted bool           `json:"permission_granted"`
	Email             string         `json:"email,omitempty"`
	Currency          string         `json:"currency"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (DevicePreference) TableName() string {
	return "device_preferences"
}
