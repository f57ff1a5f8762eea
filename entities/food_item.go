package entities

import (
	"github.com/google/uuid"
	"time"
)

type FoodItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DeviceID        string    `gorm:"index;not null" json:"device_id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Quantity        float64   `json:"quantity"`
	Unit            string    `json:"unit"`
	PurchaseDate    time.Time `gorm:"type:date" json:"purchase_date"`
	ExpirationDate  time.Time `gorm:"type:date;index" json:"expiration_date"`
	StorageLocation string    `json:"storage_location"`
	Disposition     string    `gorm:"index;default:active" json:"disposition"` // "active", "consumed", "thrown_away"
	Price           *float64  `json:"price,omitempty"`
	Currency        string    `json:"currency"`
	Notes           string    `gorm:"type:text" json:"notes"`

	Timestamp
}
