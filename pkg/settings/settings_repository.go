package settings

import (
	"context"
	"errors"
	"freshkeep-backend/domain"
	"freshkeep-backend/entities"

	"gorm.io/gorm"
)

type (
	SettingsRepository interface {
		GetPreference(ctx context.Context, deviceID string) (*entities.DevicePreference, error)
		SavePreference(ctx context.Context, preference *entities.DevicePreference) error
		ListDeviceIDs(ctx context.Context) ([]string, error)
	}

	settingsRepository struct {
		db *gorm.DB
	}
)

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetPreference(ctx context.Context, deviceID string) (*entities.DevicePreference, error) {
	var preference entities.DevicePreference
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&preference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPreferencesNotFound
		}
		return nil, err
	}
	return &preference, nil
}

// SavePreference inserts or replaces the row keyed by DeviceID.
func (r *settingsRepository) SavePreference(ctx context.Context, preference *entities.DevicePreference) error {
	return r.db.WithContext(ctx).Save(preference).Error
}

func (r *settingsRepository) ListDeviceIDs(ctx context.Context) ([]string, error) {
	var deviceIDs []string
	if err := r.db.WithContext(ctx).Model(&entities.DevicePreference{}).Pluck("device_id", &deviceIDs).Error; err != nil {
		return nil, err
	}
	return deviceIDs, nil
}
