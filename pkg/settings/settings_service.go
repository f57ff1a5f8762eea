package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freshkeep-backend/domain"
	"freshkeep-backend/entities"
	"sort"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"
)

const defaultCurrency = "PEN"

type (
	SettingsService interface {
		GetPreferences(ctx context.Context, deviceID string) (domain.NotificationPreferences, error)
		GetSettings(ctx context.Context, deviceID string) (domain.PreferencesResponse, error)
		UpdatePreferences(ctx context.Context, deviceID string, req domain.UpdatePreferencesRequest) (domain.PreferencesResponse, error)
		SetPermission(ctx context.Context, deviceID string, granted bool) (domain.PreferencesResponse, error)
		PermissionGranted(ctx context.Context, deviceID string) (bool, error)
	}

	PlanTrigger interface {
		Trigger(deviceID string)
	}

	settingsService struct {
		settingsRepository SettingsRepository
		planner            PlanTrigger
	}
)

func NewSettingsService(settingsRepository SettingsRepository, planner PlanTrigger) SettingsService {
	return &settingsService{
		settingsRepository: settingsRepository,
		planner:            planner,
	}
}

// GetPreferences returns the planner's view of a device's settings. Devices
// that never saved anything get the defaults.
func (s *settingsService) GetPreferences(ctx context.Context, deviceID string) (domain.NotificationPreferences, error) {
	preference, err := s.load(ctx, deviceID)
	if err != nil {
		return domain.NotificationPreferences{}, err
	}

	days, err := decodeDays(preference.NotifyDaysBefore)
	if err != nil {
		return domain.NotificationPreferences{}, err
	}

	return domain.NotificationPreferences{
		NotifyDaysBefore: days,
		DailySummary:     preference.DailySummary,
	}, nil
}

func (s *settingsService) GetSettings(ctx context.Context, deviceID string) (domain.PreferencesResponse, error) {
	preference, err := s.load(ctx, deviceID)
	if err != nil {
		return domain.PreferencesResponse{}, err
	}
	return toResponse(preference)
}

func (s *settingsService) UpdatePreferences(ctx context.Context, deviceID string, req domain.UpdatePreferencesRequest) (domain.PreferencesResponse, error) {
	preference, err := s.load(ctx, deviceID)
	if err != nil {
		return domain.PreferencesResponse{}, err
	}

	if req.NotifyDaysBefore != nil {
		days, err := NormalizeDays(req.NotifyDaysBefore)
		if err != nil {
			return domain.PreferencesResponse{}, err
		}
		encoded, err := json.Marshal(days)
		if err != nil {
			return domain.PreferencesResponse{}, err
		}
		preference.NotifyDaysBefore = datatypes.JSON(encoded)
	}

	if req.DailySummary != nil {
		preference.DailySummary = *req.DailySummary
	}

	if req.Email != "" {
		preference.Email = req.Email
	}

	if req.Currency != "" {
		preference.Currency = req.Currency
	}

	if err := s.settingsRepository.SavePreference(ctx, preference); err != nil {
		return domain.PreferencesResponse{}, fmt.Errorf("save preferences: %w", err)
	}

	s.replan(deviceID)
	return toResponse(preference)
}

func (s *settingsService) SetPermission(ctx context.Context, deviceID string, granted bool) (domain.PreferencesResponse, error) {
	preference, err := s.load(ctx, deviceID)
	if err != nil {
		return domain.PreferencesResponse{}, err
	}

	preference.PermissionGranted = granted
	if err := s.settingsRepository.SavePreference(ctx, preference); err != nil {
		return domain.PreferencesResponse{}, fmt.Errorf("save permission: %w", err)
	}

	s.replan(deviceID)
	return toResponse(preference)
}

func (s *settingsService) PermissionGranted(ctx context.Context, deviceID string) (bool, error) {
	preference, err := s.load(ctx, deviceID)
	if err != nil {
		return false, err
	}
	return preference.PermissionGranted, nil
}

func (s *settingsService) load(ctx context.Context, deviceID string) (*entities.DevicePreference, error) {
	preference, err := s.settingsRepository.GetPreference(ctx, deviceID)
	if errors.Is(err, domain.ErrPreferencesNotFound) {
		return defaultPreference(deviceID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return preference, nil
}

func (s *settingsService) replan(deviceID string) {
	if s.planner == nil {
		log.Warnw("no planner configured, alert schedule not refreshed", "device_id", deviceID)
		return
	}
	s.planner.Trigger(deviceID)
}

// NormalizeDays removes duplicates and orders the offsets from furthest to
// nearest. Negative offsets are rejected.
func NormalizeDays(days []int) ([]int, error) {
	seen := make(map[int]struct{}, len(days))
	normalized := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 {
			return nil, domain.ErrInvalidNotifyDay
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		normalized = append(normalized, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(normalized)))
	return normalized, nil
}

func defaultPreference(deviceID string) *entities.DevicePreference {
	defaults := domain.DefaultNotificationPreferences()
	encoded, _ := json.Marshal(defaults.NotifyDaysBefore)
	return &entities.DevicePreference{
		DeviceID:         deviceID,
		NotifyDaysBefore: datatypes.JSON(encoded),
		DailySummary:     defaults.DailySummary,
		Currency:         defaultCurrency,
	}
}

func decodeDays(raw datatypes.JSON) ([]int, error) {
	if len(raw) == 0 {
		return domain.DefaultNotificationPreferences().NotifyDaysBefore, nil
	}
	var days []int
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("decode notify days: %w", err)
	}
	return days, nil
}

func toResponse(preference *entities.DevicePreference) (domain.PreferencesResponse, error) {
	days, err := decodeDays(preference.NotifyDaysBefore)
	if err != nil {
		return domain.PreferencesResponse{}, err
	}
	return domain.PreferencesResponse{
		NotifyDaysBefore:  days,
		DailySummary:      preference.DailySummary,
		PermissionGranted: preference.PermissionGranted,
		Email:             preference.Email,
		Currency:          preference.Currency,
	}, nil
}
