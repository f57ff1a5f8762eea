package food

import (
	"context"
	"errors"
	"freshkeep-backend/domain"
	"freshkeep-backend/entities"
	"freshkeep-backend/pkg/expiry"
	"time"

	"gorm.io/gorm"
)

type (
	FoodRepository interface {
		AddFoodItem(ctx context.Context, foodItem *entities.FoodItem) error
		GetFoodItemByID(ctx context.Context, id string) (*entities.FoodItem, error)
		UpdateFoodItem(ctx context.Context, foodItem *entities.FoodItem) error
		DeleteFoodItem(ctx context.Context, id string) error
		GetFoodItems(ctx context.Context, deviceID string, filter ListFilter) ([]*entities.FoodItem, int64, error)
		GetDashboardStats(ctx context.Context, deviceID string, today time.Time) (domain.DashboardStatsResponse, error)

		QueryExpiringWithin(ctx context.Context, deviceID string, days int, today time.Time) ([]entities.FoodItem, error)
		QueryExpired(ctx context.Context, deviceID string, today time.Time) ([]entities.FoodItem, error)
		ListDeviceIDs(ctx context.Context) ([]string, error)
	}

	// ListFilter narrows GetFoodItems. Status is resolved against Today since
	// it is never stored.
	ListFilter struct {
		Status      string
		Disposition string
		Today       time.Time
		Page        int
		Limit       int
	}

	foodRepository struct {
		db *gorm.DB
	}
)

func NewFoodRepository(db *gorm.DB) FoodRepository {
	return &foodRepository{db: db}
}

func (r *foodRepository) AddFoodItem(ctx context.Context, foodItem *entities.FoodItem) error {
	return r.db.WithContext(ctx).Create(foodItem).Error
}

func (r *foodRepository) GetFoodItemByID(ctx context.Context, id string) (*entities.FoodItem, error) {
	var foodItem entities.FoodItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&foodItem).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFoodItemNotFound
		}
		return nil, err
	}
	return &foodItem, nil
}

func (r *foodRepository) UpdateFoodItem(ctx context.Context, foodItem *entities.FoodItem) error {
	return r.db.WithContext(ctx).Save(foodItem).Error
}

func (r *foodRepository) DeleteFoodItem(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.FoodItem{}).Error
}

func (r *foodRepository) GetFoodItems(ctx context.Context, deviceID string, filter ListFilter) ([]*entities.FoodItem, int64, error) {
	var foodItems []*entities.FoodItem
	var count int64

	offset := (filter.Page - 1) * filter.Limit

	query := r.db.WithContext(ctx).Model(&entities.FoodItem{}).Where("device_id = ?", deviceID)

	disposition := filter.Disposition
	if disposition == "" {
		disposition = string(domain.DispositionActive)
	}
	if disposition != "all" {
		query = query.Where("disposition = ?", disposition)
	}

	today := expiry.FormatDate(filter.Today)
	firstFresh := dayAfter(filter.Today, expiry.DefaultExpiringThreshold)
	switch domain.FoodStatus(filter.Status) {
	case domain.StatusExpired:
		query = query.Where("expiration_date < ?", today)
	case domain.StatusExpiring:
		query = query.Where("expiration_date >= ? AND expiration_date < ?", today, firstFresh)
	case domain.StatusFresh:
		query = query.Where("expiration_date >= ?", firstFresh)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(filter.Limit).Order("expiration_date asc").Find(&foodItems).Error; err != nil {
		return nil, 0, err
	}

	return foodItems, count, nil
}

func (r *foodRepository) QueryExpiringWithin(ctx context.Context, deviceID string, days int, today time.Time) ([]entities.FoodItem, error) {
	var foodItems []entities.FoodItem

	if err := r.db.WithContext(ctx).
		Where("device_id = ? AND disposition = ? AND expiration_date >= ? AND expiration_date < ?",
			deviceID, domain.DispositionActive,
			expiry.FormatDate(today), dayAfter(today, days)).
		Order("expiration_date asc").
		Find(&foodItems).Error; err != nil {
		return nil, err
	}

	return foodItems, nil
}

func (r *foodRepository) QueryExpired(ctx context.Context, deviceID string, today time.Time) ([]entities.FoodItem, error) {
	var foodItems []entities.FoodItem

	if err := r.db.WithContext(ctx).
		Where("device_id = ? AND disposition = ? AND expiration_date < ?",
			deviceID, domain.DispositionActive, expiry.FormatDate(today)).
		Order("expiration_date asc").
		Find(&foodItems).Error; err != nil {
		return nil, err
	}

	return foodItems, nil
}

// dayAfter is the exclusive upper bound of the range today..today+days. Date
// ranges stay half-open since sqlite stores dates with a time suffix.
func dayAfter(today time.Time, days int) string {
	return expiry.FormatDate(today.AddDate(0, 0, days+1))
}

// ListDeviceIDs returns every device that still has active inventory.
func (r *foodRepository) ListDeviceIDs(ctx context.Context) ([]string, error) {
	var deviceIDs []string
	if err := r.db.WithContext(ctx).Model(&entities.FoodItem{}).
		Where("disposition = ?", domain.DispositionActive).
		Distinct().
		Pluck("device_id", &deviceIDs).Error; err != nil {
		return nil, err
	}
	return deviceIDs, nil
}

func (r *foodRepository) GetDashboardStats(ctx context.Context, deviceID string, today time.Time) (domain.DashboardStatsResponse, error) {
	var items []entities.FoodItem

	if err := r.db.WithContext(ctx).
		Select("disposition", "expiration_date", "price", "quantity").
		Where("device_id = ?", deviceID).
		Find(&items).Error; err != nil {
		return domain.DashboardStatsResponse{}, err
	}

	return summarize(items, today), nil
}

// summarize counts items per disposition and, for active items, per derived
// status. Items without a price add nothing to the value totals.
func summarize(items []entities.FoodItem, today time.Time) domain.DashboardStatsResponse {
	var stats domain.DashboardStatsResponse

	for _, item := range items {
		value := 0.0
		if item.Price != nil {
			value = *item.Price
		}

		switch domain.Disposition(item.Disposition) {
		case domain.DispositionConsumed:
			stats.ConsumedItems++
			stats.SavedValue += value
		case domain.DispositionThrownAway:
			stats.ThrownAwayItems++
			stats.WastedValue += value
		default:
			stats.ActiveItems++
			status, _ := expiry.StatusOf(item.ExpirationDate, today)
			switch status {
			case domain.StatusExpired:
				stats.ExpiredItems++
			case domain.StatusExpiring:
				stats.ExpiringItems++
			default:
				stats.FreshItems++
			}
		}
	}

	return stats
}
