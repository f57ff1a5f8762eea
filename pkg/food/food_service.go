package food

import (
	"context"
	"errors"
	"freshkeep-backend/domain"
	"freshkeep-backend/entities"
	"freshkeep-backend/pkg/expiry"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const defaultCurrency = "PEN"

type (
	FoodService interface {
		AddFoodItem(ctx context.Context, req domain.AddFoodItemRequest, deviceID string) (domain.FoodItemResponse, error)
		UpdateFoodItem(ctx context.Context, id string, req domain.UpdateFoodItemRequest, deviceID string) (domain.FoodItemResponse, error)
		DeleteFoodItem(ctx context.Context, id string, deviceID string) error
		GetFoodItems(ctx context.Context, deviceID string, status, disposition string, page, limit int) ([]domain.FoodItemResponse, int64, error)
		GetFoodItemByID(ctx context.Context, id string, deviceID string) (domain.FoodItemResponse, error)
		ConsumeFoodItem(ctx context.Context, id string, deviceID string) (domain.FoodItemResponse, error)
		DiscardFoodItem(ctx context.Context, id string, deviceID string) (domain.FoodItemResponse, error)
		GetDashboardStats(ctx context.Context, deviceID string) (domain.DashboardStatsResponse, error)
	}

	// PlanTrigger is told about every inventory change so the device's
	// alert schedule can be rebuilt.
	PlanTrigger interface {
		Trigger(deviceID string)
	}

	foodService struct {
		foodRepository FoodRepository
		planner        PlanTrigger
		now            func() time.Time
	}
)

func NewFoodService(foodRepository FoodRepository, planner PlanTrigger, now func() time.Time) FoodService {
	if now == nil {
		now = time.Now
	}
	return &foodService{
		foodRepository: foodRepository,
		planner:        planner,
		now:            now,
	}
}

func (s *foodService) AddFoodItem(ctx context.Context, req domain.AddFoodItemRequest, deviceID string) (domain.FoodItemResponse, error) {
	expirationDate, err := expiry.ParseDate(req.ExpirationDate)
	if err != nil {
		return domain.FoodItemResponse{}, err
	}

	if req.Quantity <= 0 {
		return domain.FoodItemResponse{}, domain.ErrInvalidQuantity
	}

	purchaseDate := expiry.Midnight(s.now())
	if req.PurchaseDate != "" {
		purchaseDate, err = expiry.ParseDate(req.PurchaseDate)
		if err != nil {
			return domain.FoodItemResponse{}, err
		}
	}

	foodItem := &entities.FoodItem{
		ID:              uuid.New(),
		DeviceID:        deviceID,
		Name:            req.Name,
		Category:        orDefault(req.Category, "other"),
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		PurchaseDate:    purchaseDate,
		ExpirationDate:  expirationDate,
		StorageLocation: orDefault(req.StorageLocation, "fridge"),
		Disposition:     string(domain.DispositionActive),
		Price:           req.Price,
		Currency:        orDefault(req.Currency, defaultCurrency),
		Notes:           req.Notes,
	}

	if err := s.foodRepository.AddFoodItem(ctx, foodItem); err != nil {
		return domain.FoodItemResponse{}, err
	}

	s.replan(deviceID)
	return s.toResponse(foodItem), nil
}

func (s *foodService) UpdateFoodItem(ctx context.Context, id string, req domain.UpdateFoodItemRequest, deviceID string) (domain.FoodItemResponse, error) {
	foodItem, err := s.ownedItem(ctx, id, deviceID)
	if err != nil {
		return domain.FoodItemResponse{}, err
	}

	if req.Name != "" {
		foodItem.Name = req.Name
	}

	if req.Category != "" {
		foodItem.Category = req.Category
	}

	if req.Quantity > 0 {
		foodItem.Quantity = req.Quantity
	}

	if req.Unit != "" {
		foodItem.Unit = req.Unit
	}

	if req.ExpirationDate != "" {
		expirationDate, err := expiry.ParseDate(req.ExpirationDate)
		if err != nil {
			return domain.FoodItemResponse{}, err
		}
		foodItem.ExpirationDate = expirationDate
	}

	if req.StorageLocation != "" {
		foodItem.StorageLocation = req.StorageLocation
	}

	if req.Price != nil {
		foodItem.Price = req.Price
	}

	if req.Notes != nil {
		foodItem.Notes = *req.Notes
	}

	if err := s.foodRepository.UpdateFoodItem(ctx, foodItem); err != nil {
		return domain.FoodItemResponse{}, err
	}

	s.replan(deviceID)
	return s.toResponse(foodItem), nil
}

func (s *foodService) DeleteFoodItem(ctx context.Context, id string, deviceID string) error {
	if _, err := s.ownedItem(ctx, id, deviceID); err != nil {
		return err
	}

	if err := s.foodRepository.DeleteFoodItem(ctx, id); err != nil {
		return err
	}

	s.replan(deviceID)
	return nil
}

func (s *foodService) GetFoodItems(ctx context.Context, deviceID string, status, disposition string, page, limit int) ([]domain.FoodItemResponse, int64, error) {
	foodItems, count, err := s.foodRepository.GetFoodItems(ctx, deviceID, ListFilter{
		Status:      status,
		Disposition: disposition,
		Today:       s.now(),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.FoodItemResponse, 0, len(foodItems))
	for _, item := range foodItems {
		response = append(response, s.toResponse(item))
	}

	return response, count, nil
}

func (s *foodService) GetFoodItemByID(ctx context.Context, id string, deviceID string) (domain.FoodItemResponse, error) {
	foodItem, err := s.ownedItem(ctx, id, deviceID)
	if err != nil {
		return domain.FoodItemResponse{}, err
	}
	return s.toResponse(foodItem), nil
}

func (s *foodService) ConsumeFoodItem(ctx context.Context, id string, deviceID string) (domain.FoodItemResponse, error) {
	return s.changeDisposition(ctx, id, deviceID, domain.DispositionConsumed)
}

func (s *foodService) DiscardFoodItem(ctx context.Context, id string, deviceID string) (domain.FoodItemResponse, error) {
	return s.changeDisposition(ctx, id, deviceID, domain.DispositionThrownAway)
}

func (s *foodService) GetDashboardStats(ctx context.Context, deviceID string) (domain.DashboardStatsResponse, error) {
	return s.foodRepository.GetDashboardStats(ctx, deviceID, s.now())
}

func (s *foodService) changeDisposition(ctx context.Context, id, deviceID string, to domain.Disposition) (domain.FoodItemResponse, error) {
	foodItem, err := s.ownedItem(ctx, id, deviceID)
	if err != nil {
		return domain.FoodItemResponse{}, err
	}

	if foodItem.Disposition != string(domain.DispositionActive) {
		return domain.FoodItemResponse{}, domain.ErrItemNotActive
	}

	foodItem.Disposition = string(to)
	if err := s.foodRepository.UpdateFoodItem(ctx, foodItem); err != nil {
		return domain.FoodItemResponse{}, err
	}

	s.replan(deviceID)
	return s.toResponse(foodItem), nil
}

func (s *foodService) ownedItem(ctx context.Context, id, deviceID string) (*entities.FoodItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}

	foodItem, err := s.foodRepository.GetFoodItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFoodItemNotFound) {
			return nil, domain.ErrFoodItemNotFound
		}
		return nil, err
	}

	if foodItem.DeviceID != deviceID {
		return nil, domain.ErrUnauthorizedAccess
	}

	return foodItem, nil
}

func (s *foodService) replan(deviceID string) {
	if s.planner == nil {
		log.Warnw("no planner configured, alert schedule not refreshed", "device_id", deviceID)
		return
	}
	s.planner.Trigger(deviceID)
}

func (s *foodService) toResponse(item *entities.FoodItem) domain.FoodItemResponse {
	status, days := expiry.StatusOf(item.ExpirationDate, s.now())

	response := domain.FoodItemResponse{
		ID:                  item.ID.String(),
		Name:                item.Name,
		Category:            item.Category,
		Quantity:            item.Quantity,
		Unit:                item.Unit,
		ExpirationDate:      expiry.FormatDate(item.ExpirationDate),
		StorageLocation:     item.StorageLocation,
		Disposition:         item.Disposition,
		Status:              status,
		DaysUntilExpiration: days,
		Price:               item.Price,
		Currency:            item.Currency,
		Notes:               item.Notes,
		CreatedAt:           item.CreatedAt,
	}
	if !item.PurchaseDate.IsZero() {
		response.PurchaseDate = expiry.FormatDate(item.PurchaseDate)
	}
	return response
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
