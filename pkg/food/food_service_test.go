package food

import (
	"context"
	"sync"
	"testing"
	"time"

	"freshkeep-backend/domain"
	"freshkeep-backend/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	FoodRepository
	items map[string]*entities.FoodItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: make(map[string]*entities.FoodItem)}
}

func (r *memoryRepository) AddFoodItem(_ context.Context, item *entities.FoodItem) error {
	copied := *item
	r.items[item.ID.String()] = &copied
	return nil
}

func (r *memoryRepository) GetFoodItemByID(_ context.Context, id string) (*entities.FoodItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrFoodItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memoryRepository) UpdateFoodItem(_ context.Context, item *entities.FoodItem) error {
	copied := *item
	r.items[item.ID.String()] = &copied
	return nil
}

func (r *memoryRepository) DeleteFoodItem(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *memoryRepository) GetDashboardStats(_ context.Context, deviceID string, today time.Time) (domain.DashboardStatsResponse, error) {
	var items []entities.FoodItem
	for _, item := range r.items {
		if item.DeviceID == deviceID {
			items = append(items, *item)
		}
	}
	return summarize(items, today), nil
}

type recordingTrigger struct {
	mu      sync.Mutex
	devices []string
}

func (t *recordingTrigger) Trigger(deviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.devices = append(t.devices, deviceID)
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
}

func newTestService() (FoodService, *memoryRepository, *recordingTrigger) {
	repo := newMemoryRepository()
	trigger := &recordingTrigger{}
	return NewFoodService(repo, trigger, fixedNow), repo, trigger
}

func TestAddFoodItemDerivesStatusAndTriggersReplan(t *testing.T) {
	svc, repo, trigger := newTestService()

	res, err := svc.AddFoodItem(context.Background(), domain.AddFoodItemRequest{
		Name:           "Yogurt",
		Quantity:       2,
		Unit:           "units",
		ExpirationDate: "2026-03-11",
	}, "device-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusExpiring, res.Status)
	assert.Equal(t, 1, res.DaysUntilExpiration)
	assert.Equal(t, "other", res.Category)
	assert.Equal(t, "fridge", res.StorageLocation)
	assert.Equal(t, "PEN", res.Currency)
	assert.Equal(t, "2026-03-10", res.PurchaseDate)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{"device-1"}, trigger.devices)
}

func TestAddFoodItemRejectsBadInput(t *testing.T) {
	svc, _, trigger := newTestService()
	ctx := context.Background()

	_, err := svc.AddFoodItem(ctx, domain.AddFoodItemRequest{Name: "Milk", Quantity: 1, ExpirationDate: "2026-02-30"}, "d")
	assert.ErrorIs(t, err, domain.ErrInvalidExpiryDate)

	_, err = svc.AddFoodItem(ctx, domain.AddFoodItemRequest{Name: "Milk", Quantity: 0, ExpirationDate: "2026-03-12"}, "d")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.Empty(t, trigger.devices)
}

func TestOtherDevicesCannotTouchItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	res, err := svc.AddFoodItem(ctx, domain.AddFoodItemRequest{Name: "Cheese", Quantity: 1, ExpirationDate: "2026-03-20"}, "owner")
	require.NoError(t, err)

	_, err = svc.GetFoodItemByID(ctx, res.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrUnauthorizedAccess)

	err = svc.DeleteFoodItem(ctx, res.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrUnauthorizedAccess)

	_, err = svc.GetFoodItemByID(ctx, "not-a-uuid", "owner")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestUpdateFoodItemAppliesOnlyProvidedFields(t *testing.T) {
	svc, _, trigger := newTestService()
	ctx := context.Background()

	created, err := svc.AddFoodItem(ctx, domain.AddFoodItemRequest{
		Name: "Bread", Quantity: 1, Unit: "loaf", ExpirationDate: "2026-03-20", Notes: "whole grain",
	}, "d")
	require.NoError(t, err)

	empty := ""
	updated, err := svc.UpdateFoodItem(ctx, created.ID, domain.UpdateFoodItemRequest{
		ExpirationDate: "2026-03-09",
		Notes:          &empty,
	}, "d")
	require.NoError(t, err)

	assert.Equal(t, "Bread", updated.Name)
	assert.Equal(t, "loaf", updated.Unit)
	assert.Equal(t, domain.StatusExpired, updated.Status)
	assert.Equal(t, -1, updated.DaysUntilExpiration)
	assert.Empty(t, updated.Notes)
	assert.Len(t, trigger.devices, 2)
}

func TestDispositionChangesOnlyFromActive(t *testing.T) {
	svc, _, trigger := newTestService()
	ctx := context.Background()

	created, err := svc.AddFoodItem(ctx, domain.AddFoodItemRequest{Name: "Apple", Quantity: 3, ExpirationDate: "2026-03-15"}, "d")
	require.NoError(t, err)

	consumed, err := svc.ConsumeFoodItem(ctx, created.ID, "d")
	require.NoError(t, err)
	assert.Equal(t, string(domain.DispositionConsumed), consumed.Disposition)

	_, err = svc.DiscardFoodItem(ctx, created.ID, "d")
	assert.ErrorIs(t, err, domain.ErrItemNotActive)

	assert.Len(t, trigger.devices, 2)
}

func TestDashboardStats(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	price := 4.5

	add := func(name, date string) string {
		res, err := svc.AddFoodItem(ctx, domain.AddFoodItemRequest{
			Name: name, Quantity: 1, ExpirationDate: date, Price: &price,
		}, "d")
		require.NoError(t, err)
		return res.ID
	}

	add("fresh", "2026-03-30")
	add("expiring", "2026-03-13")
	add("expired", "2026-03-01")
	eaten := add("eaten", "2026-03-12")
	binned := add("binned", "2026-03-05")

	_, err := svc.ConsumeFoodItem(ctx, eaten, "d")
	require.NoError(t, err)
	_, err = svc.DiscardFoodItem(ctx, binned, "d")
	require.NoError(t, err)

	stats, err := svc.GetDashboardStats(ctx, "d")
	require.NoError(t, err)

	assert.Equal(t, domain.DashboardStatsResponse{
		ActiveItems:     3,
		FreshItems:      1,
		ExpiringItems:   1,
		ExpiredItems:    1,
		ConsumedItems:   1,
		ThrownAwayItems: 1,
		WastedValue:     4.5,
		SavedValue:      4.5,
	}, stats)
}
