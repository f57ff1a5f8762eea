package food

import (
	"context"
	"testing"
	"time"

	"freshkeep-backend/domain"
	"freshkeep-backend/entities"
	"freshkeep-backend/internal/utils/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoToday = time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

type seedItem struct {
	name        string
	device      string
	offset      int
	disposition domain.Disposition
	price       float64
}

func newSeededRepository(t *testing.T, items ...seedItem) FoodRepository {
	repo := NewFoodRepository(testdb.Open(t))
	for _, s := range items {
		item := &entities.FoodItem{
			ID:             uuid.New(),
			DeviceID:       orDefault(s.device, "device-1"),
			Name:           s.name,
			Quantity:       1,
			PurchaseDate:   repoToday.AddDate(0, 0, -10),
			ExpirationDate: repoToday.AddDate(0, 0, s.offset),
			Disposition:    orDefault(string(s.disposition), string(domain.DispositionActive)),
		}
		if s.price > 0 {
			price := s.price
			item.Price = &price
		}
		require.NoError(t, repo.AddFoodItem(context.Background(), item))
	}
	return repo
}

func itemNames(items []entities.FoodItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func listedNames(items []*entities.FoodItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestQueryExpiringWithinIncludesBothEnds(t *testing.T) {
	repo := newSeededRepository(t,
		seedItem{name: "Pan", offset: -1},
		seedItem{name: "Leche", offset: 0},
		seedItem{name: "Queso", offset: 7},
		seedItem{name: "Arroz", offset: 8},
		seedItem{name: "Yogur", offset: 2, disposition: domain.DispositionConsumed},
		seedItem{name: "Huevos", offset: 1, device: "device-2"},
	)

	items, err := repo.QueryExpiringWithin(context.Background(), "device-1", 7, repoToday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Leche", "Queso"}, itemNames(items))

	items, err = repo.QueryExpiringWithin(context.Background(), "device-1", 0, repoToday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Leche"}, itemNames(items))
}

func TestQueryExpiredStopsBeforeToday(t *testing.T) {
	repo := newSeededRepository(t,
		seedItem{name: "Pan", offset: -1},
		seedItem{name: "Queso", offset: -5},
		seedItem{name: "Leche", offset: 0},
		seedItem{name: "Tomate", offset: -2, disposition: domain.DispositionThrownAway},
	)

	items, err := repo.QueryExpired(context.Background(), "device-1", repoToday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Queso", "Pan"}, itemNames(items))
}

func TestGetFoodItemsFiltersByStatus(t *testing.T) {
	repo := newSeededRepository(t,
		seedItem{name: "Pan", offset: -1},
		seedItem{name: "Leche", offset: 0},
		seedItem{name: "Queso", offset: 3},
		seedItem{name: "Arroz", offset: 4},
		seedItem{name: "Yogur", offset: 1, disposition: domain.DispositionConsumed},
	)
	ctx := context.Background()

	cases := map[domain.FoodStatus][]string{
		domain.StatusExpired:  {"Pan"},
		domain.StatusExpiring: {"Leche", "Queso"},
		domain.StatusFresh:    {"Arroz"},
		"":                    {"Pan", "Leche", "Queso", "Arroz"},
	}
	for status, want := range cases {
		items, total, err := repo.GetFoodItems(ctx, "device-1", ListFilter{Status: string(status), Today: repoToday, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, want, listedNames(items), "status %q", status)
		assert.EqualValues(t, len(want), total)
	}

	items, total, err := repo.GetFoodItems(ctx, "device-1", ListFilter{Disposition: "all", Today: repoToday, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, []string{"Yogur", "Queso"}, listedNames(items))
}

func TestDeletedItemsDisappear(t *testing.T) {
	repo := newSeededRepository(t, seedItem{name: "Pan", offset: 1})
	ctx := context.Background()

	items, _, err := repo.GetFoodItems(ctx, "device-1", ListFilter{Today: repoToday, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)

	found, err := repo.GetFoodItemByID(ctx, items[0].ID.String())
	require.NoError(t, err)
	assert.True(t, found.ExpirationDate.Equal(repoToday.AddDate(0, 0, 1)))

	require.NoError(t, repo.DeleteFoodItem(ctx, found.ID.String()))
	_, err = repo.GetFoodItemByID(ctx, found.ID.String())
	assert.ErrorIs(t, err, domain.ErrFoodItemNotFound)
}

func TestListDeviceIDsOnlyActiveInventory(t *testing.T) {
	repo := newSeededRepository(t,
		seedItem{name: "Pan", offset: 1},
		seedItem{name: "Leche", offset: 2},
		seedItem{name: "Queso", offset: 3, device: "device-2", disposition: domain.DispositionConsumed},
		seedItem{name: "Arroz", offset: 3, device: "device-3"},
	)

	ids, err := repo.ListDeviceIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"device-1", "device-3"}, ids)
}

func TestRepositoryDashboardStats(t *testing.T) {
	repo := newSeededRepository(t,
		seedItem{name: "Pan", offset: -1},
		seedItem{name: "Leche", offset: 2},
		seedItem{name: "Arroz", offset: 30},
		seedItem{name: "Queso", offset: 3, disposition: domain.DispositionConsumed, price: 4.5},
		seedItem{name: "Tomate", offset: -3, disposition: domain.DispositionThrownAway, price: 1.25},
	)

	stats, err := repo.GetDashboardStats(context.Background(), "device-1", repoToday)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ActiveItems)
	assert.Equal(t, 1, stats.ExpiredItems)
	assert.Equal(t, 1, stats.ExpiringItems)
	assert.Equal(t, 1, stats.FreshItems)
	assert.Equal(t, 1, stats.ConsumedItems)
	assert.Equal(t, 1, stats.ThrownAwayItems)
	assert.InDelta(t, 4.5, stats.SavedValue, 1e-9)
	assert.InDelta(t, 1.25, stats.WastedValue, 1e-9)
}
