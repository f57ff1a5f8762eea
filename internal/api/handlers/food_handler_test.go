package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"freshkeep-backend/domain"
	"freshkeep-backend/pkg/food"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFoodService struct {
	food.FoodService

	err         error
	added       domain.AddFoodItemRequest
	status      string
	disposition string
	page, limit int
}

func (s *stubFoodService) AddFoodItem(_ context.Context, req domain.AddFoodItemRequest, deviceID string) (domain.FoodItemResponse, error) {
	s.added = req
	if s.err != nil {
		return domain.FoodItemResponse{}, s.err
	}
	return domain.FoodItemResponse{ID: "item-1", Name: req.Name, Status: domain.StatusExpiring}, nil
}

func (s *stubFoodService) GetFoodItems(_ context.Context, _ string, status, disposition string, page, limit int) ([]domain.FoodItemResponse, int64, error) {
	s.status, s.disposition, s.page, s.limit = status, disposition, page, limit
	return []domain.FoodItemResponse{{ID: "item-1"}}, 41, s.err
}

func (s *stubFoodService) GetFoodItemByID(context.Context, string, string) (domain.FoodItemResponse, error) {
	return domain.FoodItemResponse{}, s.err
}

func (s *stubFoodService) ConsumeFoodItem(_ context.Context, id, _ string) (domain.FoodItemResponse, error) {
	return domain.FoodItemResponse{ID: id, Disposition: string(domain.DispositionConsumed)}, s.err
}

func (s *stubFoodService) DeleteFoodItem(context.Context, string, string) error {
	return s.err
}

func newFoodApp(service *stubFoodService) *fiber.App {
	app, device := newDeviceApp()
	h := NewFoodHandler(service, validator.New())
	items := app.Group("/food-items", device)
	items.Post("/", h.AddFoodItem)
	items.Get("/", h.GetFoodItems)
	items.Get("/:id", h.GetFoodItemDetails)
	items.Delete("/:id", h.DeleteFoodItem)
	items.Post("/:id/consume", h.ConsumeFoodItem)
	return app
}

func TestAddFoodItem(t *testing.T) {
	service := &stubFoodService{}
	app := newFoodApp(service)

	resp, env := doJSON(t, app, "POST", "/food-items", map[string]interface{}{
		"name":            "Leche",
		"quantity":        1,
		"unit":            "l",
		"expiration_date": "2026-03-11",
	})

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Leche", service.added.Name)

	var item domain.FoodItemResponse
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, domain.StatusExpiring, item.Status)
}

func TestAddFoodItemValidation(t *testing.T) {
	service := &stubFoodService{}
	app := newFoodApp(service)

	resp, _ := doJSON(t, app, "POST", "/food-items", map[string]interface{}{
		"name":            "Leche",
		"quantity":        1,
		"unit":            "l",
		"expiration_date": "11/03/2026",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/food-items", map[string]interface{}{
		"name":             "Leche",
		"quantity":         1,
		"unit":             "l",
		"expiration_date":  "2026-03-11",
		"storage_location": "garage",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, service.added.Name)
}

func TestGetFoodItemsPagination(t *testing.T) {
	service := &stubFoodService{}
	app := newFoodApp(service)

	resp, env := doJSON(t, app, "GET", "/food-items?status=expiring&page=0&limit=20", nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "expiring", service.status)
	assert.Equal(t, string(domain.DispositionActive), service.disposition)
	assert.Equal(t, 1, service.page)
	assert.Equal(t, 20, service.limit)

	var data struct {
		Pagination struct {
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(41), data.Pagination.Total)
	assert.Equal(t, int64(3), data.Pagination.TotalPages)
}

func TestFoodErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrFoodItemNotFound, fiber.StatusNotFound},
		{domain.ErrUnauthorizedAccess, fiber.StatusForbidden},
		{domain.ErrParseUUID, fiber.StatusBadRequest},
		{domain.ErrItemNotActive, fiber.StatusConflict},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := newFoodApp(&stubFoodService{err: tc.err})

			resp, env := doJSON(t, app, "GET", "/food-items/abc", nil)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.False(t, env.Status)
		})
	}
}

func TestConsumeAndDeleteFoodItem(t *testing.T) {
	app := newFoodApp(&stubFoodService{})

	resp, env := doJSON(t, app, "POST", "/food-items/item-9/consume", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.MessageSuccessConsumeFoodItem, env.Message)

	resp, _ = doJSON(t, app, "DELETE", "/food-items/item-9", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	app = newFoodApp(&stubFoodService{err: domain.ErrItemNotActive})
	resp, _ = doJSON(t, app, "POST", "/food-items/item-9/consume", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
