package handlers

import (
	"errors"
	"freshkeep-backend/domain"
	"freshkeep-backend/internal/api/presenters"
	"freshkeep-backend/internal/middleware"
	"freshkeep-backend/pkg/food"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type (
	FoodHandler interface {
		AddFoodItem(c *fiber.Ctx) error
		UpdateFoodItem(c *fiber.Ctx) error
		DeleteFoodItem(c *fiber.Ctx) error
		GetFoodItems(c *fiber.Ctx) error
		GetFoodItemDetails(c *fiber.Ctx) error
		ConsumeFoodItem(c *fiber.Ctx) error
		DiscardFoodItem(c *fiber.Ctx) error
		GetDashboardStats(c *fiber.Ctx) error
	}

	foodHandler struct {
		foodService food.FoodService
		validator   *validator.Validate
	}
)

func NewFoodHandler(foodService food.FoodService, validator *validator.Validate) FoodHandler {
	return &foodHandler{
		foodService: foodService,
		validator:   validator,
	}
}

func (h *foodHandler) AddFoodItem(c *fiber.Ctx) error {
	deviceID := middleware.DeviceID(c)
	req := new(domain.AddFoodItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddFoodItem, err)
	}

	res, err := h.foodService.AddFoodItem(c.UserContext(), *req, deviceID)
	if err != nil {
		return foodError(c, domain.MessageFailedAddFoodItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddFoodItem)
}

func (h *foodHandler) UpdateFoodItem(c *fiber.Ctx) error {
	deviceID := middleware.DeviceID(c)
	itemID := c.Params("id")
	req := new(domain.UpdateFoodItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateFoodItem, err)
	}

	res, err := h.foodService.UpdateFoodItem(c.UserContext(), itemID, *req, deviceID)
	if err != nil {
		return foodError(c, domain.MessageFailedUpdateFoodItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateFoodItem)
}

func (h *foodHandler) DeleteFoodItem(c *fiber.Ctx) error {
	deviceID := middleware.DeviceID(c)
	itemID := c.Params("id")

	if err := h.foodService.DeleteFoodItem(c.UserContext(), itemID, deviceID); err != nil {
		return foodError(c, domain.MessageFailedDeleteFoodItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteFoodItem)
}

func (h *foodHandler) GetFoodItems(c *fiber.Ctx) error {
	deviceID := middleware.DeviceID(c)
	status := c.Query("status", "all")
	disposition := c.Query("disposition", string(domain.DispositionActive))

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	items, count, err := h.foodService.GetFoodItems(c.UserContext(), deviceID, status, disposition, page, limit)
	if err != nil {
		return foodError(c, domain.MessageFailedGetFoodItems, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"items": items,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetFoodItems)
}

func (h *foodHandler) GetFoodItemDetails(c *fiber.Ctx) error {
	deviceID := middleware.DeviceID(c)
	itemID := c.Params("id")

	item, err := h.foodService.GetFoodItemByID(c.UserContext(), itemID, deviceID)
	if err != nil {
		return foodError(c, domain.MessageFailedGetFoodItems, err)
	}

	return presenters.SuccessResponse(c, item, fiber.StatusOK, domain.MessageSuccessGetFoodItems)
}

func (h *foodHandler) ConsumeFoodItem(c *fiber.Ctx) error {
	item, err := h.foodService.ConsumeFoodItem(c.UserContext(), c.Params("id"), middleware.DeviceID(c))
	if err != nil {
		return foodError(c, domain.MessageFailedChangeDisposition, err)
	}

	return presenters.SuccessResponse(c, item, fiber.StatusOK, domain.MessageSuccessConsumeFoodItem)
}

func (h *foodHandler) DiscardFoodItem(c *fiber.Ctx) error {
	item, err := h.foodService.DiscardFoodItem(c.UserContext(), c.Params("id"), middleware.DeviceID(c))
	if err != nil {
		return foodError(c, domain.MessageFailedChangeDisposition, err)
	}

	return presenters.SuccessResponse(c, item, fiber.StatusOK, domain.MessageSuccessDiscardFoodItem)
}

func (h *foodHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.foodService.GetDashboardStats(c.UserContext(), middleware.DeviceID(c))
	if err != nil {
		return foodError(c, domain.MessageFailedGetDashboardStats, err)
	}

	return presenters.SuccessResponse(c, stats, fiber.StatusOK, domain.MessageSuccessGetDashboardStats)
}

func foodError(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, domain.ErrFoodItemNotFound):
		return presenters.ErrorResponse(c, fiber.StatusNotFound, message, domain.ErrFoodItemNotFound)
	case errors.Is(err, domain.ErrUnauthorizedAccess):
		return presenters.ErrorResponse(c, fiber.StatusForbidden, message, domain.ErrUnauthorizedAccess)
	case errors.Is(err, domain.ErrItemNotActive):
		return presenters.ErrorResponse(c, fiber.StatusConflict, message, domain.ErrItemNotActive)
	case errors.Is(err, domain.ErrParseUUID),
		errors.Is(err, domain.ErrInvalidExpiryDate),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidRequest):
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, message, err)
	default:
		log.Errorw("food request failed", "path", c.Path(), "error", err)
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, message, nil)
	}
}
