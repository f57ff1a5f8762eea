package handlers

import (
	"errors"
	"freshkeep-backend/domain"
	"freshkeep-backend/internal/api/presenters"
	"freshkeep-backend/internal/middleware"
	"freshkeep-backend/pkg/assistant"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type (
	AssistantHandler interface {
		ScanLabel(c *fiber.Ctx) error
		GenerateRecipes(c *fiber.Ctx) error
	}

	assistantHandler struct {
		gateway   assistant.Gateway
		validator *validator.Validate
	}
)

func NewAssistantHandler(gateway assistant.Gateway, validator *validator.Validate) AssistantHandler {
	return &assistantHandler{
		gateway:   gateway,
		validator: validator,
	}
}

func (h *assistantHandler) ScanLabel(c *fiber.Ctx) error {
	req := new(domain.ScanLabelRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.BareErrorResponse(c, fiber.StatusBadRequest, domain.MessageInvalidBody)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.BareErrorResponse(c, fiber.StatusBadRequest, domain.MessageImageRequired)
	}

	deviceID := middleware.DeviceID(c)
	product, err := h.gateway.ScanLabel(c.UserContext(), deviceID, *req)
	if err != nil {
		return h.fail(c, deviceID, err, domain.MessageUnreadableLabel, domain.MessageFailedScanLabelGeneric)
	}

	return c.Status(fiber.StatusOK).JSON(product)
}

func (h *assistantHandler) GenerateRecipes(c *fiber.Ctx) error {
	req := new(domain.GenerateRecipesRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.BareErrorResponse(c, fiber.StatusBadRequest, domain.MessageInvalidBody)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.BareErrorResponse(c, fiber.StatusBadRequest, domain.MessageItemsRequired)
	}

	deviceID := middleware.DeviceID(c)
	recipes, err := h.gateway.GenerateRecipes(c.UserContext(), deviceID, *req)
	if err != nil {
		return h.fail(c, deviceID, err, domain.MessageUnreadableRecipes, domain.MessageFailedGenerateRecipes)
	}

	return c.Status(fiber.StatusOK).JSON(domain.GenerateRecipesResponse{Recipes: recipes})
}

// fail maps gateway errors to status codes and {"error": message} bodies.
// Provider details stay in the log.
func (h *assistantHandler) fail(c *fiber.Ctx, deviceID string, err error, unreadable, generic string) error {
	var (
		quota    *domain.QuotaExceededError
		upstream *domain.UpstreamError
	)
	switch {
	case errors.As(err, &quota):
		return presenters.BareErrorResponse(c, fiber.StatusTooManyRequests, quota.UserMessage())
	case errors.Is(err, domain.ErrMissingDeviceID):
		return presenters.BareErrorResponse(c, fiber.StatusBadRequest, domain.MessageMissingDeviceID)
	case errors.Is(err, domain.ErrInvalidRequest):
		return presenters.BareErrorResponse(c, fiber.StatusBadRequest, domain.MessageInvalidBody)
	case errors.Is(err, domain.ErrServiceUnavailable):
		return presenters.BareErrorResponse(c, fiber.StatusServiceUnavailable, domain.MessageServiceUnavailable)
	case errors.Is(err, domain.ErrUpstreamRateLimited):
		return presenters.BareErrorResponse(c, fiber.StatusTooManyRequests, domain.MessageUpstreamRateLimited)
	case errors.As(err, &upstream):
		log.Warnw("ai provider failure", "device_id", deviceID, "status", upstream.StatusCode, "error", err)
		return presenters.BareErrorResponse(c, fiber.StatusBadGateway, upstream.UserMessage())
	case errors.Is(err, domain.ErrEmptyCompletion):
		log.Warnw("ai provider returned an empty reply", "device_id", deviceID)
		return presenters.BareErrorResponse(c, fiber.StatusBadGateway, domain.MessageNoModelReply)
	case errors.Is(err, domain.ErrMalformedResponse):
		return presenters.BareErrorResponse(c, fiber.StatusUnprocessableEntity, unreadable)
	default:
		log.Errorw("ai request failed", "device_id", deviceID, "error", err)
		return presenters.BareErrorResponse(c, fiber.StatusInternalServerError, generic)
	}
}
