package handlers

import (
	"errors"
	"freshkeep-backend/domain"
	"freshkeep-backend/internal/api/presenters"
	"freshkeep-backend/internal/middleware"
	"freshkeep-backend/pkg/settings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type (
	SettingsHandler interface {
		GetSettings(c *fiber.Ctx) error
		UpdatePreferences(c *fiber.Ctx) error
		SetPermission(c *fiber.Ctx) error
	}

	settingsHandler struct {
		settingsService settings.SettingsService
		validator       *validator.Validate
	}
)

func NewSettingsHandler(settingsService settings.SettingsService, validator *validator.Validate) SettingsHandler {
	return &settingsHandler{
		settingsService: settingsService,
		validator:       validator,
	}
}

func (h *settingsHandler) GetSettings(c *fiber.Ctx) error {
	res, err := h.settingsService.GetSettings(c.UserContext(), middleware.DeviceID(c))
	if err != nil {
		log.Errorw("failed to load settings", "error", err)
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetPreferences, nil)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPreferences)
}

func (h *settingsHandler) UpdatePreferences(c *fiber.Ctx) error {
	req := new(domain.UpdatePreferencesRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdatePreferences, err)
	}

	res, err := h.settingsService.UpdatePreferences(c.UserContext(), middleware.DeviceID(c), *req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidNotifyDay) {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdatePreferences, domain.ErrInvalidNotifyDay)
		}
		log.Errorw("failed to update settings", "error", err)
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdatePreferences, nil)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdatePreferences)
}

func (h *settingsHandler) SetPermission(c *fiber.Ctx) error {
	req := new(domain.SetPermissionRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSetPermission, err)
	}

	res, err := h.settingsService.SetPermission(c.UserContext(), middleware.DeviceID(c), *req.Granted)
	if err != nil {
		log.Errorw("failed to store permission", "error", err)
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSetPermission, nil)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSetPermission)
}
