package handlers

import (
	"errors"
	"freshkeep-backend/domain"
	"freshkeep-backend/internal/api/presenters"
	"freshkeep-backend/internal/middleware"
	"freshkeep-backend/pkg/notification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type (
	NotificationHandler interface {
		Recompute(c *fiber.Ctx) error
		ListScheduled(c *fiber.Ctx) error
		SendTest(c *fiber.Ctx) error
	}

	notificationHandler struct {
		notificationService notification.NotificationService
	}
)

func NewNotificationHandler(notificationService notification.NotificationService) NotificationHandler {
	return &notificationHandler{notificationService: notificationService}
}

func (h *notificationHandler) Recompute(c *fiber.Ctx) error {
	deviceID := middleware.DeviceID(c)

	plan, err := h.notificationService.Recompute(c.UserContext(), deviceID)
	if err != nil {
		log.Errorw("recompute failed", "device_id", deviceID, "error", err)
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedRecompute, nil)
	}

	return presenters.SuccessResponse(c, plan, fiber.StatusOK, domain.MessageSuccessRecompute)
}

func (h *notificationHandler) ListScheduled(c *fiber.Ctx) error {
	alerts, err := h.notificationService.ListScheduled(c.UserContext(), middleware.DeviceID(c))
	if err != nil {
		log.Errorw("list scheduled alerts failed", "error", err)
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetScheduled, nil)
	}

	return presenters.SuccessResponse(c, alerts, fiber.StatusOK, domain.MessageSuccessGetScheduled)
}

func (h *notificationHandler) SendTest(c *fiber.Ctx) error {
	if err := h.notificationService.SendTest(c.UserContext(), middleware.DeviceID(c)); err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) {
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageFailedSendTest, domain.ErrPermissionDenied)
		}
		log.Errorw("test notification failed", "error", err)
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSendTest, nil)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusCreated, domain.MessageSuccessSendTest)
}
