package notification

import (
	"context"
	"freshkeep-backend/domain"
)

type (
	NotificationService interface {
		Recompute(ctx context.Context, deviceID string) (domain.NotificationPlan, error)
		ListScheduled(ctx context.Context, deviceID string) ([]domain.ScheduledAlertResponse, error)
		SendTest(ctx context.Context, deviceID string) error
	}

	notificationService struct {
		coordinator *Coordinator
		planner     Planner
		alerts      AlertRepository
	}
)

func NewNotificationService(coordinator *Coordinator, planner Planner, alerts AlertRepository) NotificationService {
	return &notificationService{
		coordinator: coordinator,
		planner:     planner,
		alerts:      alerts,
	}
}

func (s *notificationService) Recompute(ctx context.Context, deviceID string) (domain.NotificationPlan, error) {
	return s.coordinator.Request(ctx, deviceID)
}

func (s *notificationService) ListScheduled(ctx context.Context, deviceID string) ([]domain.ScheduledAlertResponse, error) {
	alerts, err := s.alerts.ListScheduled(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	response := make([]domain.ScheduledAlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		response = append(response, toScheduledResponse(alert))
	}
	return response, nil
}

func (s *notificationService) SendTest(ctx context.Context, deviceID string) error {
	return s.planner.SendTest(ctx, deviceID)
}
