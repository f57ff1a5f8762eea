package notification

import (
	"context"
	"fmt"
	"freshkeep-backend/domain"
	"freshkeep-backend/entities"
	"freshkeep-backend/internal/utils/mailing"
	"freshkeep-backend/internal/utils/metrics"
	"html"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const defaultDispatchBatch = 100

type (
	// Sender delivers a single alert to its device owner.
	Sender interface {
		Send(ctx context.Context, alert entities.ScheduledAlert) error
	}

	RecipientSource interface {
		GetSettings(ctx context.Context, deviceID string) (domain.PreferencesResponse, error)
	}

	logSender struct{}

	mailSender struct {
		mailer     mailing.Mailer
		recipients RecipientSource
		fallback   Sender
	}

	Dispatcher struct {
		alerts AlertRepository
		sender Sender
		now    func() time.Time
		batch  int
	}
)

func NewLogSender() Sender {
	return logSender{}
}

func (logSender) Send(_ context.Context, alert entities.ScheduledAlert) error {
	log.Infow("alert delivered",
		"device_id", alert.DeviceID,
		"kind", alert.Kind,
		"title", alert.Title,
		"body", alert.Body,
	)
	return nil
}

// NewMailSender mails alerts to devices that registered an address and logs
// the rest.
func NewMailSender(mailer mailing.Mailer, recipients RecipientSource) Sender {
	return &mailSender{mailer: mailer, recipients: recipients, fallback: NewLogSender()}
}

func (s *mailSender) Send(ctx context.Context, alert entities.ScheduledAlert) error {
	if !s.mailer.Configured() {
		return s.fallback.Send(ctx, alert)
	}

	settings, err := s.recipients.GetSettings(ctx, alert.DeviceID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	if settings.Email == "" {
		return s.fallback.Send(ctx, alert)
	}

	body := fmt.Sprintf("<p>%s</p>", html.EscapeString(alert.Body))
	return s.mailer.SendMail(settings.Email, alert.Title, body)
}

func NewDispatcher(alerts AlertRepository, sender Sender, now func() time.Time) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{alerts: alerts, sender: sender, now: now, batch: defaultDispatchBatch}
}

// DispatchDue delivers every alert that is due at the current time and
// returns how many were sent. A failed send is retried on the next pass.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	now := d.now()
	day := now.Format(domain.DateLayout)
	sent := 0

	oneShots, err := d.alerts.PendingOneShots(ctx, now.Hour(), now.Minute(), d.batch)
	if err != nil {
		return 0, fmt.Errorf("load pending alerts: %w", err)
	}
	for _, alert := range oneShots {
		if err := d.sender.Send(ctx, alert); err != nil {
			log.Warnw("failed to deliver alert", "alert_id", alert.ID, "device_id", alert.DeviceID, "error", err)
			continue
		}
		if err := d.alerts.MarkDelivered(ctx, alert.ID, now); err != nil {
			return sent, fmt.Errorf("mark alert delivered: %w", err)
		}
		sent++
	}

	daily, err := d.alerts.DueDaily(ctx, day, now.Hour(), now.Minute(), d.batch)
	if err != nil {
		return sent, fmt.Errorf("load daily alerts: %w", err)
	}
	for _, alert := range daily {
		if err := d.sender.Send(ctx, alert); err != nil {
			log.Warnw("failed to deliver daily alert", "alert_id", alert.ID, "device_id", alert.DeviceID, "error", err)
			continue
		}
		if err := d.alerts.MarkFired(ctx, alert.ID, day); err != nil {
			return sent, fmt.Errorf("mark alert fired: %w", err)
		}
		sent++
	}

	metrics.Count(ctx, metrics.AlertsDelivered, int64(sent))
	return sent, nil
}

// Start runs DispatchDue every interval until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := d.DispatchDue(ctx); err != nil {
					log.Errorw("alert dispatch failed", "error", err)
				} else if n > 0 {
					log.Debugw("alerts dispatched", "count", n)
				}
			}
		}
	}()
}
